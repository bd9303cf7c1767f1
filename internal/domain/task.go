package domain

// TaskStatus is derived from the timesheets logged against a task.
type TaskStatus string

const (
	TaskOpen   TaskStatus = "open"
	TaskClosed TaskStatus = "closed"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	return s == TaskOpen || s == TaskClosed
}

type Task struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	ProjectID   int64      `json:"projectId"`
	UserID      int64      `json:"userId"`
}
