package domain

import "time"

// TimeSheetStatus is the progress state of a single time entry.
type TimeSheetStatus string

const (
	TimeSheetInProgress TimeSheetStatus = "inProgress"
	TimeSheetCompleted  TimeSheetStatus = "completed"
)

// Valid reports whether s is a known timesheet status.
func (s TimeSheetStatus) Valid() bool {
	return s == TimeSheetInProgress || s == TimeSheetCompleted
}

// Label is the human readable form used in exports.
func (s TimeSheetStatus) Label() string {
	if s == TimeSheetCompleted {
		return "Completed"
	}
	return "In Progress"
}

// TimeSheet is one logged block of work against a task.
type TimeSheet struct {
	ID       int64           `json:"id"`
	Date     time.Time       `json:"date"`
	Duration int64           `json:"duration"` // minutes
	Comment  string          `json:"comment"`
	Status   TimeSheetStatus `json:"status"`
	TaskID   int64           `json:"taskId"`
	UserID   int64           `json:"userId"`
}

// ExportRow is a timesheet flattened with its task, project, client and user.
type ExportRow struct {
	Date            time.Time
	UserName        string
	UserEmail       string
	ClientName      string
	ClientID        int64
	ProjectName     string
	ProjectID       int64
	TaskID          int64
	TaskType        string
	TaskDescription string
	Comment         string
	Status          TimeSheetStatus
	Duration        int64
}

// UserStats summarises recent activity for one user. The seven day window
// ends today, UTC, and daily series run oldest first.
type UserStats struct {
	WeeklyTotalDuration             int64              `json:"weeklyTotalDuration"`
	DailyDurationForLast7Days       []DailyDuration    `json:"DailyDurationForLast7Days"`
	TodayCompletedTasksCount        int64              `json:"todayCompletedTasksCount"`
	DailyCompletedTasksForLast7Days []DailyCount       `json:"dailyCompletedTasksForLast7Days"`
	OpenTasksCount                  int64              `json:"openTasksCount"`
	CurrentWeekWorkedDays           int64              `json:"currentWeekWorkedDays"`
	Last7DaysAllocationPerClient    []ClientAllocation `json:"last7daysResourceAllocationPerClient"`
}

// DailyDuration is the minutes logged on one day.
type DailyDuration struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Duration int64  `json:"duration"`
}

// DailyCount is the completed timesheets logged on one day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ClientAllocation is the minutes a user spent on one client's work.
type ClientAllocation struct {
	ClientID   int64  `json:"clientId"`
	ClientName string `json:"clientName"`
	Duration   int64  `json:"duration"`
}
