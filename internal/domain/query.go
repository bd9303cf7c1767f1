package domain

import (
	"context"
	"time"
)

// Filter narrows a read or delete. Zero fields are ignored.
type Filter struct {
	IDs       []int64
	UserID    *int64
	TaskID    *int64
	ProjectID *int64
	ClientID  *int64
	Status    string
	From      *time.Time
	To        *time.Time
}

// Order is one sort key such as "date" ascending.
type Order struct {
	Field string
	Desc  bool
}

// Query is a filtered, ordered and paged read.
type Query struct {
	Where  Filter
	Order  []Order
	Limit  int
	Offset int
}

// ByIDs builds a filter matching the given ids.
func ByIDs(ids ...int64) Filter {
	return Filter{IDs: ids}
}

// Dependency describes a parent entity whose deletion is blocked by children.
type Dependency struct {
	Entity    string
	Dependent string
	Code      string
}

var (
	ClientProjects = Dependency{Entity: "client", Dependent: "projects", Code: "CLIENT_ASSOCIATED_WITH_PROJECTS"}
	ProjectTasks   = Dependency{Entity: "project", Dependent: "tasks", Code: "PROJECT_ASSOCIATED_WITH_TASKS"}
	TaskTimeSheets = Dependency{Entity: "task", Dependent: "timeSheets", Code: "TASK_ASSOCIATED_WITH_TIMESHEETS"}
)

// DependentsLookup returns the subset of ids that have at least one dependent.
type DependentsLookup func(ctx context.Context, ids []int64) ([]int64, error)

// DeleteCheck decides whether a delete of ids may proceed.
type DeleteCheck func(ctx context.Context, ids []int64, lookup DependentsLookup) error
