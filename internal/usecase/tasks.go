package usecase

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"timesheet-api/internal/domain"
	"timesheet-api/internal/ports"
	"timesheet-api/internal/rules"
)

// TaskPatch carries the editable task fields. Status is derived from
// timesheets and cannot be patched.
type TaskPatch struct {
	Type        *string
	Description *string
	ProjectID   *int64
}

// Tasks manages tasks. Reads and deletes are scoped to the caller unless
// the caller is privileged.
type Tasks struct {
	Log      *logrus.Logger
	Store    ports.TaskStore
	Projects ports.ProjectStore
	Types    []string
}

// TaskTypes returns the configured task type list.
func (uc *Tasks) TaskTypes() []string {
	return append([]string(nil), uc.Types...)
}

func (uc *Tasks) checkType(t string) error {
	for _, allowed := range uc.Types {
		if allowed == t {
			return nil
		}
	}
	return domain.Validation("INVALID_TASK_TYPE", "type must be one of: %s", strings.Join(uc.Types, ", "))
}

// Create adds an open task owned by the caller.
func (uc *Tasks) Create(ctx context.Context, p domain.Principal, in domain.Task) (domain.Task, error) {
	if err := uc.checkType(in.Type); err != nil {
		return domain.Task{}, err
	}
	if _, err := uc.Projects.GetProject(ctx, in.ProjectID); err != nil {
		return domain.Task{}, missingReference(err, "project", in.ProjectID)
	}
	t, err := uc.Store.CreateTask(ctx, domain.Task{
		Type:        in.Type,
		Description: in.Description,
		Status:      domain.TaskOpen,
		ProjectID:   in.ProjectID,
		UserID:      p.UserID,
	})
	if err != nil {
		return domain.Task{}, err
	}
	uc.Log.WithFields(logrus.Fields{"task_id": t.ID, "user_id": t.UserID}).Info("task created")
	return t, nil
}

func (uc *Tasks) List(ctx context.Context, p domain.Principal, q domain.Query) ([]domain.Task, error) {
	return uc.Store.ListTasks(ctx, rules.Scope(q, p))
}

// Get returns a task visible to p, or not found.
func (uc *Tasks) Get(ctx context.Context, p domain.Principal, id int64) (domain.Task, error) {
	list, err := uc.Store.ListTasks(ctx, rules.Scope(domain.Query{Where: domain.ByIDs(id)}, p))
	if err != nil {
		return domain.Task{}, err
	}
	if len(list) == 0 {
		return domain.Task{}, domain.NotFound("task", id)
	}
	return list[0], nil
}

func (uc *Tasks) Update(ctx context.Context, p domain.Principal, id int64, patch TaskPatch) (domain.Task, error) {
	cur, err := uc.Get(ctx, p, id)
	if err != nil {
		return domain.Task{}, err
	}
	if patch.Type != nil {
		if err := uc.checkType(*patch.Type); err != nil {
			return domain.Task{}, err
		}
		cur.Type = *patch.Type
	}
	if patch.Description != nil {
		cur.Description = *patch.Description
	}
	if patch.ProjectID != nil && *patch.ProjectID != cur.ProjectID {
		if _, err := uc.Projects.GetProject(ctx, *patch.ProjectID); err != nil {
			return domain.Task{}, missingReference(err, "project", *patch.ProjectID)
		}
		cur.ProjectID = *patch.ProjectID
	}
	return uc.Store.UpdateTask(ctx, cur)
}

// DestroyAll deletes the caller's tasks among ids. The batch is refused if
// any of them has timesheets.
func (uc *Tasks) DestroyAll(ctx context.Context, p domain.Principal, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	f := rules.ScopeFilter(domain.ByIDs(ids...), p)
	n, err := uc.Store.DeleteTasks(ctx, f, rules.Guard(domain.TaskTimeSheets))
	if err != nil {
		return 0, err
	}
	uc.Log.WithFields(logrus.Fields{"ids": ids, "count": n, "user_id": p.UserID}).Info("tasks deleted")
	return n, nil
}

func (uc *Tasks) Destroy(ctx context.Context, p domain.Principal, id int64) error {
	n, err := uc.DestroyAll(ctx, p, []int64{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("task", id)
	}
	return nil
}
