package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"timesheet-api/internal/domain"
	"timesheet-api/internal/ports"
	"timesheet-api/internal/rules"
)

// SaveOutcome is the result of writing a timesheet and propagating its
// status to the task. PropagationErr is set when the timesheet was written
// but the task status update failed; the write is not rolled back.
type SaveOutcome struct {
	TimeSheet      domain.TimeSheet
	TaskStatus     domain.TaskStatus
	PropagationErr error
}

// TimeSheetPatch carries the editable timesheet fields; nil means unchanged.
type TimeSheetPatch struct {
	Date     *time.Time
	Duration *int64
	Comment  *string
	Status   *domain.TimeSheetStatus
	TaskID   *int64
}

type TimeSheets struct {
	Log   *logrus.Logger
	Store ports.TimeSheetStore
	Tasks ports.TaskStore
}

func validateTimeSheet(ts domain.TimeSheet) error {
	if !ts.Status.Valid() {
		return domain.Validation("INVALID_STATUS", "status must be inProgress or completed")
	}
	if ts.Duration < 0 {
		return domain.Validation("INVALID_DURATION", "duration must not be negative")
	}
	if ts.Date.IsZero() {
		return domain.Validation("INVALID_DATE", "date is required")
	}
	return nil
}

// Create logs time for the caller and updates the task status.
func (uc *TimeSheets) Create(ctx context.Context, p domain.Principal, in domain.TimeSheet) (SaveOutcome, error) {
	in.ID = 0
	in.UserID = p.UserID
	if err := validateTimeSheet(in); err != nil {
		return SaveOutcome{}, err
	}
	if err := uc.checkTask(ctx, p, in.TaskID); err != nil {
		return SaveOutcome{}, err
	}
	ts, err := uc.Store.CreateTimeSheet(ctx, in)
	if err != nil {
		return SaveOutcome{}, err
	}
	return uc.propagate(ctx, ts), nil
}

// Update applies patch to a timesheet visible to p and updates the task status.
func (uc *TimeSheets) Update(ctx context.Context, p domain.Principal, id int64, patch TimeSheetPatch) (SaveOutcome, error) {
	cur, err := uc.Get(ctx, p, id)
	if err != nil {
		return SaveOutcome{}, err
	}
	if patch.Date != nil {
		cur.Date = patch.Date.UTC()
	}
	if patch.Duration != nil {
		cur.Duration = *patch.Duration
	}
	if patch.Comment != nil {
		cur.Comment = *patch.Comment
	}
	if patch.Status != nil {
		cur.Status = *patch.Status
	}
	prevTaskID := cur.TaskID
	if patch.TaskID != nil && *patch.TaskID != cur.TaskID {
		if err := uc.checkTask(ctx, p, *patch.TaskID); err != nil {
			return SaveOutcome{}, err
		}
		cur.TaskID = *patch.TaskID
	}
	if err := validateTimeSheet(cur); err != nil {
		return SaveOutcome{}, err
	}
	ts, err := uc.Store.UpdateTimeSheet(ctx, cur)
	if err != nil {
		return SaveOutcome{}, err
	}
	out := uc.propagate(ctx, ts)
	if prevTaskID != ts.TaskID && out.PropagationErr == nil {
		// the task the timesheet left may now have a different latest entry
		if _, err := uc.syncTaskStatus(ctx, prevTaskID); err != nil {
			out.PropagationErr = domain.StatusPropagationFailed(prevTaskID, err)
			uc.Log.WithError(err).WithField("task_id", prevTaskID).Error("task status propagation failed")
		}
	}
	return out, nil
}

// checkTask fails unless taskID names a task visible to p.
func (uc *TimeSheets) checkTask(ctx context.Context, p domain.Principal, taskID int64) error {
	list, err := uc.Tasks.ListTasks(ctx, rules.Scope(domain.Query{Where: domain.ByIDs(taskID)}, p))
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return missingReference(domain.NotFound("task", taskID), "task", taskID)
	}
	return nil
}

// propagate brings the task of a saved timesheet in line with the task's
// most recent timesheet.
func (uc *TimeSheets) propagate(ctx context.Context, ts domain.TimeSheet) SaveOutcome {
	out := SaveOutcome{TimeSheet: ts}
	status, err := uc.syncTaskStatus(ctx, ts.TaskID)
	out.TaskStatus = status
	log := uc.Log.WithFields(logrus.Fields{"time_sheet_id": ts.ID, "task_id": ts.TaskID, "task_status": status})
	if err != nil {
		out.PropagationErr = domain.StatusPropagationFailed(ts.TaskID, err)
		log.WithError(err).Error("task status propagation failed")
		return out
	}
	log.Info("time sheet saved")
	return out
}

// syncTaskStatus derives the status of taskID from its latest timesheet by
// date, newest id first on ties, and stores it. A task with no timesheets
// is open.
func (uc *TimeSheets) syncTaskStatus(ctx context.Context, taskID int64) (domain.TaskStatus, error) {
	tid := taskID
	latest, err := uc.Store.ListTimeSheets(ctx, domain.Query{
		Where: domain.Filter{TaskID: &tid},
		Order: []domain.Order{{Field: "date", Desc: true}, {Field: "id", Desc: true}},
		Limit: 1,
	})
	if err != nil {
		return "", err
	}
	status := domain.TaskOpen
	if len(latest) > 0 {
		status = rules.DeriveTaskStatus(latest[0].Status)
	}
	return status, uc.Tasks.SetTaskStatus(ctx, taskID, status)
}

func (uc *TimeSheets) List(ctx context.Context, p domain.Principal, q domain.Query) ([]domain.TimeSheet, error) {
	return uc.Store.ListTimeSheets(ctx, rules.Scope(q, p))
}

func (uc *TimeSheets) Get(ctx context.Context, p domain.Principal, id int64) (domain.TimeSheet, error) {
	list, err := uc.Store.ListTimeSheets(ctx, rules.Scope(domain.Query{Where: domain.ByIDs(id)}, p))
	if err != nil {
		return domain.TimeSheet{}, err
	}
	if len(list) == 0 {
		return domain.TimeSheet{}, domain.NotFound("timeSheet", id)
	}
	return list[0], nil
}

// DestroyAll deletes the timesheets among ids that p may see and returns
// how many were deleted.
func (uc *TimeSheets) DestroyAll(ctx context.Context, p domain.Principal, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := uc.Store.DeleteTimeSheets(ctx, rules.ScopeFilter(domain.ByIDs(ids...), p))
	if err != nil {
		return 0, err
	}
	uc.Log.WithFields(logrus.Fields{"ids": ids, "count": n, "user_id": p.UserID}).Info("time sheets deleted")
	return n, nil
}
