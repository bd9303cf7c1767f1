package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet-api/internal/domain"
)

func TestTasks_CreateValidatesTypeAndProject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ann := e.verifiedUser(t, "Ann")
	prj := e.project(t)

	_, err := e.tasks.Create(ctx, ann, domain.Task{Type: "Gardening", ProjectID: prj.ID})
	assert.Equal(t, "INVALID_TASK_TYPE", code(t, err))

	_, err = e.tasks.Create(ctx, ann, domain.Task{Type: "Testing", ProjectID: 999})
	assert.Equal(t, "INVALID_REFERENCE", code(t, err))

	got, err := e.tasks.Create(ctx, ann, domain.Task{Type: "Testing", Status: domain.TaskClosed, ProjectID: prj.ID, UserID: 77})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskOpen, got.Status)
	assert.Equal(t, ann.UserID, got.UserID)

	assert.Equal(t, []string{"Development", "Testing"}, e.tasks.TaskTypes())
}

func TestTasks_ScopedReadsAndUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ann := e.verifiedUser(t, "Ann")
	bob := e.verifiedUser(t, "Bob")
	prj := e.project(t)
	task, err := e.tasks.Create(ctx, ann, domain.Task{Type: "Testing", Description: "a", ProjectID: prj.ID})
	require.NoError(t, err)

	_, err = e.tasks.Get(ctx, bob, task.ID)
	assert.Equal(t, "MODEL_NOT_FOUND", code(t, err))
	list, err := e.tasks.List(ctx, bob, domain.Query{})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = e.tasks.List(ctx, admin, domain.Query{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	desc := "b"
	bad := "Gardening"
	_, err = e.tasks.Update(ctx, ann, task.ID, TaskPatch{Type: &bad})
	assert.Equal(t, "INVALID_TASK_TYPE", code(t, err))
	got, err := e.tasks.Update(ctx, ann, task.ID, TaskPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "b", got.Description)
	assert.Equal(t, domain.TaskOpen, got.Status)
}

func TestTasks_DestroyGuardedByTimeSheets(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ann := e.verifiedUser(t, "Ann")
	prj := e.project(t)
	busy, err := e.tasks.Create(ctx, ann, domain.Task{Type: "Testing", ProjectID: prj.ID})
	require.NoError(t, err)
	idle, err := e.tasks.Create(ctx, ann, domain.Task{Type: "Testing", ProjectID: prj.ID})
	require.NoError(t, err)
	_, err = e.timeSheets.Create(ctx, ann, domain.TimeSheet{Date: day(2024, 1, 1), Status: domain.TimeSheetInProgress, TaskID: busy.ID})
	require.NoError(t, err)

	_, err = e.tasks.DestroyAll(ctx, ann, []int64{busy.ID, idle.ID})
	assert.True(t, errors.Is(err, domain.ErrAssociatedEntityExists))
	assert.Equal(t, "TASK_ASSOCIATED_WITH_TIMESHEETS", code(t, err))

	_, err = e.tasks.Get(ctx, ann, idle.ID)
	require.NoError(t, err)

	require.NoError(t, e.tasks.Destroy(ctx, ann, idle.ID))
	assert.Equal(t, "MODEL_NOT_FOUND", code(t, e.tasks.Destroy(ctx, ann, idle.ID)))
}
