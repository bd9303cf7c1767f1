package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet-api/internal/domain"
)

func lookupFrom(children map[int64]int) domain.DependentsLookup {
	return func(_ context.Context, ids []int64) ([]int64, error) {
		var out []int64
		for _, id := range ids {
			if children[id] > 0 {
				out = append(out, id)
			}
		}
		return out, nil
	}
}

func TestCheckDeletable(t *testing.T) {
	ctx := context.Background()
	lookup := lookupFrom(map[int64]int{1: 2, 2: 0, 3: 0})

	require.NoError(t, CheckDeletable(ctx, domain.ClientProjects, []int64{2, 3}, lookup))

	err := CheckDeletable(ctx, domain.ClientProjects, []int64{1, 2, 3}, lookup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAssociatedEntityExists))

	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "CLIENT_ASSOCIATED_WITH_PROJECTS", de.Code)
	assert.Equal(t, 400, de.Status)
	assert.Equal(t, domain.KindConflict, de.Kind)
	assert.Equal(t, "projects", de.Details["dependent"])
	assert.Equal(t, []int64{1}, de.Details["ids"])
	assert.Equal(t, "Clients are associated with projects, hence cannot be deleted.", de.Message)
}

func TestCheckDeletable_EmptyBatch(t *testing.T) {
	called := false
	lookup := func(context.Context, []int64) ([]int64, error) {
		called = true
		return nil, nil
	}
	require.NoError(t, CheckDeletable(context.Background(), domain.TaskTimeSheets, nil, lookup))
	assert.False(t, called)
}

func TestCheckDeletable_LookupFailure(t *testing.T) {
	lookup := func(context.Context, []int64) ([]int64, error) {
		return nil, errors.New("db down")
	}
	err := Guard(domain.TaskTimeSheets)(context.Background(), []int64{1}, lookup)
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindDependency, de.Kind)
	assert.False(t, errors.Is(err, domain.ErrAssociatedEntityExists))
}

func TestGuard_TaskMessage(t *testing.T) {
	err := Guard(domain.TaskTimeSheets)(context.Background(), []int64{7}, lookupFrom(map[int64]int{7: 1}))
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "TASK_ASSOCIATED_WITH_TIMESHEETS", de.Code)
	assert.Equal(t, "Tasks are associated with time sheets, hence cannot be deleted.", de.Message)
}
