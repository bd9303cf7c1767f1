package rules

import (
	"context"

	"timesheet-api/internal/domain"
)

// CheckDeletable rejects the whole batch if any id still has dependents.
func CheckDeletable(ctx context.Context, dep domain.Dependency, ids []int64, lookup domain.DependentsLookup) error {
	if len(ids) == 0 {
		return nil
	}
	blocked, err := lookup(ctx, ids)
	if err != nil {
		return domain.DependencyFailure("DEPENDENTS_LOOKUP_FAILED", err)
	}
	if len(blocked) > 0 {
		return domain.AssociatedEntityExists(dep, blocked)
	}
	return nil
}

// Guard binds CheckDeletable to a dependency for use as a store delete check.
func Guard(dep domain.Dependency) domain.DeleteCheck {
	return func(ctx context.Context, ids []int64, lookup domain.DependentsLookup) error {
		return CheckDeletable(ctx, dep, ids, lookup)
	}
}
