package rules

import "timesheet-api/internal/domain"

// DeriveTaskStatus maps a timesheet status onto its parent task.
func DeriveTaskStatus(s domain.TimeSheetStatus) domain.TaskStatus {
	if s == domain.TimeSheetCompleted {
		return domain.TaskClosed
	}
	return domain.TaskOpen
}
