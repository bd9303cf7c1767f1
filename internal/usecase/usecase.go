// Package usecase holds the application operations behind the HTTP API and
// the CLI. Each use case is a struct of its collaborators.
package usecase

import (
	"strings"

	"timesheet-api/internal/domain"
)

func requirePrivileged(p domain.Principal) error {
	if !p.Privileged() {
		return domain.ErrAccessDenied
	}
	return nil
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.Validation("INVALID_NAME", "name can't be blank")
	}
	return name, nil
}

// missingReference turns a lookup miss on a referenced entity into a 422.
func missingReference(err error, entity string, id int64) error {
	if de, ok := domain.AsError(err); ok && de.Kind == domain.KindNotFound {
		return domain.Validation("INVALID_REFERENCE", "%s %d does not exist", entity, id)
	}
	return err
}
