package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an Error for propagation and logging.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindAuth
	KindForbidden
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// Error is a rule violation or collaborator failure carrying a machine
// readable code and the HTTP status it maps to.
type Error struct {
	Kind    Kind
	Code    string
	Status  int
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && !isSentinel(e.Err) {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so sentinels compare by identity of code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

var (
	ErrAssociatedEntityExists = errors.New("ASSOCIATED_ENTITY_EXISTS")
	ErrStatusPropagation      = errors.New("TASK_STATUS_PROPAGATION_FAILED")
	ErrSessionNotFound        = errors.New("session not found")

	ErrInvalidToken          = &Error{Kind: KindAuth, Code: "INVALID_TOKEN", Status: http.StatusBadRequest, Message: "invalid token"}
	ErrUserNotFound          = &Error{Kind: KindNotFound, Code: "USER_NOT_FOUND", Status: http.StatusNotFound, Message: "user not found"}
	ErrEmailDomainNotAllowed = &Error{Kind: KindValidation, Code: "EMAIL_DOMAIN_NOT_ALLOWED", Status: http.StatusUnprocessableEntity, Message: "email domain is not allowed"}
	ErrEmailChangeNotAllowed = &Error{Kind: KindConflict, Code: "EMAIL_CHANGE_NOT_ALLOWED", Status: http.StatusUnprocessableEntity, Message: "Changing email is not allowed."}
	ErrEmailExists           = &Error{Kind: KindConflict, Code: "EMAIL_ALREADY_EXISTS", Status: http.StatusUnprocessableEntity, Message: "Email already exists"}
	ErrLoginFailed           = &Error{Kind: KindAuth, Code: "LOGIN_FAILED", Status: http.StatusUnauthorized, Message: "login failed"}
	ErrEmailNotVerified      = &Error{Kind: KindAuth, Code: "LOGIN_FAILED_EMAIL_NOT_VERIFIED", Status: http.StatusUnauthorized, Message: "login failed as the email has not been verified"}
	ErrUnauthorized          = &Error{Kind: KindAuth, Code: "AUTHORIZATION_REQUIRED", Status: http.StatusUnauthorized, Message: "Authorization Required"}
	ErrAccessDenied          = &Error{Kind: KindForbidden, Code: "ACCESS_DENIED", Status: http.StatusForbidden, Message: "Access denied"}
)

func isSentinel(err error) bool {
	return err == ErrAssociatedEntityExists || err == ErrStatusPropagation
}

// Validation builds a 422 validation error.
func Validation(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Status: http.StatusUnprocessableEntity, Message: fmt.Sprintf(format, args...)}
}

// BadRequest builds a 400 validation error for malformed input.
func BadRequest(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a 404 for the named entity.
func NotFound(entity string, id int64) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    "MODEL_NOT_FOUND",
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Unknown %q id %d.", entity, id),
	}
}

// DependencyFailure wraps a collaborator failure.
func DependencyFailure(code string, err error) *Error {
	return &Error{Kind: KindDependency, Code: code, Status: http.StatusInternalServerError, Message: "dependency failure", Err: err}
}

// AssociatedEntityExists rejects deleting parents that still have dependents.
func AssociatedEntityExists(dep Dependency, blocked []int64) *Error {
	plural := dep.Entity + "s"
	return &Error{
		Kind:   KindConflict,
		Code:   dep.Code,
		Status: http.StatusBadRequest,
		Message: fmt.Sprintf("%s are associated with %s, hence cannot be deleted.",
			strings.ToUpper(plural[:1])+plural[1:], splitCamel(dep.Dependent)),
		Details: map[string]any{"dependent": dep.Dependent, "ids": blocked},
		Err:     ErrAssociatedEntityExists,
	}
}

// StatusPropagationFailed reports a task update that failed after its
// timesheet was already written.
func StatusPropagationFailed(taskID int64, err error) *Error {
	return &Error{
		Kind:    KindDependency,
		Code:    ErrStatusPropagation.Error(),
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("timesheet saved but status of task %d was not updated", taskID),
		Details: map[string]any{"taskId": taskID},
		Err:     fmt.Errorf("%w: %v", ErrStatusPropagation, err),
	}
}

func splitCamel(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
