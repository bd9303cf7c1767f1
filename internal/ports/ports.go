package ports

import (
	"context"
	"time"

	"timesheet-api/internal/domain"
)

// ClientStore persists clients. Delete runs check inside the delete
// transaction so the dependents test and the delete are atomic.
type ClientStore interface {
	CreateClient(ctx context.Context, c domain.Client) (domain.Client, error)
	GetClient(ctx context.Context, id int64) (domain.Client, error)
	ListClients(ctx context.Context, q domain.Query) ([]domain.Client, error)
	UpdateClient(ctx context.Context, c domain.Client) (domain.Client, error)
	DeleteClients(ctx context.Context, f domain.Filter, check domain.DeleteCheck) (int64, error)
}

type ProjectStore interface {
	CreateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	GetProject(ctx context.Context, id int64) (domain.Project, error)
	ListProjects(ctx context.Context, q domain.Query) ([]domain.Project, error)
	UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	DeleteProjects(ctx context.Context, f domain.Filter, check domain.DeleteCheck) (int64, error)
}

type TaskStore interface {
	CreateTask(ctx context.Context, t domain.Task) (domain.Task, error)
	GetTask(ctx context.Context, id int64) (domain.Task, error)
	ListTasks(ctx context.Context, q domain.Query) ([]domain.Task, error)
	UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error)
	SetTaskStatus(ctx context.Context, id int64, status domain.TaskStatus) error
	DeleteTasks(ctx context.Context, f domain.Filter, check domain.DeleteCheck) (int64, error)
}

type TimeSheetStore interface {
	CreateTimeSheet(ctx context.Context, ts domain.TimeSheet) (domain.TimeSheet, error)
	GetTimeSheet(ctx context.Context, id int64) (domain.TimeSheet, error)
	ListTimeSheets(ctx context.Context, q domain.Query) ([]domain.TimeSheet, error)
	UpdateTimeSheet(ctx context.Context, ts domain.TimeSheet) (domain.TimeSheet, error)
	DeleteTimeSheets(ctx context.Context, f domain.Filter) (int64, error)
	ExportRows(ctx context.Context, q domain.Query) ([]domain.ExportRow, error)
	UserStats(ctx context.Context, userID int64, now time.Time) (domain.UserStats, error)
}

type CustomerStore interface {
	CreateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (domain.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (domain.Customer, error)
	UpdateCustomerName(ctx context.Context, id int64, name string) error
	SetVerificationToken(ctx context.Context, id int64, token *string) error
	MarkVerified(ctx context.Context, id int64, token string) error
	SetPassword(ctx context.Context, id int64, hash string) error
}

type RoleStore interface {
	UpsertRole(ctx context.Context, name string) (int64, error)
	UpsertRoleMapping(ctx context.Context, principalType string, principalID, roleID int64) error
	RoleNames(ctx context.Context, userID int64) ([]string, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// RoleResolver returns the role names bound to a principal.
type RoleResolver interface {
	RoleNames(ctx context.Context, userID int64) ([]string, error)
}

// RoleCache is an optional cache in front of a RoleResolver.
type RoleCache interface {
	RoleResolver
	Invalidate(ctx context.Context, userID int64) error
}

// Message is an outbound HTML email.
type Message struct {
	To      string
	From    string
	Subject string
	HTML    string
}

// Mailer delivers email. Callers log failures and carry on.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// TokenClaims identifies the session and user behind a signed token.
type TokenClaims struct {
	ID      string
	UserID  int64
	Purpose string
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(claims TokenClaims, ttl time.Duration) (string, error)
	Parse(token string) (TokenClaims, error)
}
