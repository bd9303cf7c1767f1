package usecase

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"timesheet-api/internal/adapter/sqlstore"
	"timesheet-api/internal/adapter/token"
	"timesheet-api/internal/domain"
	"timesheet-api/internal/migrate"
	"timesheet-api/internal/ports"
	"timesheet-api/internal/rules"
)

type outbox struct {
	mu   sync.Mutex
	sent []ports.Message
	err  error
}

func (o *outbox) Send(_ context.Context, m ports.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, m)
	return nil
}

func (o *outbox) last() ports.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sent[len(o.sent)-1]
}

type env struct {
	store      *sqlstore.Store
	mail       *outbox
	clients    *Clients
	projects   *Projects
	tasks      *Tasks
	timeSheets *TimeSheets
	customers  *Customers
	sessions   *Sessions
}

var admin = domain.Principal{UserID: 1000, Roles: []string{domain.RoleAdmin}}

func newEnv(t *testing.T) *env {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", "file:uc_"+name+"?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	require.NoError(t, migrate.Run(context.Background(), db, migrate.DialectSQLite, log))
	store := sqlstore.New(db, migrate.DialectSQLite, log)

	tokens, err := token.NewManager("test-secret", "timesheet-api")
	require.NoError(t, err)
	mail := &outbox{}
	sessions := &Sessions{Store: store, Tokens: tokens, Roles: store, TTL: time.Hour}

	return &env{
		store:      store,
		mail:       mail,
		clients:    &Clients{Log: log, Store: store},
		projects:   &Projects{Log: log, Store: store, Clients: store},
		tasks:      &Tasks{Log: log, Store: store, Projects: store, Types: []string{"Development", "Testing"}},
		timeSheets: &TimeSheets{Log: log, Store: store, Tasks: store},
		sessions:   sessions,
		customers: &Customers{
			Log:        log,
			Store:      store,
			Roles:      store,
			Resolver:   store,
			TimeSheets: store,
			Sessions:   sessions,
			Mailer:     mail,
			Policy:     rules.EmailPolicy{AllowedDomains: []string{"acme.com"}, DefaultDomain: "acme.com"},
			ClientURL:  "https://app.acme.com",
			PublicURL:  "https://api.acme.com",
			ResetTTL:   15 * time.Minute,
		},
	}
}

// verifiedUser registers and confirms a customer and returns its principal.
func (e *env) verifiedUser(t *testing.T, name string) domain.Principal {
	t.Helper()
	ctx := context.Background()
	c, err := e.customers.Register(ctx, RegisterInput{Name: name, Email: strings.ToLower(name), Password: "pw-" + name})
	require.NoError(t, err)
	got, err := e.store.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	require.NoError(t, e.customers.Confirm(ctx, c.ID, *got.VerificationToken))
	return domain.Principal{UserID: c.ID}
}

// project creates a client and a project as admin.
func (e *env) project(t *testing.T) domain.Project {
	t.Helper()
	ctx := context.Background()
	c, err := e.clients.Create(ctx, admin, "Acme")
	require.NoError(t, err)
	p, err := e.projects.Create(ctx, admin, domain.Project{Name: "Site", ClientID: c.ID})
	require.NoError(t, err)
	return p
}
