package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"timesheet-api/internal/adapter/mail"
	"timesheet-api/internal/adapter/rediscache"
	"timesheet-api/internal/adapter/sqlstore"
	"timesheet-api/internal/adapter/token"
	"timesheet-api/internal/api"
	"timesheet-api/internal/config"
	"timesheet-api/internal/migrate"
	"timesheet-api/internal/ports"
	"timesheet-api/internal/rules"
	"timesheet-api/internal/usecase"
)

const tokenIssuer = "timesheet-api"

// App wires adapters and use cases.
type App struct {
	log       *logrus.Logger
	cfg       config.Config
	store     *sqlstore.Store
	closers   []func() error
	customers *usecase.Customers
	router    *gin.Engine
}

// OpenStore opens the configured database and applies pending migrations.
func OpenStore(ctx context.Context, log *logrus.Logger, cfg config.Config) (*sqlstore.Store, error) {
	store, err := sqlstore.Open(ctx, cfg.DB.Driver, cfg.DB.DSN, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrate.Run(ctx, store.DB(), store.Dialect(), log); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func New(ctx context.Context, log *logrus.Logger, cfg config.Config) (*App, error) {
	store, err := OpenStore(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	a := &App{log: log, cfg: cfg, store: store, closers: []func() error{store.Close}}

	tokens, err := token.NewManager(cfg.Auth.JWTSecret, tokenIssuer)
	if err != nil {
		a.Close()
		return nil, err
	}

	mailer, err := mail.New(mail.Config{
		Provider: cfg.Mail.Provider,
		From:     cfg.Mail.From,
		SMTP: mail.SMTPConfig{
			Host:     cfg.Mail.SMTP.Host,
			Port:     cfg.Mail.SMTP.Port,
			Username: cfg.Mail.SMTP.Username,
			Password: cfg.Mail.SMTP.Password,
		},
		Mailgun:  mail.MailgunConfig{Domain: cfg.Mail.Mailgun.Domain, Key: cfg.Mail.Mailgun.Key},
		SendGrid: mail.SendGridConfig{Key: cfg.Mail.SendGrid.Key},
	}, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	var (
		resolver ports.RoleResolver = store
		cache    ports.RoleCache
	)
	if cfg.Redis.Addr != "" {
		rc, err := rediscache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// roles are read straight from the database instead
			log.WithError(err).WithField("addr", cfg.Redis.Addr).Warn("redis unavailable, role cache disabled")
		} else {
			a.closers = append(a.closers, rc.Close)
			rcache := rediscache.NewRoleCache(rc, store, cfg.Redis.RoleTTL, log)
			resolver, cache = rcache, rcache
		}
	}

	sessions := &usecase.Sessions{Store: store, Tokens: tokens, Roles: resolver, TTL: cfg.Auth.TokenTTL}
	a.customers = &usecase.Customers{
		Log:        log,
		Store:      store,
		Roles:      store,
		RoleCache:  cache,
		Resolver:   resolver,
		TimeSheets: store,
		Sessions:   sessions,
		Mailer:     mailer,
		Policy:     rules.EmailPolicy{AllowedDomains: cfg.App.AllowedEmailDomains, DefaultDomain: cfg.App.DefaultEmailDomain},
		ClientURL:  cfg.App.ClientURL,
		PublicURL:  cfg.App.PublicURL,
		MailFrom:   cfg.Mail.From,
		ResetTTL:   cfg.Auth.ResetTokenTTL,
	}

	a.router = api.NewRouter(api.Deps{
		Log:        log,
		DB:         store,
		Sessions:   sessions,
		Customers:  a.customers,
		Clients:    &usecase.Clients{Log: log, Store: store},
		Projects:   &usecase.Projects{Log: log, Store: store, Clients: store},
		Tasks:      &usecase.Tasks{Log: log, Store: store, Projects: store, Types: cfg.App.TaskTypes},
		TimeSheets: &usecase.TimeSheets{Log: log, Store: store, Tasks: store},
	})
	return a, nil
}

// GrantRole binds role to userID. It backs the role grant command used to
// bootstrap the first admin.
func (a *App) GrantRole(ctx context.Context, userID int64, role string) error {
	return a.customers.AddRole(ctx, userID, role)
}

// Close releases the database and cache connections.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
