package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds environment-driven configuration. It is loaded once and
// passed by value; nothing mutates it after Load.
type Config struct {
	HTTP struct {
		Addr string // default: :8080
	}
	DB struct {
		Driver string // mysql (default) or sqlite
		DSN    string // e.g., user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
	}
	Redis struct {
		Addr     string // empty disables the role cache
		Password string
		DB       int
		RoleTTL  time.Duration
	}
	Auth struct {
		JWTSecret     string
		TokenTTL      time.Duration // default: 336h, two weeks
		ResetTokenTTL time.Duration // default: 15m
	}
	App struct {
		AllowedEmailDomains []string
		DefaultEmailDomain  string
		TaskTypes           []string
		ClientURL           string // front-end base used in email links
		PublicURL           string // this API's externally visible base URL
	}
	Mail struct {
		Provider string // log (default), smtp, mailgun, sendgrid
		From     string
		SMTP     struct {
			Host     string
			Port     string
			Username string
			Password string
		}
		Mailgun struct {
			Domain string
			Key    string
		}
		SendGrid struct {
			Key string
		}
	}
	Log struct {
		Level  string // debug, info (default), warn, error
		Format string // text (default) or json
	}
}

var defaultTaskTypes = []string{"Development", "Testing", "Design", "Meeting", "Documentation", "Support"}

// Load reads configuration from environment variables, optionally layered
// over a config file. Keys map to env names by upper-casing and replacing
// dots with underscores, so db.dsn is DB_DSN.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.driver", "mysql")
	v.SetDefault("redis.role_ttl", 5*time.Minute)
	v.SetDefault("auth.token_ttl", 14*24*time.Hour)
	v.SetDefault("auth.reset_token_ttl", 15*time.Minute)
	v.SetDefault("app.client_url", "http://localhost:3000")
	v.SetDefault("app.public_url", "http://localhost:8080")
	v.SetDefault("mail.provider", "log")
	v.SetDefault("mail.smtp.port", "587")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	cfg.HTTP.Addr = v.GetString("http.addr")

	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	if cfg.DB.DSN == "" {
		return cfg, errors.New("DB_DSN is required")
	}
	if cfg.DB.Driver != "mysql" && cfg.DB.Driver != "sqlite" {
		return cfg, fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", cfg.DB.Driver)
	}

	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.Redis.RoleTTL = v.GetDuration("redis.role_ttl")

	cfg.Auth.JWTSecret = v.GetString("auth.jwt_secret")
	if cfg.Auth.JWTSecret == "" {
		return cfg, errors.New("AUTH_JWT_SECRET is required")
	}
	cfg.Auth.TokenTTL = v.GetDuration("auth.token_ttl")
	cfg.Auth.ResetTokenTTL = v.GetDuration("auth.reset_token_ttl")

	cfg.App.AllowedEmailDomains = list(v, "app.allowed_email_domains")
	cfg.App.DefaultEmailDomain = v.GetString("app.default_email_domain")
	cfg.App.TaskTypes = list(v, "app.task_types")
	if len(cfg.App.TaskTypes) == 0 {
		cfg.App.TaskTypes = append([]string(nil), defaultTaskTypes...)
	}
	cfg.App.ClientURL = strings.TrimSuffix(v.GetString("app.client_url"), "/")
	cfg.App.PublicURL = strings.TrimSuffix(v.GetString("app.public_url"), "/")

	cfg.Mail.Provider = v.GetString("mail.provider")
	cfg.Mail.From = v.GetString("mail.from")
	cfg.Mail.SMTP.Host = v.GetString("mail.smtp.host")
	cfg.Mail.SMTP.Port = v.GetString("mail.smtp.port")
	cfg.Mail.SMTP.Username = v.GetString("mail.smtp.username")
	cfg.Mail.SMTP.Password = v.GetString("mail.smtp.password")
	cfg.Mail.Mailgun.Domain = v.GetString("mail.mailgun.domain")
	cfg.Mail.Mailgun.Key = v.GetString("mail.mailgun.key")
	cfg.Mail.SendGrid.Key = v.GetString("mail.sendgrid.key")

	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")

	return cfg, nil
}

// list reads a string list given either as a YAML sequence or as a
// comma-separated env value.
func list(v *viper.Viper, key string) []string {
	var raw []string
	switch val := v.Get(key).(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(val, ",")
	default:
		raw = v.GetStringSlice(key)
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
