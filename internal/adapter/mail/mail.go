// Package mail delivers outbound email through SMTP, Mailgun or SendGrid.
package mail

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"timesheet-api/internal/ports"
)

const (
	ProviderLog      = "log"
	ProviderSMTP     = "smtp"
	ProviderMailgun  = "mailgun"
	ProviderSendGrid = "sendgrid"
)

const sendTimeout = 30 * time.Second

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

type MailgunConfig struct {
	Domain string
	Key    string
}

type SendGridConfig struct {
	Key string
}

// Config selects a provider and carries its credentials.
type Config struct {
	Provider string
	From     string
	SMTP     SMTPConfig
	Mailgun  MailgunConfig
	SendGrid SendGridConfig
}

func (c Config) validate() error {
	switch c.Provider {
	case "", ProviderLog:
		return nil
	case ProviderSMTP:
		if c.SMTP.Host == "" || c.SMTP.Port == "" || c.From == "" {
			return errors.New("invalid SMTP configuration")
		}
	case ProviderMailgun:
		if c.Mailgun.Domain == "" || c.Mailgun.Key == "" || c.From == "" {
			return errors.New("invalid Mailgun configuration")
		}
	case ProviderSendGrid:
		if c.SendGrid.Key == "" || c.From == "" {
			return errors.New("invalid SendGrid configuration")
		}
	default:
		return fmt.Errorf("unknown mail provider %q", c.Provider)
	}
	return nil
}

// New returns the configured Mailer wrapped in a circuit breaker. The log
// provider only writes messages to the logger.
func New(c Config, log *logrus.Logger) (ports.Mailer, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	var m ports.Mailer
	switch c.Provider {
	case ProviderSMTP:
		m = &SMTPSender{Config: c.SMTP, From: c.From}
	case ProviderMailgun:
		m = NewMailgunSender(c.Mailgun, c.From)
	case ProviderSendGrid:
		m = NewSendGridSender(c.SendGrid, c.From)
	default:
		return &LogSender{Log: log, From: c.From}, nil
	}
	return NewBreaker(c.Provider, m, log), nil
}

func withDefaultFrom(m ports.Message, from string) ports.Message {
	if m.From == "" {
		m.From = from
	}
	return m
}
