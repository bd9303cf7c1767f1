package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"timesheet-api/internal/ports"
)

// SMTPSender delivers through a plain SMTP relay.
type SMTPSender struct {
	Config SMTPConfig
	From   string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (s *SMTPSender) Send(ctx context.Context, m ports.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m = withDefaultFrom(m, s.From)
	var auth smtp.Auth
	if s.Config.Username != "" {
		auth = smtp.PlainAuth("", s.Config.Username, s.Config.Password, s.Config.Host)
	}
	send := s.send
	if send == nil {
		send = smtp.SendMail
	}
	addr := net.JoinHostPort(s.Config.Host, s.Config.Port)
	if err := send(addr, auth, m.From, []string{m.To}, buildMIME(m)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", m.To, err)
	}
	return nil
}

func buildMIME(m ports.Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(m.HTML)
	return []byte(b.String())
}
