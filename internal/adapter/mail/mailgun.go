package mail

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"

	"timesheet-api/internal/ports"
)

// MailgunSender delivers through the Mailgun API.
type MailgunSender struct {
	mg   *mailgun.MailgunImpl
	from string
}

func NewMailgunSender(c MailgunConfig, from string) *MailgunSender {
	return &MailgunSender{mg: mailgun.NewMailgun(c.Domain, c.Key), from: from}
}

func (s *MailgunSender) Send(ctx context.Context, m ports.Message) error {
	m = withDefaultFrom(m, s.from)
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	message := s.mg.NewMessage(m.From, m.Subject, "", m.To)
	message.SetHtml(m.HTML)
	if _, _, err := s.mg.Send(ctx, message); err != nil {
		return fmt.Errorf("mailgun send to %s: %w", m.To, err)
	}
	return nil
}
