package mail

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"timesheet-api/internal/ports"
)

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   string
}

func NewSendGridSender(c SendGridConfig, from string) *SendGridSender {
	return &SendGridSender{client: sendgrid.NewSendClient(c.Key), from: from}
}

func (s *SendGridSender) Send(ctx context.Context, m ports.Message) error {
	message := newSendGridMessage(withDefaultFrom(m, s.from))
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", m.To, err)
	}
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sendgrid send to %s: status %d", m.To, resp.StatusCode)
	}
	return nil
}

func newSendGridMessage(m ports.Message) *sgmail.SGMailV3 {
	from := sgmail.NewEmail("", m.From)
	to := sgmail.NewEmail("", m.To)
	return sgmail.NewSingleEmail(from, m.Subject, to, "", m.HTML)
}
