package mail

import (
	"context"

	"github.com/sirupsen/logrus"

	"timesheet-api/internal/ports"
)

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	Log  *logrus.Logger
	From string
}

func (s *LogSender) Send(ctx context.Context, m ports.Message) error {
	m = withDefaultFrom(m, s.From)
	s.Log.WithFields(logrus.Fields{
		"to":      m.To,
		"from":    m.From,
		"subject": m.Subject,
	}).Info("mail not delivered, log provider")
	s.Log.WithField("to", m.To).Debug(m.HTML)
	return nil
}
