package mail

import (
	"context"
	"errors"
	"io"
	"net/smtp"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet-api/internal/ports"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNew_SelectsProvider(t *testing.T) {
	log := quietLogger()

	m, err := New(Config{}, log)
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, m)

	m, err = New(Config{Provider: ProviderMailgun, From: "no-reply@acme.com", Mailgun: MailgunConfig{Domain: "mg.acme.com", Key: "k"}}, log)
	require.NoError(t, err)
	assert.IsType(t, &Breaker{}, m)

	m, err = New(Config{Provider: ProviderSendGrid, From: "no-reply@acme.com", SendGrid: SendGridConfig{Key: "k"}}, log)
	require.NoError(t, err)
	assert.IsType(t, &Breaker{}, m)

	_, err = New(Config{Provider: ProviderSMTP}, log)
	assert.Error(t, err)

	_, err = New(Config{Provider: "pigeon"}, log)
	assert.Error(t, err)
}

func TestSMTPSender_BuildsHTMLMessage(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	s := &SMTPSender{
		Config: SMTPConfig{Host: "localhost", Port: "2525"},
		From:   "no-reply@acme.com",
		send: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotTo, gotMsg = addr, to, string(msg)
			return nil
		},
	}
	err := s.Send(context.Background(), ports.Message{To: "ann@acme.com", Subject: "Hi", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:2525", gotAddr)
	assert.Equal(t, []string{"ann@acme.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: no-reply@acme.com\r\n"))
	assert.Contains(t, gotMsg, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(gotMsg, "<p>x</p>"))
}

func TestSendGridMessage(t *testing.T) {
	msg := newSendGridMessage(ports.Message{To: "ann@acme.com", From: "no-reply@acme.com", Subject: "Hi", HTML: "<b>x</b>"})
	assert.Equal(t, "Hi", msg.Subject)
	assert.Equal(t, "no-reply@acme.com", msg.From.Address)
	require.Len(t, msg.Personalizations, 1)
	assert.Equal(t, "ann@acme.com", msg.Personalizations[0].To[0].Address)
}

type failing struct{ calls int }

func (f *failing) Send(context.Context, ports.Message) error {
	f.calls++
	return errors.New("provider down")
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	f := &failing{}
	b := NewBreaker("test", f, quietLogger())

	for i := 0; i < 3; i++ {
		require.Error(t, b.Send(context.Background(), ports.Message{To: "x@acme.com"}))
	}
	err := b.Send(context.Background(), ports.Message{To: "x@acme.com"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, f.calls)
}

func TestLogSender(t *testing.T) {
	s := &LogSender{Log: quietLogger(), From: "no-reply@acme.com"}
	assert.NoError(t, s.Send(context.Background(), ports.Message{To: "ann@acme.com"}))
}
