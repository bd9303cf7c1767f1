package mail

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"timesheet-api/internal/ports"
)

// Breaker stops calling a failing provider for a while after repeated errors.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker
	next ports.Mailer
}

func NewBreaker(name string, next ports.Mailer, log *logrus.Logger) *Breaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mail-" + name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("mail breaker state changed")
		},
	})
	return &Breaker{cb: cb, next: next}
}

func (b *Breaker) Send(ctx context.Context, m ports.Message) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Send(ctx, m)
	})
	return err
}
