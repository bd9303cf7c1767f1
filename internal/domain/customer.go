package domain

import "time"

// Customer is an application user. Email is fixed at creation.
type Customer struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	EmailVerified     bool      `json:"emailVerified"`
	VerificationToken *string   `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Session is a persisted access token.
type Session struct {
	ID        string
	UserID    int64
	TTL       time.Duration
	CreatedAt time.Time
}

// Expired reports whether the session is past its ttl at now.
func (s Session) Expired(now time.Time) bool {
	return s.TTL > 0 && now.After(s.CreatedAt.Add(s.TTL))
}
