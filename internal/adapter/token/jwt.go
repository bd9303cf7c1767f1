// Package token signs session tokens as HS256 JWTs.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"timesheet-api/internal/ports"
)

var (
	ErrNoSecret     = errors.New("token: signing secret is required")
	ErrInvalidToken = errors.New("token: invalid token")
)

type claims struct {
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// Manager implements ports.TokenIssuer.
type Manager struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewManager(secret, issuer string) (*Manager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Manager{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Issue signs c. A zero ttl yields a token without expiry.
func (m *Manager) Issue(c ports.TokenClaims, ttl time.Duration) (string, error) {
	now := m.now()
	rc := jwt.RegisteredClaims{
		ID:       c.ID,
		Subject:  strconv.FormatInt(c.UserID, 10),
		Issuer:   m.issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		rc.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{Purpose: c.Purpose, RegisteredClaims: rc})
	return t.SignedString(m.secret)
}

// Parse verifies signature, expiry and issuer and returns the claims.
func (m *Manager) Parse(raw string) (ports.TokenClaims, error) {
	var c claims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	t, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return ports.TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return ports.TokenClaims{}, ErrInvalidToken
	}
	uid, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return ports.TokenClaims{}, fmt.Errorf("%w: subject %q", ErrInvalidToken, c.Subject)
	}
	return ports.TokenClaims{ID: c.ID, UserID: uid, Purpose: c.Purpose}, nil
}
