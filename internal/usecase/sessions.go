package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"timesheet-api/internal/domain"
	"timesheet-api/internal/ports"
)

const (
	purposeAccess = "access"
	purposeReset  = "reset"
)

// Sessions issues and resolves access tokens. Each token is a signed JWT
// whose id names a persisted session, so logout revokes it.
type Sessions struct {
	Store  ports.SessionStore
	Tokens ports.TokenIssuer
	Roles  ports.RoleResolver
	TTL    time.Duration
	Now    func() time.Time
}

func (s *Sessions) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create persists a session for userID and returns its signed token.
func (s *Sessions) Create(ctx context.Context, userID int64) (string, domain.Session, error) {
	sess := domain.Session{ID: uuid.NewString(), UserID: userID, TTL: s.TTL, CreatedAt: s.now()}
	if err := s.Store.CreateSession(ctx, sess); err != nil {
		return "", domain.Session{}, err
	}
	raw, err := s.Tokens.Issue(ports.TokenClaims{ID: sess.ID, UserID: userID, Purpose: purposeAccess}, s.TTL)
	if err != nil {
		return "", domain.Session{}, err
	}
	return raw, sess, nil
}

// Resolve turns a bearer token into the principal it was issued to.
func (s *Sessions) Resolve(ctx context.Context, raw string) (domain.Principal, error) {
	sess, err := s.session(ctx, raw, purposeAccess)
	if err != nil {
		return domain.Principal{}, err
	}
	roles, err := s.Roles.RoleNames(ctx, sess.UserID)
	if err != nil {
		return domain.Principal{}, domain.DependencyFailure("ROLE_LOOKUP_FAILED", err)
	}
	return domain.Principal{UserID: sess.UserID, Roles: roles}, nil
}

// Revoke deletes the session behind raw.
func (s *Sessions) Revoke(ctx context.Context, raw string) error {
	sess, err := s.session(ctx, raw, purposeAccess)
	if err != nil {
		return err
	}
	err = s.Store.DeleteSession(ctx, sess.ID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.ErrUnauthorized
	}
	return err
}

// IssueReset persists a reset session for userID and returns its token.
func (s *Sessions) IssueReset(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	sess := domain.Session{ID: uuid.NewString(), UserID: userID, TTL: ttl, CreatedAt: s.now()}
	if err := s.Store.CreateSession(ctx, sess); err != nil {
		return "", err
	}
	return s.Tokens.Issue(ports.TokenClaims{ID: sess.ID, UserID: userID, Purpose: purposeReset}, ttl)
}

// ConsumeReset deletes the reset session behind raw and returns its user.
// Each reset token is accepted once.
func (s *Sessions) ConsumeReset(ctx context.Context, raw string) (int64, error) {
	sess, err := s.session(ctx, raw, purposeReset)
	if errors.Is(err, domain.ErrUnauthorized) {
		return 0, domain.ErrInvalidToken
	}
	if err != nil {
		return 0, err
	}
	err = s.Store.DeleteSession(ctx, sess.ID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return 0, domain.ErrInvalidToken
	}
	if err != nil {
		return 0, err
	}
	return sess.UserID, nil
}

func (s *Sessions) session(ctx context.Context, raw, purpose string) (domain.Session, error) {
	if raw == "" {
		return domain.Session{}, domain.ErrUnauthorized
	}
	claims, err := s.Tokens.Parse(raw)
	if err != nil || claims.Purpose != purpose {
		return domain.Session{}, domain.ErrUnauthorized
	}
	sess, err := s.Store.GetSession(ctx, claims.ID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.Session{}, domain.ErrUnauthorized
	}
	if err != nil {
		return domain.Session{}, err
	}
	if sess.UserID != claims.UserID || sess.Expired(s.now()) {
		return domain.Session{}, domain.ErrUnauthorized
	}
	return sess, nil
}
