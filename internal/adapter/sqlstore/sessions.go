package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"timesheet-api/internal/domain"
)

func (s *Store) CreateSession(ctx context.Context, sess domain.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO access_tokens(id, user_id, ttl_seconds, created_at) VALUES(?, ?, ?, ?)",
		sess.ID, sess.UserID, int64(sess.TTL/time.Second), sess.CreatedAt.UTC())
	return err
}

func (s *Store) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var (
		sess domain.Session
		ttl  int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT id, user_id, ttl_seconds, created_at FROM access_tokens WHERE id = ?", id).
		Scan(&sess.ID, &sess.UserID, &ttl, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	sess.TTL = time.Duration(ttl) * time.Second
	sess.CreatedAt = sess.CreatedAt.UTC()
	return sess, nil
}

// DeleteSession revokes id. Unknown or already deleted ids give
// ErrSessionNotFound, so a caller consuming a session learns it lost.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM access_tokens WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
