package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"timesheet-api/internal/domain"
)

const customerSelect = "SELECT id, name, email, password_hash, email_verified, verification_token, created_at FROM customers"

func scanCustomer(row *sql.Row) (domain.Customer, error) {
	var (
		c     domain.Customer
		token sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.EmailVerified, &token, &c.CreatedAt); err != nil {
		return domain.Customer{}, err
	}
	if token.Valid {
		c.VerificationToken = &token.String
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	c.CreatedAt = s.now()
	id, err := insertID(ctx, s.db,
		"INSERT INTO customers(name, email, password_hash, email_verified, verification_token, created_at) VALUES(?, ?, ?, ?, ?, ?)",
		c.Name, c.Email, c.PasswordHash, c.EmailVerified, nullString(c.VerificationToken), c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Customer{}, domain.ErrEmailExists
		}
		return domain.Customer{}, err
	}
	c.ID = id
	return c, nil
}

func (s *Store) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	c, err := scanCustomer(s.db.QueryRowContext(ctx, customerSelect+" WHERE id = ?", id))
	if err != nil {
		return domain.Customer{}, notFound(err, "customer", id)
	}
	return c, nil
}

// GetCustomerByEmail returns domain.ErrUserNotFound when no customer has email.
func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (domain.Customer, error) {
	c, err := scanCustomer(s.db.QueryRowContext(ctx, customerSelect+" WHERE email = ?", email))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, domain.ErrUserNotFound
	}
	return c, err
}

func (s *Store) UpdateCustomerName(ctx context.Context, id int64, name string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE customers SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return err
	}
	return mustAffectOrExists(ctx, s.db, res, "customers", "customer", id)
}

func (s *Store) SetVerificationToken(ctx context.Context, id int64, token *string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE customers SET verification_token = ? WHERE id = ?", nullString(token), id)
	if err != nil {
		return err
	}
	return mustAffectOrExists(ctx, s.db, res, "customers", "customer", id)
}

// MarkVerified sets emailVerified and clears the verification token, but
// only while the stored token still equals token. A lost race or a stale
// token gives ErrInvalidToken.
func (s *Store) MarkVerified(ctx context.Context, id int64, token string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE customers SET email_verified = ?, verification_token = NULL WHERE id = ? AND verification_token = ?",
		true, id, token)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInvalidToken
	}
	return nil
}

func (s *Store) SetPassword(ctx context.Context, id int64, hash string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE customers SET password_hash = ? WHERE id = ?", hash, id)
	if err != nil {
		return err
	}
	return mustAffectOrExists(ctx, s.db, res, "customers", "customer", id)
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
