package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sirupsen/logrus"
)

// UpsertRole returns the id of the role named name, creating it if needed.
func (s *Store) UpsertRole(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM roles WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	id, err = insertID(ctx, s.db, "INSERT INTO roles(name) VALUES(?)", name)
	if err != nil {
		if isUniqueViolation(err) {
			// created concurrently
			err = s.db.QueryRowContext(ctx, "SELECT id FROM roles WHERE name = ?", name).Scan(&id)
			return id, err
		}
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"role": name, "id": id}).Info("role created")
	return id, nil
}

// UpsertRoleMapping binds a principal to a role. Existing bindings are kept.
func (s *Store) UpsertRoleMapping(ctx context.Context, principalType string, principalID, roleID int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO role_mappings(principal_type, principal_id, role_id) VALUES(?, ?, ?)",
		principalType, principalID, roleID)
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

// RoleNames lists the roles mapped to a USER principal, sorted by name.
func (s *Store) RoleNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT r.name FROM role_mappings m JOIN roles r ON r.id = m.role_id"+
			" WHERE m.principal_type = 'USER' AND m.principal_id = ? ORDER BY r.name", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
