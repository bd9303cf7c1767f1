package sqlstore

import (
	"context"
	"database/sql"

	"timesheet-api/internal/domain"
)

var clientCols = columns{fieldID: "id", fieldName: "name"}

func (s *Store) CreateClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	c.CreatedAt = s.now()
	id, err := insertID(ctx, s.db, "INSERT INTO clients(name, created_at) VALUES(?, ?)", c.Name, c.CreatedAt)
	if err != nil {
		return domain.Client{}, err
	}
	c.ID = id
	return c, nil
}

func (s *Store) GetClient(ctx context.Context, id int64) (domain.Client, error) {
	var c domain.Client
	err := s.db.QueryRowContext(ctx, "SELECT id, name, created_at FROM clients WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		return domain.Client{}, notFound(err, "client", id)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (s *Store) ListClients(ctx context.Context, q domain.Query) ([]domain.Client, error) {
	where, args := buildWhere(q.Where, clientCols)
	tail, err := buildTail(q, clientCols, domain.Order{Field: fieldID})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at FROM clients"+where+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Client{}
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE clients SET name = ? WHERE id = ?", c.Name, c.ID)
	if err != nil {
		return domain.Client{}, err
	}
	if err := mustAffectOrExists(ctx, s.db, res, "clients", "client", c.ID); err != nil {
		return domain.Client{}, err
	}
	return s.GetClient(ctx, c.ID)
}

// DeleteClients deletes matching clients unless any of them still has projects.
func (s *Store) DeleteClients(ctx context.Context, f domain.Filter, check domain.DeleteCheck) (int64, error) {
	return s.deleteWhere(ctx, deleteSpec{
		table: "clients",
		from:  "FROM clients",
		id:    "id",
		cols:  clientCols,
		child: &childRef{table: "projects", fk: "client_id", dep: domain.ClientProjects},
	}, f, check)
}

// mustAffectOrExists accepts a zero-row update when the row exists; MySQL
// reports unchanged rows as unaffected.
func mustAffectOrExists(ctx context.Context, q *sql.DB, res sql.Result, table, entity string, id int64) error {
	if err := mustAffect(res, entity, id); err == nil {
		return nil
	}
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	return notFound(err, entity, id)
}
