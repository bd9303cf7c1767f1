package sqlstore

import (
	"context"

	"timesheet-api/internal/domain"
)

var projectCols = columns{fieldID: "id", fieldName: "name", fieldClientID: "client_id"}

func (s *Store) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	p.CreatedAt = s.now()
	id, err := insertID(ctx, s.db, "INSERT INTO projects(name, client_id, created_at) VALUES(?, ?, ?)",
		p.Name, p.ClientID, p.CreatedAt)
	if err != nil {
		return domain.Project{}, invalidReference(err, "client")
	}
	p.ID = id
	return p, nil
}

func (s *Store) GetProject(ctx context.Context, id int64) (domain.Project, error) {
	var p domain.Project
	err := s.db.QueryRowContext(ctx, "SELECT id, name, client_id, created_at FROM projects WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &p.ClientID, &p.CreatedAt)
	if err != nil {
		return domain.Project{}, notFound(err, "project", id)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context, q domain.Query) ([]domain.Project, error) {
	where, args := buildWhere(q.Where, projectCols)
	tail, err := buildTail(q, projectCols, domain.Order{Field: fieldID})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, client_id, created_at FROM projects"+where+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Project{}
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ClientID, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = p.CreatedAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE projects SET name = ?, client_id = ? WHERE id = ?", p.Name, p.ClientID, p.ID)
	if err != nil {
		return domain.Project{}, invalidReference(err, "client")
	}
	if err := mustAffectOrExists(ctx, s.db, res, "projects", "project", p.ID); err != nil {
		return domain.Project{}, err
	}
	return s.GetProject(ctx, p.ID)
}

// DeleteProjects deletes matching projects unless any of them still has tasks.
func (s *Store) DeleteProjects(ctx context.Context, f domain.Filter, check domain.DeleteCheck) (int64, error) {
	return s.deleteWhere(ctx, deleteSpec{
		table: "projects",
		from:  "FROM projects",
		id:    "id",
		cols:  projectCols,
		child: &childRef{table: "tasks", fk: "project_id", dep: domain.ProjectTasks},
	}, f, check)
}
