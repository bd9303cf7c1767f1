package sqlstore

import (
	"context"

	"timesheet-api/internal/domain"
)

var taskCols = columns{
	fieldID:        "t.id",
	fieldUserID:    "t.user_id",
	fieldProjectID: "t.project_id",
	fieldClientID:  "p.client_id",
	fieldStatus:    "t.status",
	fieldType:      "t.type",
}

const taskSelect = "SELECT t.id, t.type, t.description, t.status, t.project_id, t.user_id FROM tasks t JOIN projects p ON p.id = t.project_id"

func (s *Store) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if t.Status == "" {
		t.Status = domain.TaskOpen
	}
	id, err := insertID(ctx, s.db, "INSERT INTO tasks(type, description, status, project_id, user_id) VALUES(?, ?, ?, ?, ?)",
		t.Type, t.Description, string(t.Status), t.ProjectID, t.UserID)
	if err != nil {
		return domain.Task{}, invalidReference(err, "project or user")
	}
	t.ID = id
	return t, nil
}

func (s *Store) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	var t domain.Task
	err := s.db.QueryRowContext(ctx, taskSelect+" WHERE t.id = ?", id).
		Scan(&t.ID, &t.Type, &t.Description, &t.Status, &t.ProjectID, &t.UserID)
	if err != nil {
		return domain.Task{}, notFound(err, "task", id)
	}
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context, q domain.Query) ([]domain.Task, error) {
	where, args := buildWhere(q.Where, taskCols)
	tail, err := buildTail(q, taskCols, domain.Order{Field: fieldID})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, taskSelect+where+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Type, &t.Description, &t.Status, &t.ProjectID, &t.UserID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTask writes the editable fields. Status is owned by SetTaskStatus.
func (s *Store) UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE tasks SET type = ?, description = ?, project_id = ? WHERE id = ?",
		t.Type, t.Description, t.ProjectID, t.ID)
	if err != nil {
		return domain.Task{}, invalidReference(err, "project")
	}
	if err := mustAffectOrExists(ctx, s.db, res, "tasks", "task", t.ID); err != nil {
		return domain.Task{}, err
	}
	return s.GetTask(ctx, t.ID)
}

func (s *Store) SetTaskStatus(ctx context.Context, id int64, status domain.TaskStatus) error {
	res, err := s.db.ExecContext(ctx, "UPDATE tasks SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return err
	}
	return mustAffectOrExists(ctx, s.db, res, "tasks", "task", id)
}

// DeleteTasks deletes matching tasks unless any of them has timesheets.
func (s *Store) DeleteTasks(ctx context.Context, f domain.Filter, check domain.DeleteCheck) (int64, error) {
	return s.deleteWhere(ctx, deleteSpec{
		table: "tasks",
		from:  "FROM tasks t JOIN projects p ON p.id = t.project_id",
		id:    "t.id",
		cols:  taskCols,
		child: &childRef{table: "time_sheets", fk: "task_id", dep: domain.TaskTimeSheets},
	}, f, check)
}
