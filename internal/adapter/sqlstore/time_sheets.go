package sqlstore

import (
	"context"
	"time"

	"timesheet-api/internal/domain"
)

var timeSheetCols = columns{
	fieldID:        "ts.id",
	fieldUserID:    "ts.user_id",
	fieldTaskID:    "ts.task_id",
	fieldProjectID: "t.project_id",
	fieldClientID:  "p.client_id",
	fieldStatus:    "ts.status",
	fieldDate:      "ts.date",
	fieldDuration:  "ts.duration",
}

const timeSheetFrom = " FROM time_sheets ts" +
	" LEFT JOIN tasks t ON t.id = ts.task_id" +
	" LEFT JOIN projects p ON p.id = t.project_id" +
	" LEFT JOIN clients c ON c.id = p.client_id" +
	" LEFT JOIN customers u ON u.id = ts.user_id"

const timeSheetSelect = "SELECT ts.id, ts.date, ts.duration, ts.comment, ts.status, ts.task_id, ts.user_id" + timeSheetFrom

func (s *Store) CreateTimeSheet(ctx context.Context, ts domain.TimeSheet) (domain.TimeSheet, error) {
	ts.Date = ts.Date.UTC()
	id, err := insertID(ctx, s.db,
		"INSERT INTO time_sheets(date, duration, comment, status, task_id, user_id) VALUES(?, ?, ?, ?, ?, ?)",
		ts.Date, ts.Duration, ts.Comment, string(ts.Status), ts.TaskID, ts.UserID)
	if err != nil {
		return domain.TimeSheet{}, invalidReference(err, "task or user")
	}
	ts.ID = id
	return ts, nil
}

func (s *Store) GetTimeSheet(ctx context.Context, id int64) (domain.TimeSheet, error) {
	var ts domain.TimeSheet
	err := s.db.QueryRowContext(ctx, timeSheetSelect+" WHERE ts.id = ?", id).
		Scan(&ts.ID, &ts.Date, &ts.Duration, &ts.Comment, &ts.Status, &ts.TaskID, &ts.UserID)
	if err != nil {
		return domain.TimeSheet{}, notFound(err, "timeSheet", id)
	}
	ts.Date = ts.Date.UTC()
	return ts, nil
}

func (s *Store) ListTimeSheets(ctx context.Context, q domain.Query) ([]domain.TimeSheet, error) {
	where, args := buildWhere(q.Where, timeSheetCols)
	tail, err := buildTail(q, timeSheetCols, domain.Order{Field: fieldID})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, timeSheetSelect+where+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.TimeSheet{}
	for rows.Next() {
		var ts domain.TimeSheet
		if err := rows.Scan(&ts.ID, &ts.Date, &ts.Duration, &ts.Comment, &ts.Status, &ts.TaskID, &ts.UserID); err != nil {
			return nil, err
		}
		ts.Date = ts.Date.UTC()
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *Store) UpdateTimeSheet(ctx context.Context, ts domain.TimeSheet) (domain.TimeSheet, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE time_sheets SET date = ?, duration = ?, comment = ?, status = ?, task_id = ? WHERE id = ?",
		ts.Date.UTC(), ts.Duration, ts.Comment, string(ts.Status), ts.TaskID, ts.ID)
	if err != nil {
		return domain.TimeSheet{}, invalidReference(err, "task")
	}
	if err := mustAffectOrExists(ctx, s.db, res, "time_sheets", "timeSheet", ts.ID); err != nil {
		return domain.TimeSheet{}, err
	}
	return s.GetTimeSheet(ctx, ts.ID)
}

// DeleteTimeSheets deletes matching timesheets. Nothing depends on them.
func (s *Store) DeleteTimeSheets(ctx context.Context, f domain.Filter) (int64, error) {
	return s.deleteWhere(ctx, deleteSpec{
		table: "time_sheets",
		from:  timeSheetFrom[1:],
		id:    "ts.id",
		cols:  timeSheetCols,
	}, f, nil)
}

// ExportRows returns timesheets joined with their task, project, client and
// user. Missing relations yield empty fields.
func (s *Store) ExportRows(ctx context.Context, q domain.Query) ([]domain.ExportRow, error) {
	where, args := buildWhere(q.Where, timeSheetCols)
	tail, err := buildTail(q, timeSheetCols,
		domain.Order{Field: fieldDate}, domain.Order{Field: fieldUserID})
	if err != nil {
		return nil, err
	}
	query := "SELECT ts.date, COALESCE(u.name, ''), COALESCE(u.email, ''), COALESCE(c.name, ''), COALESCE(c.id, 0)," +
		" COALESCE(p.name, ''), COALESCE(p.id, 0), ts.task_id, COALESCE(t.type, ''), COALESCE(t.description, '')," +
		" ts.comment, ts.status, ts.duration" + timeSheetFrom + where + tail
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.ExportRow{}
	for rows.Next() {
		var r domain.ExportRow
		if err := rows.Scan(&r.Date, &r.UserName, &r.UserEmail, &r.ClientName, &r.ClientID,
			&r.ProjectName, &r.ProjectID, &r.TaskID, &r.TaskType, &r.TaskDescription,
			&r.Comment, &r.Status, &r.Duration); err != nil {
			return nil, err
		}
		r.Date = r.Date.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// UserStats reports totals and daily series over the last seven days
// including today, plus the user's open tasks. Days are UTC.
func (s *Store) UserStats(ctx context.Context, userID int64, now time.Time) (domain.UserStats, error) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	weekStart := today.AddDate(0, 0, -6)

	var st domain.UserStats
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(duration), 0) FROM time_sheets WHERE user_id = ? AND date >= ? AND date < ?",
		userID, weekStart, tomorrow).Scan(&st.WeeklyTotalDuration)
	if err != nil {
		return domain.UserStats{}, err
	}
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM time_sheets WHERE user_id = ? AND status = ? AND date >= ? AND date < ?",
		userID, string(domain.TimeSheetCompleted), today, tomorrow).Scan(&st.TodayCompletedTasksCount)
	if err != nil {
		return domain.UserStats{}, err
	}
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status = ?",
		userID, string(domain.TaskOpen)).Scan(&st.OpenTasksCount)
	if err != nil {
		return domain.UserStats{}, err
	}
	if err := s.dailyStats(ctx, userID, today, &st); err != nil {
		return domain.UserStats{}, err
	}
	st.Last7DaysAllocationPerClient, err = s.clientAllocation(ctx, userID, weekStart, tomorrow)
	if err != nil {
		return domain.UserStats{}, err
	}
	return st, nil
}

// dailyStats buckets the window in Go. Stored date formats differ between
// dialects, so SQL DATE() grouping is not portable.
func (s *Store) dailyStats(ctx context.Context, userID int64, today time.Time, st *domain.UserStats) error {
	weekStart := today.AddDate(0, 0, -6)
	monday := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))

	rows, err := s.db.QueryContext(ctx,
		"SELECT date, duration, status FROM time_sheets WHERE user_id = ? AND date >= ? AND date < ?",
		userID, weekStart, today.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	defer rows.Close()

	durations := make([]int64, 7)
	completed := make([]int64, 7)
	worked := map[int]bool{}
	for rows.Next() {
		var (
			date     time.Time
			duration int64
			status   string
		)
		if err := rows.Scan(&date, &duration, &status); err != nil {
			return err
		}
		date = date.UTC()
		i := int(date.Sub(weekStart) / (24 * time.Hour))
		if i < 0 || i > 6 {
			continue
		}
		durations[i] += duration
		if status == string(domain.TimeSheetCompleted) {
			completed[i]++
		}
		if !date.Before(monday) {
			worked[i] = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	st.DailyDurationForLast7Days = make([]domain.DailyDuration, 7)
	st.DailyCompletedTasksForLast7Days = make([]domain.DailyCount, 7)
	for i := 0; i < 7; i++ {
		d := weekStart.AddDate(0, 0, i).Format(time.DateOnly)
		st.DailyDurationForLast7Days[i] = domain.DailyDuration{Date: d, Duration: durations[i]}
		st.DailyCompletedTasksForLast7Days[i] = domain.DailyCount{Date: d, Count: completed[i]}
	}
	st.CurrentWeekWorkedDays = int64(len(worked))
	return nil
}

func (s *Store) clientAllocation(ctx context.Context, userID int64, from, to time.Time) ([]domain.ClientAllocation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT c.id, c.name, COALESCE(SUM(ts.duration), 0) FROM time_sheets ts"+
			" JOIN tasks t ON t.id = ts.task_id"+
			" JOIN projects p ON p.id = t.project_id"+
			" JOIN clients c ON c.id = p.client_id"+
			" WHERE ts.user_id = ? AND ts.date >= ? AND ts.date < ?"+
			" GROUP BY c.id, c.name ORDER BY c.id",
		userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ClientAllocation{}
	for rows.Next() {
		var a domain.ClientAllocation
		if err := rows.Scan(&a.ClientID, &a.ClientName, &a.Duration); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
