package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet-api/internal/domain"
	"timesheet-api/internal/migrate"
	"timesheet-api/internal/rules"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared&_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	require.NoError(t, migrate.Run(context.Background(), db, migrate.DialectSQLite, log))
	return New(db, migrate.DialectSQLite, log)
}

type fixture struct {
	user    domain.Customer
	client  domain.Client
	project domain.Project
	task    domain.Task
}

func seed(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()
	u, err := s.CreateCustomer(ctx, domain.Customer{Name: "Ann", Email: "ann@acme.com", PasswordHash: "x"})
	require.NoError(t, err)
	c, err := s.CreateClient(ctx, domain.Client{Name: "Acme"})
	require.NoError(t, err)
	p, err := s.CreateProject(ctx, domain.Project{Name: "Website", ClientID: c.ID})
	require.NoError(t, err)
	tk, err := s.CreateTask(ctx, domain.Task{Type: "Development", Description: "build", ProjectID: p.ID, UserID: u.ID})
	require.NoError(t, err)
	return fixture{user: u, client: c, project: p, task: tk}
}

func TestClients_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateClient(ctx, domain.Client{Name: "A"})
	require.NoError(t, err)
	_, err = s.CreateClient(ctx, domain.Client{Name: "B"})
	require.NoError(t, err)

	got, err := s.GetClient(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)

	list, err := s.ListClients(ctx, domain.Query{Order: []domain.Order{{Field: "name", Desc: true}}, Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "B", list[0].Name)

	upd, err := s.UpdateClient(ctx, domain.Client{ID: a.ID, Name: "A2"})
	require.NoError(t, err)
	assert.Equal(t, "A2", upd.Name)

	_, err = s.GetClient(ctx, 999)
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 404, de.Status)

	_, err = s.ListClients(ctx, domain.Query{Order: []domain.Order{{Field: "password"}}})
	de, ok = domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_FILTER", de.Code)
}

func TestDeleteClients_BlockedBatchIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fx := seed(t, s)
	free, err := s.CreateClient(ctx, domain.Client{Name: "Free"})
	require.NoError(t, err)

	n, err := s.DeleteClients(ctx, domain.ByIDs(fx.client.ID, free.ID), rules.Guard(domain.ClientProjects))
	require.Error(t, err)
	assert.Zero(t, n)
	assert.True(t, errors.Is(err, domain.ErrAssociatedEntityExists))
	de, _ := domain.AsError(err)
	assert.Equal(t, "CLIENT_ASSOCIATED_WITH_PROJECTS", de.Code)
	assert.Equal(t, []int64{fx.client.ID}, de.Details["ids"])

	// nothing was deleted
	_, err = s.GetClient(ctx, free.ID)
	require.NoError(t, err)

	n, err = s.DeleteClients(ctx, domain.ByIDs(free.ID), rules.Guard(domain.ClientProjects))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeleteClients_ForeignKeyBackstop(t *testing.T) {
	s := newTestStore(t)
	fx := seed(t, s)

	// no check: the FK constraint still refuses
	_, err := s.DeleteClients(context.Background(), domain.ByIDs(fx.client.ID), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAssociatedEntityExists))
}

func TestDeleteTasks_BlockedByTimeSheets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fx := seed(t, s)

	_, err := s.CreateTimeSheet(ctx, domain.TimeSheet{Date: time.Now(), Duration: 30, Comment: "c",
		Status: domain.TimeSheetInProgress, TaskID: fx.task.ID, UserID: fx.user.ID})
	require.NoError(t, err)

	_, err = s.DeleteTasks(ctx, domain.ByIDs(fx.task.ID), rules.Guard(domain.TaskTimeSheets))
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "TASK_ASSOCIATED_WITH_TIMESHEETS", de.Code)

	n, err := s.DeleteTimeSheets(ctx, domain.Filter{TaskID: &fx.task.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeleteTasks(ctx, domain.ByIDs(fx.task.ID), rules.Guard(domain.TaskTimeSheets))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDelete_EmptyIDsMatchNothing(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	n, err := s.DeleteTimeSheets(context.Background(), domain.Filter{IDs: []int64{}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTasks_ScopedListAndStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fx := seed(t, s)
	other, err := s.CreateCustomer(ctx, domain.Customer{Name: "Bob", Email: "bob@acme.com", PasswordHash: "x"})
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, domain.Task{Type: "Testing", Description: "qa", ProjectID: fx.project.ID, UserID: other.ID})
	require.NoError(t, err)

	mine, err := s.ListTasks(ctx, domain.Query{Where: domain.Filter{UserID: &fx.user.ID}})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.TaskOpen, mine[0].Status)

	byClient, err := s.ListTasks(ctx, domain.Query{Where: domain.Filter{ClientID: &fx.client.ID}})
	require.NoError(t, err)
	assert.Len(t, byClient, 2)

	require.NoError(t, s.SetTaskStatus(ctx, fx.task.ID, domain.TaskClosed))
	got, err := s.GetTask(ctx, fx.task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskClosed, got.Status)

	_, err = s.CreateTask(ctx, domain.Task{Type: "x", Description: "y", ProjectID: 999, UserID: fx.user.ID})
	de, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_REFERENCE", de.Code)
}

func TestTimeSheets_ExportOrderAndJoin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fx := seed(t, s)
	d1 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	d0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, d := range []time.Time{d1, d0} {
		_, err := s.CreateTimeSheet(ctx, domain.TimeSheet{Date: d, Duration: 60, Comment: "work",
			Status: domain.TimeSheetCompleted, TaskID: fx.task.ID, UserID: fx.user.ID})
		require.NoError(t, err)
	}

	rows, err := s.ExportRows(ctx, domain.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Date.Equal(d0))
	assert.Equal(t, "Ann", rows[0].UserName)
	assert.Equal(t, "Acme", rows[0].ClientName)
	assert.Equal(t, "Website", rows[0].ProjectName)
	assert.Equal(t, "Development", rows[0].TaskType)

	from := d1
	list, err := s.ListTimeSheets(ctx, domain.Query{Where: domain.Filter{From: &from}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Date.Equal(d1))
}

func TestUserStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fx := seed(t, s)
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	add := func(d time.Time, minutes int64, st domain.TimeSheetStatus) {
		_, err := s.CreateTimeSheet(ctx, domain.TimeSheet{Date: d, Duration: minutes, Comment: "c",
			Status: st, TaskID: fx.task.ID, UserID: fx.user.ID})
		require.NoError(t, err)
	}
	add(now.Add(-time.Hour), 30, domain.TimeSheetCompleted)
	add(now.AddDate(0, 0, -6), 45, domain.TimeSheetInProgress)
	add(now.AddDate(0, 0, -8), 100, domain.TimeSheetCompleted)

	st, err := s.UserStats(ctx, fx.user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(75), st.WeeklyTotalDuration)
	assert.Equal(t, int64(1), st.TodayCompletedTasksCount)
	assert.Equal(t, int64(1), st.OpenTasksCount)

	require.Len(t, st.DailyDurationForLast7Days, 7)
	assert.Equal(t, domain.DailyDuration{Date: "2024-03-04", Duration: 45}, st.DailyDurationForLast7Days[0])
	assert.Equal(t, domain.DailyDuration{Date: "2024-03-07", Duration: 0}, st.DailyDurationForLast7Days[3])
	assert.Equal(t, domain.DailyDuration{Date: "2024-03-10", Duration: 30}, st.DailyDurationForLast7Days[6])
	require.Len(t, st.DailyCompletedTasksForLast7Days, 7)
	assert.Equal(t, int64(0), st.DailyCompletedTasksForLast7Days[0].Count)
	assert.Equal(t, domain.DailyCount{Date: "2024-03-10", Count: 1}, st.DailyCompletedTasksForLast7Days[6])
	// 2024-03-10 is a Sunday, so the week began on the 4th.
	assert.Equal(t, int64(2), st.CurrentWeekWorkedDays)
	assert.Equal(t, []domain.ClientAllocation{{ClientID: fx.client.ID, ClientName: "Acme", Duration: 75}},
		st.Last7DaysAllocationPerClient)
}

func TestUserStats_WorkedDaysStartOnMonday(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fx := seed(t, s)
	other, err := s.CreateClient(ctx, domain.Client{Name: "Globex"})
	require.NoError(t, err)
	p, err := s.CreateProject(ctx, domain.Project{Name: "Portal", ClientID: other.ID})
	require.NoError(t, err)
	tk, err := s.CreateTask(ctx, domain.Task{Type: "Testing", Description: "qa", ProjectID: p.ID, UserID: fx.user.ID})
	require.NoError(t, err)

	// Wednesday; the window opens the previous Thursday.
	now := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	add := func(d time.Time, minutes int64, taskID int64) {
		_, err := s.CreateTimeSheet(ctx, domain.TimeSheet{Date: d, Duration: minutes, Comment: "c",
			Status: domain.TimeSheetInProgress, TaskID: taskID, UserID: fx.user.ID})
		require.NoError(t, err)
	}
	add(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), 20, fx.task.ID)
	add(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), 40, tk.ID)
	add(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), 10, fx.task.ID)
	add(time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), 15, tk.ID)

	st, err := s.UserStats(ctx, fx.user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(85), st.WeeklyTotalDuration)
	assert.Equal(t, int64(2), st.CurrentWeekWorkedDays)
	assert.Equal(t, "2024-03-07", st.DailyDurationForLast7Days[0].Date)
	assert.Equal(t, int64(20), st.DailyDurationForLast7Days[1].Duration)
	assert.Equal(t, int64(50), st.DailyDurationForLast7Days[4].Duration)
	assert.Equal(t, []domain.ClientAllocation{
		{ClientID: fx.client.ID, ClientName: "Acme", Duration: 30},
		{ClientID: other.ID, ClientName: "Globex", Duration: 55},
	}, st.Last7DaysAllocationPerClient)
}

func TestCustomers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tok := "abc"

	c, err := s.CreateCustomer(ctx, domain.Customer{Name: "Ann", Email: "ann@acme.com", PasswordHash: "h", VerificationToken: &tok})
	require.NoError(t, err)

	_, err = s.CreateCustomer(ctx, domain.Customer{Name: "Ann2", Email: "ann@acme.com", PasswordHash: "h"})
	assert.True(t, errors.Is(err, domain.ErrEmailExists))

	_, err = s.GetCustomerByEmail(ctx, "nobody@acme.com")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))

	got, err := s.GetCustomerByEmail(ctx, "ann@acme.com")
	require.NoError(t, err)
	require.NotNil(t, got.VerificationToken)
	assert.Equal(t, "abc", *got.VerificationToken)
	assert.False(t, got.EmailVerified)

	assert.True(t, errors.Is(s.MarkVerified(ctx, c.ID, "stale"), domain.ErrInvalidToken))
	require.NoError(t, s.MarkVerified(ctx, c.ID, "abc"))
	assert.True(t, errors.Is(s.MarkVerified(ctx, c.ID, "abc"), domain.ErrInvalidToken))
	require.NoError(t, s.UpdateCustomerName(ctx, c.ID, "Annie"))
	require.NoError(t, s.SetPassword(ctx, c.ID, "h2"))

	got, err = s.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
	assert.Nil(t, got.VerificationToken)
	assert.Equal(t, "Annie", got.Name)
	assert.Equal(t, "h2", got.PasswordHash)
}

func TestRoles_UpsertIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fx := seed(t, s)

	id1, err := s.UpsertRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	id2, err := s.UpsertRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	require.NoError(t, s.UpsertRoleMapping(ctx, domain.PrincipalTypeUser, fx.user.ID, id1))
	require.NoError(t, s.UpsertRoleMapping(ctx, domain.PrincipalTypeUser, fx.user.ID, id1))

	names, err := s.RoleNames(ctx, fx.user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, names)
}

func TestSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	fx := seed(t, s)

	require.NoError(t, s.CreateSession(ctx, domain.Session{ID: "s1", UserID: fx.user.ID, TTL: time.Hour}))
	got, err := s.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, fx.user.ID, got.UserID)
	assert.Equal(t, time.Hour, got.TTL)

	require.NoError(t, s.DeleteSession(ctx, "s1"))
	_, err = s.GetSession(ctx, "s1")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
	assert.True(t, errors.Is(s.DeleteSession(ctx, "s1"), domain.ErrSessionNotFound))
}
