// Package sqlstore implements the persistence ports on database/sql for
// MySQL (go-sql-driver/mysql) and SQLite (modernc.org/sqlite).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"timesheet-api/internal/domain"
)

// Store implements every persistence port against one *sql.DB.
type Store struct {
	db      *sql.DB
	dialect string
	log     *logrus.Logger
	now     func() time.Time
}

// Open opens a connection pool for driver ("mysql" or "sqlite") and pings it.
// Example MySQL DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func Open(ctx context.Context, driver, dsn string, log *logrus.Logger) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("sqlstore: DSN is required")
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	switch driver {
	case "mysql":
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	case "sqlite":
		// one writer; keeps per-connection pragmas in effect
		db.SetMaxOpenConns(1)
	default:
		db.Close()
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	s := New(db, driver, log)
	if driver == "sqlite" {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

// New wraps an already opened pool.
func New(db *sql.DB, dialect string, log *logrus.Logger) *Store {
	return &Store{db: db, dialect: dialect, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// DB exposes the pool for migrations and health checks.
func (s *Store) DB() *sql.DB { return s.db }

// Dialect is "mysql" or "sqlite".
func (s *Store) Dialect() string { return s.dialect }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the underlying DB.
func (s *Store) Close() error { return s.db.Close() }

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// childRef is a table whose rows block deletion of their parent.
type childRef struct {
	table string
	fk    string
	dep   domain.Dependency
}

// deleteSpec describes a guarded delete for one entity.
type deleteSpec struct {
	table string
	from  string // FROM clause used to select candidate ids, may join
	id    string
	cols  columns
	child *childRef
}

// deleteWhere selects the ids matched by f, runs check against them inside
// the same transaction and deletes them. A foreign key violation raised by
// a dependent inserted concurrently is reported as the dependency error.
func (s *Store) deleteWhere(ctx context.Context, spec deleteSpec, f domain.Filter, check domain.DeleteCheck) (int64, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}

	where, args := buildWhere(f, spec.cols)
	ids, err := selectIDs(ctx, tx, "SELECT "+spec.id+" "+spec.from+where, args...)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if len(ids) == 0 {
		return 0, tx.Commit()
	}

	if spec.child != nil && check != nil {
		child := spec.child
		lookup := func(ctx context.Context, ids []int64) ([]int64, error) {
			q := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IN (%s)", child.fk, child.table, child.fk, placeholders(len(ids)))
			return selectIDs(ctx, tx, q, int64Args(ids)...)
		}
		if err := check(ctx, ids, lookup); err != nil {
			tx.Rollback()
			return 0, err
		}
	}

	res, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)", spec.table, placeholders(len(ids))), int64Args(ids)...)
	if err != nil {
		tx.Rollback()
		if spec.child != nil && isForeignKeyViolation(err) {
			return 0, domain.AssociatedEntityExists(spec.child.dep, nil)
		}
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		if spec.child != nil && isForeignKeyViolation(err) {
			return 0, domain.AssociatedEntityExists(spec.child.dep, nil)
		}
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"table": spec.table, "count": n}).Info("sqlstore deleted rows")
	return n, nil
}

func selectIDs(ctx context.Context, q queryer, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func insertID(ctx context.Context, q queryer, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// mustAffect turns a zero-row update into a not found error.
func mustAffect(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound(entity, id)
	}
	return nil
}
