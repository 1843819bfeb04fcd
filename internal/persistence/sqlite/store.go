package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/hr-portal/internal/persistence"
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed implementation of every portal repository.
// Open, Migrate, and Close form the storage lifecycle; the repository
// methods are split across the files in this package.
type Store struct {
	db *sql.DB
}

// Open establishes a connection to the SQLite database identified by dsn.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: dsn must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// modernc.org/sqlite serializes access per connection; a single
	// connection avoids SQLITE_BUSY on concurrent writers.
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('user', 'admin')),
		verified INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	// No foreign keys on email/department_id: deletes do not cascade and
	// dangling references are rendered as placeholders.
	`CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		email TEXT NOT NULL,
		position TEXT NOT NULL,
		department_id TEXT NOT NULL,
		hire_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		items TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('Pending', 'Approved', 'Rejected')),
		account_email TEXT NOT NULL,
		submitted_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
	// Single-row marker table standing in for the pending-verification key.
	`CREATE TABLE IF NOT EXISTS pending_verification (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		email TEXT NOT NULL
	)`,
}

// Migrate applies the schema. Statements are idempotent so a database with
// missing or partially created tables converges to the full schema.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: failed to apply schema: %w", err)
		}
	}
	return nil
}

// mapError translates driver errors to persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return persistence.ErrDuplicate
	case strings.Contains(msg, "CHECK constraint failed"):
		return persistence.ErrConstraintViolation
	case strings.Contains(msg, "constraint failed"):
		return persistence.ErrConstraintViolation
	}

	return err
}

func rowsAffected(result sql.Result) (int64, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: failed to read rows affected: %w", err)
	}
	return affected, nil
}

// Timestamps are stored as RFC 3339 text.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: failed to parse %s: %w", column, err)
	}
	return t, nil
}

func formatNullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullableTime(value sql.NullString, column string) (*time.Time, error) {
	if !value.Valid || strings.TrimSpace(value.String) == "" {
		return nil, nil
	}
	t, err := parseTime(value.String, column)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
