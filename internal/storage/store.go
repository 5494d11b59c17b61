// Package storage is the persistence gateway: typed access to the
// users, categories, expenses and budgets tables in a local SQLite
// file. Uniqueness and referential rules live in the schema, so
// check-then-insert callers are backstopped by the store itself.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"budget/internal/core"

	_ "modernc.org/sqlite"
)

// Store owns the database handle. It is constructed once by the
// composition root and passed to every component needing persistence;
// there is no package-level instance.
type Store struct {
	db *sql.DB
}

var (
	// ErrDuplicate reports a unique-constraint rejection (email,
	// category name, or a second budget for the same user and month).
	ErrDuplicate = errors.New("duplicate value")
	// ErrForeignKey reports a referential failure: deleting a row that
	// is still referenced (a category with recorded expenses) or
	// inserting a row whose parent does not exist.
	ErrForeignKey = errors.New("foreign key constraint")
)

// Open opens (creating if needed) the SQLite database at dbPath and
// brings the schema up to date.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// dsn enables foreign key enforcement on every pooled connection.
func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// storeErr maps SQLite constraint failures onto the package sentinels
// and wraps everything else with the operation name.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%s: %w", op, ErrForeignKey)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// dayString collapses a timestamp to its stored calendar-day form.
// Dates are kept as "yyyy-MM-dd" text so BETWEEN compares correctly
// and both range ends stay inclusive at day resolution.
func dayString(t time.Time) string {
	return t.Format(core.DateFormat)
}

func parseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(core.DateFormat, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return t, nil
}
