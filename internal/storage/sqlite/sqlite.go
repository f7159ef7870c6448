// Package sqlite provides the SQLite dialect for sqlstore.
//
// SQLite stores everything in a single file on disk. There is no network,
// no separate server process, and no installation beyond the driver, which
// makes it the default backend for local development and for tests.
package sqlite

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/student-management-api/internal/config"
	"github.com/aanand-mishra/student-management-api/internal/storage/sqlstore"
)

// Dialect implements sqlstore.Dialect for github.com/mattn/go-sqlite3.
type Dialect struct{}

// DriverName is the name go-sqlite3 registers in its init.
func (Dialect) DriverName() string { return "sqlite3" }

// Schema creates the students table. TEXT comparisons use the BINARY
// collation, so the UNIQUE email check is an exact string match.
func (Dialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS students (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			name   TEXT    NOT NULL,
			email  TEXT    NOT NULL UNIQUE,
			age    INTEGER NOT NULL,
			course TEXT    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_students_name ON students (name)`,
	}
}

// Rebind is a no-op: SQLite understands ? placeholders natively.
func (Dialect) Rebind(query string) string { return query }

// InsertReturnsID is true; RETURNING is available since SQLite 3.35.
func (Dialect) InsertReturnsID() bool { return true }

func (Dialect) IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// New opens the SQLite database at cfg.DSN (a file path, optionally with
// go-sqlite3 query parameters) and creates the students table if needed.
func New(ctx context.Context, cfg config.Storage, log *slog.Logger) (*sqlstore.Store, error) {
	return sqlstore.Open(ctx, Dialect{}, cfg.DSN,
		sqlstore.WithLogger(log),
		sqlstore.WithEcho(cfg.Echo),
	)
}
