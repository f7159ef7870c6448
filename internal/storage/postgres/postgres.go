// Package postgres provides the PostgreSQL dialect for sqlstore, using the
// pgx driver through its database/sql adapter.
package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/aanand-mishra/student-management-api/internal/config"
	"github.com/aanand-mishra/student-management-api/internal/storage/sqlstore"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Dialect implements sqlstore.Dialect for PostgreSQL.
type Dialect struct{}

func (Dialect) DriverName() string { return "pgx" }

func (Dialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS students (
			id     BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
			name   VARCHAR(100) NOT NULL,
			email  VARCHAR(320) NOT NULL UNIQUE,
			age    INTEGER      NOT NULL,
			course VARCHAR(100) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_students_name ON students (name)`,
	}
}

// Rebind turns each ? into $1, $2, ... in order of appearance.
func (Dialect) Rebind(query string) string {
	n := strings.Count(query, "?")
	if n == 0 {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + n*2)

	arg := 1
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(arg))
		arg++
	}
	return b.String()
}

// InsertReturnsID is true; pgx does not implement LastInsertId.
func (Dialect) InsertReturnsID() bool { return true }

func (Dialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// New connects to PostgreSQL using cfg.DSN (a postgres:// URL or key=value
// string) and creates the students table if needed.
func New(ctx context.Context, cfg config.Storage, log *slog.Logger) (*sqlstore.Store, error) {
	return sqlstore.Open(ctx, Dialect{}, cfg.DSN,
		sqlstore.WithLogger(log),
		sqlstore.WithEcho(cfg.Echo),
	)
}
