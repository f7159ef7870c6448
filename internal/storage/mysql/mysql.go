// Package mysql provides the MySQL dialect for sqlstore.
package mysql

import (
	"context"
	"errors"
	"log/slog"

	mysqldrv "github.com/go-sql-driver/mysql"

	"github.com/aanand-mishra/student-management-api/internal/config"
	"github.com/aanand-mishra/student-management-api/internal/storage/sqlstore"
)

// erDupEntry is the server error number for a duplicate key.
const erDupEntry = 1062

// Dialect implements sqlstore.Dialect for github.com/go-sql-driver/mysql.
type Dialect struct{}

func (Dialect) DriverName() string { return "mysql" }

// Schema creates the students table. The email column uses a binary
// collation; MySQL's default collations compare case-insensitively.
func (Dialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS students (
			id     BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name   VARCHAR(100) NOT NULL,
			email  VARCHAR(320) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
			age    INT          NOT NULL,
			course VARCHAR(100) NOT NULL,
			UNIQUE KEY uq_students_email (email),
			KEY idx_students_name (name)
		) DEFAULT CHARSET = utf8mb4`,
	}
}

func (Dialect) Rebind(query string) string { return query }

// InsertReturnsID is false; MySQL has no INSERT ... RETURNING.
func (Dialect) InsertReturnsID() bool { return false }

func (Dialect) IsUniqueViolation(err error) bool {
	var myErr *mysqldrv.MySQLError
	return errors.As(err, &myErr) && myErr.Number == erDupEntry
}

// New connects to MySQL using cfg.DSN, e.g.
// "user:pass@tcp(127.0.0.1:3306)/student_management", and creates the
// students table if needed.
func New(ctx context.Context, cfg config.Storage, log *slog.Logger) (*sqlstore.Store, error) {
	return sqlstore.Open(ctx, Dialect{}, cfg.DSN,
		sqlstore.WithLogger(log),
		sqlstore.WithEcho(cfg.Echo),
	)
}
