package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"

	mysqldrv "github.com/go-sql-driver/mysql"

	"github.com/aanand-mishra/student-management-api/internal/config"
	"github.com/aanand-mishra/student-management-api/internal/logger"
	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/storage/storagetest"
)

func TestRebindLeavesQuestionMarks(t *testing.T) {
	const q = "SELECT id FROM students WHERE id = ? LIMIT 1"
	if got := (Dialect{}).Rebind(q); got != q {
		t.Fatalf("Rebind changed the query: %q", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	d := Dialect{}

	dup := &mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry 'a@x.com' for key 'uq_students_email'"}
	if !d.IsUniqueViolation(fmt.Errorf("insert: %w", dup)) {
		t.Error("wrapped 1062 not recognised")
	}
	if d.IsUniqueViolation(&mysqldrv.MySQLError{Number: 1048}) {
		t.Error("column-cannot-be-null reported as unique violation")
	}
	if d.IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error reported as unique violation")
	}
}

// TestStorageContract runs against a real server when TEST_MYSQL_DSN is
// set, e.g. root:secret@tcp(127.0.0.1:3306)/students_test.
func TestStorageContract(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}

	storagetest.Run(t, func(t *testing.T) storage.Storage {
		ctx := context.Background()

		s, err := New(ctx, config.Storage{Driver: config.DriverMySQL, DSN: dsn}, logger.Discard())
		if err != nil {
			t.Fatalf("mysql.New: %v", err)
		}
		t.Cleanup(func() { s.Close() })

		db, err := sql.Open("mysql", dsn)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer db.Close()
		if _, err := db.ExecContext(ctx, "TRUNCATE TABLE students"); err != nil {
			t.Fatalf("truncate: %v", err)
		}

		return s
	})
}
