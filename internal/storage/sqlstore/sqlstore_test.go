package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aanand-mishra/student-management-api/internal/storage/sqlite"
	"github.com/aanand-mishra/student-management-api/internal/storage/sqlstore"
	"github.com/aanand-mishra/student-management-api/internal/storage/storagetest"
)

type unknownDriver struct{ sqlite.Dialect }

func (unknownDriver) DriverName() string { return "no-such-driver" }

type brokenSchema struct{ sqlite.Dialect }

func (brokenSchema) Schema() []string { return []string{"CREATE TABLE ("} }

func dsn(t *testing.T) string {
	return filepath.Join(t.TempDir(), "students.db")
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := sqlstore.Open(context.Background(), unknownDriver{}, dsn(t)); err == nil {
		t.Fatal("expected an error for an unregistered driver")
	}
}

func TestOpenBrokenSchema(t *testing.T) {
	if _, err := sqlstore.Open(context.Background(), brokenSchema{}, dsn(t)); err == nil {
		t.Fatal("expected an error for invalid DDL")
	}
}

func TestListStudentsClampsNegativeSkip(t *testing.T) {
	ctx := context.Background()

	s, err := sqlstore.Open(ctx, sqlite.Dialect{}, dsn(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	for i := 0; i < 3; i++ {
		if _, err := s.CreateStudent(ctx, storagetest.Input(i)); err != nil {
			t.Fatalf("CreateStudent: %v", err)
		}
	}

	got, err := s.ListStudents(ctx, -5, 2)
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	if len(got) != 2 || got[0].Email != storagetest.Input(0).Email {
		t.Fatalf("ListStudents(-5, 2) = %+v", got)
	}
}

func TestCancelledContext(t *testing.T) {
	s, err := sqlstore.Open(context.Background(), sqlite.Dialect{}, dsn(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.CreateStudent(ctx, storagetest.Input(1)); err == nil {
		t.Fatal("expected an error with a cancelled context")
	}
	if n, err := s.ListStudents(context.Background(), 0, 10); err != nil || len(n) != 0 {
		t.Fatalf("cancelled create left rows behind: %v, %v", n, err)
	}
}
