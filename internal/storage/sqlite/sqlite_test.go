package sqlite

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aanand-mishra/student-management-api/internal/config"
	"github.com/aanand-mishra/student-management-api/internal/logger"
	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/storage/storagetest"
)

// testDSN serialises writers and waits on locks instead of failing fast,
// the same settings as config/local.yaml.
func testDSN(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "students.db") + "?_busy_timeout=5000&_txlock=immediate"
}

func newStore(t *testing.T) storage.Storage {
	t.Helper()

	s, err := New(context.Background(), config.Storage{Driver: config.DriverSQLite, DSN: testDSN(t)}, logger.Discard())
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorageContract(t *testing.T) {
	storagetest.Run(t, newStore)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	cfg := config.Storage{Driver: config.DriverSQLite, DSN: testDSN(t)}

	s, err := New(ctx, cfg, logger.Discard())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	created, err := s.CreateStudent(ctx, storagetest.Input(1))
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	s.Close()

	// The schema statements are idempotent, so a second open must succeed
	// and see the same row.
	s, err = New(ctx, cfg, logger.Discard())
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s.Close()

	got, err := s.GetStudentByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetStudentByID: %v", err)
	}
	if got != created {
		t.Fatalf("got %+v, want %+v", got, created)
	}
}

func TestConcurrentCreatesWithSameEmail(t *testing.T) {
	s := newStore(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		taken     int
		other     []error
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			in := storagetest.Input(i)
			in.Email = "same@example.com"
			_, err := s.CreateStudent(context.Background(), in)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, storage.ErrEmailTaken):
				taken++
			default:
				other = append(other, err)
			}
		}(i)
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if succeeded != 1 || taken != workers-1 {
		t.Fatalf("succeeded=%d taken=%d, want 1 and %d", succeeded, taken, workers-1)
	}
}

func TestEchoLogsStatements(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := New(context.Background(), config.Storage{DSN: testDSN(t), Echo: true}, log)
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	defer s.Close()

	if _, err := s.GetStudentByID(context.Background(), 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	out := buf.String()
	if !strings.Contains(out, "CREATE TABLE IF NOT EXISTS students") {
		t.Errorf("schema statement not echoed:\n%s", out)
	}
	if !strings.Contains(out, "WHERE id = ?") {
		t.Errorf("select statement not echoed:\n%s", out)
	}
}

func TestIsUniqueViolationIgnoresOtherErrors(t *testing.T) {
	d := Dialect{}

	if d.IsUniqueViolation(nil) {
		t.Error("nil reported as unique violation")
	}
	if d.IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error reported as unique violation")
	}
}
