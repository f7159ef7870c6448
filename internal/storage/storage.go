// Package storage defines the Storage interface, the contract any database
// backend must satisfy to work with this application.
//
// Handlers depend only on this interface. Switching databases means picking
// another dialect in main.go; handler tests pass an in-memory fake.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/student-management-api/internal/types"
)

// Sentinel errors returned by every Storage implementation. Callers
// classify failures with errors.Is; anything else is an unexpected
// database failure.
var (
	ErrNotFound   = errors.New("student not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Storage is the database contract.
type Storage interface {
	// CreateStudent inserts a new student record and returns it with the
	// newly assigned ID. Returns ErrEmailTaken when the email is in use.
	CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error)

	// ListStudents returns at most limit students in primary-key order,
	// skipping the first skip rows. Returns an empty slice (not nil) when
	// the page is empty.
	ListStudents(ctx context.Context, skip, limit int) ([]types.Student, error)

	// GetStudentByID fetches a single student by primary key.
	// Returns ErrNotFound if no row matches.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// UpdateStudentByID overwrites all business fields of an existing
	// student and returns the stored record. Returns ErrNotFound if no row
	// matches, ErrEmailTaken if the table's unique constraint rejects the
	// new email.
	UpdateStudentByID(ctx context.Context, id int64, in types.StudentInput) (types.Student, error)

	// DeleteStudentByID removes a student permanently.
	// Returns ErrNotFound if no row matches.
	DeleteStudentByID(ctx context.Context, id int64) error

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close() error
}
