// Package sqlstore implements storage.Storage on top of database/sql.
//
// The SQL is written once, with ? placeholders, against a single students
// table. Everything that differs between database engines (driver name,
// DDL, placeholder style, how the new id comes back, what a unique
// violation looks like) sits behind the Dialect interface, implemented by
// the sqlite, postgres and mysql packages.
//
// Every mutating call runs inside its own transaction, begun on entry and
// always rolled back or committed before the method returns. Reads go
// straight to the pool, which scopes a connection to the statement.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/types"
)

// Dialect captures the engine-specific parts of the store.
type Dialect interface {
	// DriverName is the name the driver registered with database/sql.
	DriverName() string

	// Schema returns idempotent DDL statements that create the students
	// table and its indexes. They run in order on every Open.
	Schema() []string

	// Rebind rewrites ? placeholders into the engine's native style.
	Rebind(query string) string

	// InsertReturnsID reports whether INSERT ... RETURNING id is supported.
	// When false, the store falls back to sql.Result.LastInsertId.
	InsertReturnsID() bool

	// IsUniqueViolation reports whether err is a unique-constraint failure.
	IsUniqueViolation(err error) bool
}

// querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the database/sql implementation of storage.Storage.
// A single *sql.DB is a connection pool and is safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect Dialect
	log     *slog.Logger
	echo    bool
}

var _ storage.Storage = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for SQL echo. Defaults to a discarding
// logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithEcho logs every statement and its arguments at debug level.
func WithEcho(echo bool) Option {
	return func(s *Store) { s.echo = echo }
}

// Open opens the database at dsn with the dialect's driver and creates the
// schema if it does not already exist.
func Open(ctx context.Context, d Dialect, dsn string, opts ...Option) (*Store, error) {
	// sql.Open only validates its arguments; the first real connection is
	// made by the schema statements below.
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore.Open: open %s: %w", d.DriverName(), err)
	}

	s, err := New(ctx, db, d, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened *sql.DB and creates the schema.
func New(ctx context.Context, db *sql.DB, d Dialect, opts ...Option) (*Store, error) {
	s := &Store{
		db:      db,
		dialect: d,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, stmt := range d.Schema() {
		if _, err := s.exec(ctx, db, stmt); err != nil {
			return nil, fmt.Errorf("sqlstore.New: create schema: %w", err)
		}
	}

	return s, nil
}

const selectStudent = "SELECT id, name, email, age, course FROM students"

// CreateStudent checks the email is free and inserts the row in the same
// transaction. The UNIQUE constraint on email still rejects a concurrent
// insert that slips between the check and the write.
func (s *Store) CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error) {
	var id int64

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var existing int64
		err := s.queryRow(ctx, tx,
			"SELECT id FROM students WHERE email = ? LIMIT 1", in.Email,
		).Scan(&existing)
		switch {
		case err == nil:
			return storage.ErrEmailTaken
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check email: %w", err)
		}

		id, err = s.insert(ctx, tx, in)
		return err
	})
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}

	return types.Student{ID: id, StudentInput: in}, nil
}

func (s *Store) insert(ctx context.Context, tx *sql.Tx, in types.StudentInput) (int64, error) {
	const query = "INSERT INTO students (name, email, age, course) VALUES (?, ?, ?, ?)"
	args := []any{in.Name, in.Email, in.Age, in.Course}

	var id int64
	if s.dialect.InsertReturnsID() {
		err := s.queryRow(ctx, tx, query+" RETURNING id", args...).Scan(&id)
		if err != nil {
			return 0, s.classify("insert", err)
		}
		return id, nil
	}

	res, err := s.exec(ctx, tx, query, args...)
	if err != nil {
		return 0, s.classify("insert", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ListStudents returns one page of students in primary-key order.
func (s *Store) ListStudents(ctx context.Context, skip, limit int) ([]types.Student, error) {
	students := make([]types.Student, 0)
	if limit <= 0 {
		return students, nil
	}
	if skip < 0 {
		skip = 0
	}

	rows, err := s.query(ctx, s.db, selectStudent+" ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, fmt.Errorf("ListStudents: query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("ListStudents: scan row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListStudents: rows iteration: %w", err)
	}

	return students, nil
}

// GetStudentByID fetches exactly one student by primary key.
func (s *Store) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	student, err := s.getByID(ctx, s.db, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}
	return student, nil
}

func (s *Store) getByID(ctx context.Context, q querier, id int64) (types.Student, error) {
	student, err := scanStudent(s.queryRow(ctx, q, selectStudent+" WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("scan: %w", err)
	}
	return student, nil
}

// UpdateStudentByID overwrites all four business fields and re-reads the
// row inside the same transaction, so the caller gets exactly what is
// stored. A missing id shows up as ErrNotFound on the re-read.
//
// The email is not re-checked against other rows here; the UNIQUE
// constraint is the enforcement point.
func (s *Store) UpdateStudentByID(ctx context.Context, id int64, in types.StudentInput) (types.Student, error) {
	var updated types.Student

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := s.exec(ctx, tx,
			"UPDATE students SET name = ?, email = ?, age = ?, course = ? WHERE id = ?",
			in.Name, in.Email, in.Age, in.Course, id,
		)
		if err != nil {
			return s.classify("update", err)
		}

		updated, err = s.getByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}

	return updated, nil
}

// DeleteStudentByID removes a student row by primary key.
func (s *Store) DeleteStudentByID(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := s.exec(ctx, tx, "DELETE FROM students WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("exec: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: %w", err)
	}
	return nil
}

// Ping verifies a connection to the database can be established.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool. In-flight queries finish first.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction. The transaction is committed if fn
// returns nil and rolled back on every other path, including a panic.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// Rollback after a successful Commit returns sql.ErrTxDone and is ignored.
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return s.classify("commit", err)
	}
	return nil
}

// classify maps a unique violation to storage.ErrEmailTaken, the only
// UNIQUE column besides the primary key, and wraps everything else.
func (s *Store) classify(op string, err error) error {
	if s.dialect.IsUniqueViolation(err) {
		return storage.ErrEmailTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (types.Student, error) {
	var st types.Student
	err := row.Scan(&st.ID, &st.Name, &st.Email, &st.Age, &st.Course)
	return st, err
}

func (s *Store) exec(ctx context.Context, q querier, query string, args ...any) (sql.Result, error) {
	query = s.dialect.Rebind(query)
	s.trace(ctx, query, args)
	return q.ExecContext(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, q querier, query string, args ...any) (*sql.Rows, error) {
	query = s.dialect.Rebind(query)
	s.trace(ctx, query, args)
	return q.QueryContext(ctx, query, args...)
}

func (s *Store) queryRow(ctx context.Context, q querier, query string, args ...any) *sql.Row {
	query = s.dialect.Rebind(query)
	s.trace(ctx, query, args)
	return q.QueryRowContext(ctx, query, args...)
}

func (s *Store) trace(ctx context.Context, query string, args []any) {
	if !s.echo {
		return
	}
	s.log.DebugContext(ctx, "sql",
		slog.String("dialect", s.dialect.DriverName()),
		slog.String("query", query),
		slog.Any("args", args),
	)
}
