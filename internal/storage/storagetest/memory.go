// Package storagetest provides a conformance suite for storage.Storage
// implementations and an in-memory implementation for handler tests.
package storagetest

import (
	"context"
	"sort"
	"sync"

	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/types"
)

// Memory is a map-backed storage.Storage. It honours the same contract as
// the SQL store, including the email uniqueness rule.
type Memory struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]types.Student

	// Err, when set, is returned by every call. Used to exercise 500 paths.
	Err error
}

var _ storage.Storage = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{nextID: 1, rows: make(map[int64]types.Student)}
}

func (m *Memory) CreateStudent(_ context.Context, in types.StudentInput) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return types.Student{}, m.Err
	}
	if m.emailOwner(in.Email) != 0 {
		return types.Student{}, storage.ErrEmailTaken
	}

	st := types.Student{ID: m.nextID, StudentInput: in}
	m.rows[st.ID] = st
	m.nextID++
	return st, nil
}

func (m *Memory) ListStudents(_ context.Context, skip, limit int) ([]types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	all := make([]types.Student, 0, len(m.rows))
	for _, st := range m.rows {
		all = append(all, st)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	page := make([]types.Student, 0)
	if skip < 0 {
		skip = 0
	}
	for i := skip; i < len(all) && len(page) < limit; i++ {
		page = append(page, all[i])
	}
	return page, nil
}

func (m *Memory) GetStudentByID(_ context.Context, id int64) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return types.Student{}, m.Err
	}
	st, ok := m.rows[id]
	if !ok {
		return types.Student{}, storage.ErrNotFound
	}
	return st, nil
}

func (m *Memory) UpdateStudentByID(_ context.Context, id int64, in types.StudentInput) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return types.Student{}, m.Err
	}
	if _, ok := m.rows[id]; !ok {
		return types.Student{}, storage.ErrNotFound
	}
	if owner := m.emailOwner(in.Email); owner != 0 && owner != id {
		return types.Student{}, storage.ErrEmailTaken
	}

	st := types.Student{ID: id, StudentInput: in}
	m.rows[id] = st
	return st, nil
}

func (m *Memory) DeleteStudentByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *Memory) Ping(context.Context) error { return m.Err }

func (m *Memory) Close() error { return nil }

// Len reports how many students are stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *Memory) emailOwner(email string) int64 {
	for id, st := range m.rows {
		if st.Email == email {
			return id
		}
	}
	return 0
}
