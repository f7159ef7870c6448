package storagetest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/types"
)

// Factory returns an empty store. It is called once per subtest; the
// factory is responsible for cleanup (t.Cleanup).
type Factory func(t *testing.T) storage.Storage

// Input returns a valid StudentInput whose email is unique per n.
func Input(n int) types.StudentInput {
	return types.StudentInput{
		Name:   fmt.Sprintf("Student %d", n),
		Email:  fmt.Sprintf("student%d@example.com", n),
		Age:    20 + n%50,
		Course: "CS",
	}
}

// Run exercises the storage.Storage contract against stores built by
// newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAssignsFreshIDs", func(t *testing.T) { testCreateAssignsFreshIDs(t, newStore(t)) })
	t.Run("CreateDuplicateEmail", func(t *testing.T) { testCreateDuplicateEmail(t, newStore(t)) })
	t.Run("EmailIsCaseSensitive", func(t *testing.T) { testEmailIsCaseSensitive(t, newStore(t)) })
	t.Run("ListPages", func(t *testing.T) { testListPages(t, newStore(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, newStore(t)) })
	t.Run("UpdateEmailCollision", func(t *testing.T) { testUpdateEmailCollision(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
}

func mustCreate(t *testing.T, s storage.Storage, in types.StudentInput) types.Student {
	t.Helper()

	st, err := s.CreateStudent(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateStudent(%+v): %v", in, err)
	}
	return st
}

func count(t *testing.T, s storage.Storage) int {
	t.Helper()

	all, err := s.ListStudents(context.Background(), 0, 1<<20)
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	return len(all)
}

func testCreateAssignsFreshIDs(t *testing.T, s storage.Storage) {
	seen := make(map[int64]bool)

	for i := 0; i < 5; i++ {
		in := Input(i)
		st := mustCreate(t, s, in)

		if st.ID <= 0 {
			t.Fatalf("student %d: id %d is not positive", i, st.ID)
		}
		if seen[st.ID] {
			t.Fatalf("student %d: id %d reused", i, st.ID)
		}
		seen[st.ID] = true

		if st.StudentInput != in {
			t.Fatalf("student %d: fields = %+v, want %+v", i, st.StudentInput, in)
		}

		got, err := s.GetStudentByID(context.Background(), st.ID)
		if err != nil {
			t.Fatalf("GetStudentByID(%d): %v", st.ID, err)
		}
		if got != st {
			t.Fatalf("GetStudentByID(%d) = %+v, want %+v", st.ID, got, st)
		}
	}
}

func testCreateDuplicateEmail(t *testing.T, s storage.Storage) {
	first := Input(1)
	mustCreate(t, s, first)

	dup := Input(2)
	dup.Email = first.Email

	_, err := s.CreateStudent(context.Background(), dup)
	if !errors.Is(err, storage.ErrEmailTaken) {
		t.Fatalf("duplicate create: err = %v, want ErrEmailTaken", err)
	}
	if n := count(t, s); n != 1 {
		t.Fatalf("store holds %d students after rejected create, want 1", n)
	}
}

func testEmailIsCaseSensitive(t *testing.T, s storage.Storage) {
	lower := Input(1)
	lower.Email = "ada@x.com"
	mustCreate(t, s, lower)

	upper := Input(2)
	upper.Email = "Ada@x.com"
	mustCreate(t, s, upper)
}

func testListPages(t *testing.T, s storage.Storage) {
	const n = 7
	var created []types.Student
	for i := 0; i < n; i++ {
		created = append(created, mustCreate(t, s, Input(i)))
	}

	ctx := context.Background()

	all, err := s.ListStudents(ctx, 0, n)
	if err != nil {
		t.Fatalf("ListStudents(0, %d): %v", n, err)
	}
	if len(all) != n {
		t.Fatalf("ListStudents(0, %d) returned %d students", n, len(all))
	}
	for i := range all {
		if all[i] != created[i] {
			t.Fatalf("position %d = %+v, want %+v", i, all[i], created[i])
		}
	}

	page, err := s.ListStudents(ctx, 2, 3)
	if err != nil {
		t.Fatalf("ListStudents(2, 3): %v", err)
	}
	if len(page) != 3 || page[0] != created[2] || page[2] != created[4] {
		t.Fatalf("ListStudents(2, 3) = %+v", page)
	}

	empty, err := s.ListStudents(ctx, n, 100)
	if err != nil {
		t.Fatalf("ListStudents(%d, 100): %v", n, err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("ListStudents(%d, 100) = %#v, want empty non-nil slice", n, empty)
	}

	none, err := s.ListStudents(ctx, 0, 0)
	if err != nil {
		t.Fatalf("ListStudents(0, 0): %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("ListStudents(0, 0) returned %d students", len(none))
	}
}

func testGetMissing(t *testing.T, s storage.Storage) {
	_, err := s.GetStudentByID(context.Background(), 424242)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func testUpdate(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	st := mustCreate(t, s, Input(1))

	in := st.StudentInput
	in.Course = "Math"

	updated, err := s.UpdateStudentByID(ctx, st.ID, in)
	if err != nil {
		t.Fatalf("UpdateStudentByID: %v", err)
	}
	if updated.ID != st.ID || updated.Course != "Math" {
		t.Fatalf("updated = %+v", updated)
	}

	got, err := s.GetStudentByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetStudentByID: %v", err)
	}
	if got != updated {
		t.Fatalf("get after update = %+v, want %+v", got, updated)
	}

	// Re-saving a student with its own email is not a collision.
	if _, err := s.UpdateStudentByID(ctx, st.ID, in); err != nil {
		t.Fatalf("idempotent update: %v", err)
	}
}

func testUpdateMissing(t *testing.T, s storage.Storage) {
	_, err := s.UpdateStudentByID(context.Background(), 424242, Input(1))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if n := count(t, s); n != 0 {
		t.Fatalf("update of a missing id created %d rows", n)
	}
}

func testUpdateEmailCollision(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	a := mustCreate(t, s, Input(1))
	b := mustCreate(t, s, Input(2))

	in := b.StudentInput
	in.Email = a.Email

	_, err := s.UpdateStudentByID(ctx, b.ID, in)
	if !errors.Is(err, storage.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}

	got, err := s.GetStudentByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetStudentByID: %v", err)
	}
	if got != b {
		t.Fatalf("rejected update changed the row: %+v, want %+v", got, b)
	}
}

func testDelete(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	a := mustCreate(t, s, Input(1))
	b := mustCreate(t, s, Input(2))

	if err := s.DeleteStudentByID(ctx, a.ID); err != nil {
		t.Fatalf("DeleteStudentByID: %v", err)
	}
	if _, err := s.GetStudentByID(ctx, a.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get after delete: err = %v, want ErrNotFound", err)
	}

	if err := s.DeleteStudentByID(ctx, a.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete: err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetStudentByID(ctx, b.ID); err != nil {
		t.Fatalf("unrelated student gone after delete of missing id: %v", err)
	}
	if n := count(t, s); n != 1 {
		t.Fatalf("store holds %d students, want 1", n)
	}
}
