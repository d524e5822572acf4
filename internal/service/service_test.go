package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/studentfees/internal/storage/sqlite"
)

// newTestStore opens a SQLite store in a per-test temp directory.
func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })

	return store
}

// services bundles the three services over one store.
type services struct {
	store    *sqlite.SQLiteStore
	students *StudentService
	courses  *CourseService
	fees     *FeeService
}

func newTestServices(t *testing.T) *services {
	t.Helper()
	store := newTestStore(t)
	return &services{
		store:    store,
		students: NewStudentService(store),
		courses:  NewCourseService(store),
		fees:     NewFeeService(store, nil),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// requireDecimal compares decimals by value so "10000" equals "10000.00".
func requireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, got.Equal(dec(want)), "want %s, got %s %v", want, got, msgAndArgs)
}

func mustAddStudent(t *testing.T, svc *services, name, email string) int64 {
	t.Helper()
	id, err := svc.students.AddStudent(context.Background(), name, email)
	require.NoError(t, err)
	return id
}

func mustAddCourse(t *testing.T, svc *services, name string, months int, fee string) int64 {
	t.Helper()
	id, err := svc.courses.AddCourse(context.Background(), name, months, dec(fee))
	require.NoError(t, err)
	return id
}
