// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/studentfees/internal/models"
)

var (
	// ErrNotFound is returned by Get and Update methods when no record has the given ID.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// StudentStore is the gateway for student records.
type StudentStore interface {
	// CreateStudent persists a new student and populates student.ID.
	CreateStudent(ctx context.Context, student *models.Student) error

	// GetStudent retrieves a student by ID, with CourseName joined.
	// Returns ErrNotFound if the student does not exist.
	GetStudent(ctx context.Context, id int64) (*models.Student, error)

	// GetStudentForUpdate is GetStudent plus a write lock on the student row
	// held until the surrounding transaction ends. Ledger writes read the
	// balance through it so concurrent payments for one student serialize.
	GetStudentForUpdate(ctx context.Context, id int64) (*models.Student, error)

	// GetStudentByEmail retrieves a student by email.
	// Returns ErrNotFound if no student has that email.
	GetStudentByEmail(ctx context.Context, email string) (*models.Student, error)

	// ListStudents returns every student ordered by ID.
	ListStudents(ctx context.Context) ([]*models.Student, error)

	// ListStudentsByCourse returns the students enrolled in a course.
	ListStudentsByCourse(ctx context.Context, courseID int64) ([]*models.Student, error)

	// UpdateStudent overwrites name, email, course and balance.
	// Returns ErrNotFound if the student does not exist.
	UpdateStudent(ctx context.Context, student *models.Student) error

	// DeleteStudent removes a student. Deleting a missing student is a no-op.
	DeleteStudent(ctx context.Context, id int64) error
}

// CourseStore is the gateway for course records.
type CourseStore interface {
	// CreateCourse persists a new course and populates course.ID.
	CreateCourse(ctx context.Context, course *models.Course) error

	// GetCourse retrieves a course by ID with StudentIDs populated.
	// Returns ErrNotFound if the course does not exist.
	GetCourse(ctx context.Context, id int64) (*models.Course, error)

	// ListCourses returns every course ordered by ID with StudentIDs populated.
	ListCourses(ctx context.Context) ([]*models.Course, error)

	// UpdateCourse overwrites name, duration and fee.
	// Returns ErrNotFound if the course does not exist.
	UpdateCourse(ctx context.Context, course *models.Course) error

	// DeleteCourse removes a course. Deleting a missing course is a no-op.
	DeleteCourse(ctx context.Context, id int64) error
}

// PaymentStore is the gateway for the append-only payment ledger.
type PaymentStore interface {
	// CreatePayment appends a ledger entry and populates ID, Reference and,
	// if zero, CreatedAt.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// GetPayment retrieves a ledger entry by ID.
	// Returns ErrNotFound if the entry does not exist.
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)

	// ListPayments returns every ledger entry ordered by ID.
	ListPayments(ctx context.Context) ([]*models.Payment, error)

	// ListPaymentsByStudent returns a student's entries, most recent first.
	ListPaymentsByStudent(ctx context.Context, studentID int64) ([]*models.Payment, error)

	// SumPayments totals a student's entries of one kind. Zero when there are none.
	SumPayments(ctx context.Context, studentID int64, kind models.PaymentKind) (decimal.Decimal, error)

	// DeletePaymentsByStudent removes a student's whole ledger.
	// Only used when the student itself is deleted.
	DeletePaymentsByStudent(ctx context.Context, studentID int64) error
}

// Store defines the full persistence contract.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	StudentStore
	CourseStore
	PaymentStore

	// WithTx runs fn against a Store bound to a single transaction.
	// The transaction commits if fn returns nil and rolls back otherwise.
	// Calling WithTx on a transaction-bound Store reuses the open transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// Ping checks that the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
