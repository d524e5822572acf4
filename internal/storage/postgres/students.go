package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/studentfees/internal/models"
	"github.com/mmynk/studentfees/internal/storage"
)

const selectStudent = `
	SELECT s.id, s.name, s.email, s.course_id, COALESCE(c.name, ''), s.balance::text, s.created_at
	FROM students s
	LEFT JOIN courses c ON c.id = s.course_id
`

// CreateStudent inserts a new student and populates its ID.
func (s *PostgresStore) CreateStudent(ctx context.Context, student *models.Student) error {
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now()
	}

	err := s.q.QueryRow(ctx,
		`INSERT INTO students (name, email, course_id, balance, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		student.Name, student.Email, student.CourseID, student.Balance.String(), student.CreatedAt,
	).Scan(&student.ID)
	if err != nil {
		return wrapConstraint(err, "postgres: failed to insert student")
	}
	return nil
}

// GetStudent retrieves a student by ID.
func (s *PostgresStore) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	student, err := scanStudent(s.q.QueryRow(ctx, selectStudent+" WHERE s.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("student %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get student: %w", err)
	}
	return student, nil
}

// GetStudentForUpdate retrieves a student and locks its row for the rest of
// the transaction.
func (s *PostgresStore) GetStudentForUpdate(ctx context.Context, id int64) (*models.Student, error) {
	student, err := scanStudent(s.q.QueryRow(ctx, selectStudent+" WHERE s.id = $1 FOR UPDATE OF s", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("student %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to lock student: %w", err)
	}
	return student, nil
}

// GetStudentByEmail retrieves a student by email.
func (s *PostgresStore) GetStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	student, err := scanStudent(s.q.QueryRow(ctx, selectStudent+" WHERE s.email = $1", email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("student with email %s: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get student by email: %w", err)
	}
	return student, nil
}

// ListStudents returns all students ordered by ID.
func (s *PostgresStore) ListStudents(ctx context.Context) ([]*models.Student, error) {
	return s.queryStudents(ctx, selectStudent+" ORDER BY s.id")
}

// ListStudentsByCourse returns the students enrolled in a course.
func (s *PostgresStore) ListStudentsByCourse(ctx context.Context, courseID int64) ([]*models.Student, error) {
	return s.queryStudents(ctx, selectStudent+" WHERE s.course_id = $1 ORDER BY s.id", courseID)
}

// UpdateStudent overwrites a student's mutable fields.
func (s *PostgresStore) UpdateStudent(ctx context.Context, student *models.Student) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE students SET name = $1, email = $2, course_id = $3, balance = $4 WHERE id = $5`,
		student.Name, student.Email, student.CourseID, student.Balance.String(), student.ID,
	)
	if err != nil {
		return wrapConstraint(err, "postgres: failed to update student")
	}
	return expectRow(tag, "student", student.ID)
}

// DeleteStudent removes a student by ID. Missing students are ignored.
func (s *PostgresStore) DeleteStudent(ctx context.Context, id int64) error {
	if _, err := s.q.Exec(ctx, "DELETE FROM students WHERE id = $1", id); err != nil {
		return fmt.Errorf("postgres: failed to delete student: %w", err)
	}
	return nil
}

func (s *PostgresStore) queryStudents(ctx context.Context, query string, args ...any) ([]*models.Student, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list students: %w", err)
	}

	students, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Student, error) {
		return scanStudent(row)
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan students: %w", err)
	}
	return students, nil
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	student := &models.Student{}
	var balance string

	if err := row.Scan(&student.ID, &student.Name, &student.Email, &student.CourseID,
		&student.CourseName, &balance, &student.CreatedAt); err != nil {
		return nil, err
	}

	b, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q: %w", balance, err)
	}
	student.Balance = b

	return student, nil
}
