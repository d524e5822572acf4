package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/studentfees/internal/models"
	"github.com/mmynk/studentfees/internal/storage"
)

const selectStudent = `
	SELECT s.id, s.name, s.email, s.course_id, COALESCE(c.name, ''), s.balance, s.created_at
	FROM students s
	LEFT JOIN courses c ON c.id = s.course_id
`

// CreateStudent inserts a new student and populates its ID.
func (s *SQLiteStore) CreateStudent(ctx context.Context, student *models.Student) error {
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now()
	}

	res, err := s.q.ExecContext(ctx,
		`INSERT INTO students (name, email, course_id, balance, created_at) VALUES (?, ?, ?, ?, ?)`,
		student.Name, student.Email, nullableID(student.CourseID), student.Balance, toUnix(student.CreatedAt),
	)
	if err != nil {
		return wrapConstraint(err, "failed to insert student")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read student id: %w", err)
	}
	student.ID = id

	return nil
}

// GetStudent retrieves a student by ID.
func (s *SQLiteStore) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	student, err := scanStudent(s.q.QueryRowContext(ctx, selectStudent+" WHERE s.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

// GetStudentForUpdate is GetStudent. The store runs on a single connection,
// so an open transaction already excludes every other writer.
func (s *SQLiteStore) GetStudentForUpdate(ctx context.Context, id int64) (*models.Student, error) {
	return s.GetStudent(ctx, id)
}

// GetStudentByEmail retrieves a student by their email address.
func (s *SQLiteStore) GetStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	student, err := scanStudent(s.q.QueryRowContext(ctx, selectStudent+" WHERE s.email = ?", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student with email %s: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student by email: %w", err)
	}
	return student, nil
}

// ListStudents returns all students ordered by ID.
func (s *SQLiteStore) ListStudents(ctx context.Context) ([]*models.Student, error) {
	return s.queryStudents(ctx, selectStudent+" ORDER BY s.id")
}

// ListStudentsByCourse returns the students enrolled in a course.
func (s *SQLiteStore) ListStudentsByCourse(ctx context.Context, courseID int64) ([]*models.Student, error) {
	return s.queryStudents(ctx, selectStudent+" WHERE s.course_id = ? ORDER BY s.id", courseID)
}

// UpdateStudent overwrites a student's mutable fields.
func (s *SQLiteStore) UpdateStudent(ctx context.Context, student *models.Student) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE students SET name = ?, email = ?, course_id = ?, balance = ? WHERE id = ?`,
		student.Name, student.Email, nullableID(student.CourseID), student.Balance, student.ID,
	)
	if err != nil {
		return wrapConstraint(err, "failed to update student")
	}
	return expectRow(res, "student", student.ID)
}

// DeleteStudent removes a student by ID. Missing students are ignored.
func (s *SQLiteStore) DeleteStudent(ctx context.Context, id int64) error {
	if _, err := s.q.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryStudents(ctx context.Context, query string, args ...any) ([]*models.Student, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate students: %w", err)
	}

	return students, nil
}

func scanStudent(row rowScanner) (*models.Student, error) {
	student := &models.Student{}
	var courseID sql.NullInt64
	var createdAt int64

	if err := row.Scan(&student.ID, &student.Name, &student.Email, &courseID,
		&student.CourseName, &student.Balance, &createdAt); err != nil {
		return nil, err
	}

	if courseID.Valid {
		id := courseID.Int64
		student.CourseID = &id
	}
	student.CreatedAt = fromUnix(createdAt)

	return student, nil
}

// nullableID maps an optional foreign key to a driver value.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// expectRow turns a zero-row UPDATE into storage.ErrNotFound.
func expectRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, storage.ErrNotFound)
	}
	return nil
}
