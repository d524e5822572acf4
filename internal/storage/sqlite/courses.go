package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/studentfees/internal/models"
	"github.com/mmynk/studentfees/internal/storage"
)

// CreateCourse inserts a new course and populates its ID.
func (s *SQLiteStore) CreateCourse(ctx context.Context, course *models.Course) error {
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO courses (name, duration_months, fee) VALUES (?, ?, ?)",
		course.Name, course.DurationMonths, course.Fee,
	)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read course id: %w", err)
	}
	course.ID = id
	course.StudentIDs = nil

	return nil
}

// GetCourse retrieves a course by ID along with its enrolled student IDs.
func (s *SQLiteStore) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	course := &models.Course{}
	err := s.q.QueryRowContext(ctx,
		"SELECT id, name, duration_months, fee FROM courses WHERE id = ?",
		id,
	).Scan(&course.ID, &course.Name, &course.DurationMonths, &course.Fee)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	enrolled, err := s.enrollments(ctx, "SELECT course_id, id FROM students WHERE course_id = ? ORDER BY id", id)
	if err != nil {
		return nil, err
	}
	course.StudentIDs = enrolled[id]

	return course, nil
}

// ListCourses returns all courses ordered by ID.
func (s *SQLiteStore) ListCourses(ctx context.Context) ([]*models.Course, error) {
	courses, err := s.queryCourses(ctx)
	if err != nil {
		return nil, err
	}

	// The course rows are closed by now; the store holds a single connection.
	enrolled, err := s.enrollments(ctx, "SELECT course_id, id FROM students WHERE course_id IS NOT NULL ORDER BY id")
	if err != nil {
		return nil, err
	}
	for _, course := range courses {
		course.StudentIDs = enrolled[course.ID]
	}

	return courses, nil
}

// UpdateCourse overwrites a course's name, duration and fee.
func (s *SQLiteStore) UpdateCourse(ctx context.Context, course *models.Course) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE courses SET name = ?, duration_months = ?, fee = ? WHERE id = ?",
		course.Name, course.DurationMonths, course.Fee, course.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return expectRow(res, "course", course.ID)
}

// DeleteCourse removes a course by ID. Missing courses are ignored.
func (s *SQLiteStore) DeleteCourse(ctx context.Context, id int64) error {
	if _, err := s.q.ExecContext(ctx, "DELETE FROM courses WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryCourses(ctx context.Context) ([]*models.Course, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT id, name, duration_months, fee FROM courses ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course := &models.Course{}
		if err := rows.Scan(&course.ID, &course.Name, &course.DurationMonths, &course.Fee); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate courses: %w", err)
	}

	return courses, nil
}

// enrollments groups student IDs by course ID.
func (s *SQLiteStore) enrollments(ctx context.Context, query string, args ...any) (map[int64][]int64, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollments: %w", err)
	}
	defer rows.Close()

	enrolled := make(map[int64][]int64)
	for rows.Next() {
		var courseID, studentID int64
		if err := rows.Scan(&courseID, &studentID); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrolled[courseID] = append(enrolled[courseID], studentID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate enrollments: %w", err)
	}

	return enrolled, nil
}
