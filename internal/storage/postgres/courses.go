package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/studentfees/internal/models"
	"github.com/mmynk/studentfees/internal/storage"
)

const selectCourse = `SELECT id, name, duration_months, fee::text FROM courses`

// CreateCourse inserts a new course and populates its ID.
func (s *PostgresStore) CreateCourse(ctx context.Context, course *models.Course) error {
	err := s.q.QueryRow(ctx,
		"INSERT INTO courses (name, duration_months, fee) VALUES ($1, $2, $3) RETURNING id",
		course.Name, course.DurationMonths, course.Fee.String(),
	).Scan(&course.ID)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert course: %w", err)
	}
	course.StudentIDs = nil
	return nil
}

// GetCourse retrieves a course by ID along with its enrolled student IDs.
func (s *PostgresStore) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	course, err := scanCourse(s.q.QueryRow(ctx, selectCourse+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("course %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get course: %w", err)
	}

	rows, err := s.q.Query(ctx, "SELECT id FROM students WHERE course_id = $1 ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get enrollments: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan enrollments: %w", err)
	}
	if len(ids) > 0 {
		course.StudentIDs = ids
	}

	return course, nil
}

// ListCourses returns all courses ordered by ID.
func (s *PostgresStore) ListCourses(ctx context.Context) ([]*models.Course, error) {
	rows, err := s.q.Query(ctx, selectCourse+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list courses: %w", err)
	}
	courses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Course, error) {
		return scanCourse(row)
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan courses: %w", err)
	}

	type enrollment struct {
		CourseID  int64
		StudentID int64
	}
	rows, err = s.q.Query(ctx, "SELECT course_id, id FROM students WHERE course_id IS NOT NULL ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get enrollments: %w", err)
	}
	enrollments, err := pgx.CollectRows(rows, pgx.RowToStructByPos[enrollment])
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan enrollments: %w", err)
	}

	byCourse := make(map[int64][]int64)
	for _, e := range enrollments {
		byCourse[e.CourseID] = append(byCourse[e.CourseID], e.StudentID)
	}
	for _, course := range courses {
		course.StudentIDs = byCourse[course.ID]
	}

	return courses, nil
}

// UpdateCourse overwrites a course's name, duration and fee.
func (s *PostgresStore) UpdateCourse(ctx context.Context, course *models.Course) error {
	tag, err := s.q.Exec(ctx,
		"UPDATE courses SET name = $1, duration_months = $2, fee = $3 WHERE id = $4",
		course.Name, course.DurationMonths, course.Fee.String(), course.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to update course: %w", err)
	}
	return expectRow(tag, "course", course.ID)
}

// DeleteCourse removes a course by ID. Missing courses are ignored.
func (s *PostgresStore) DeleteCourse(ctx context.Context, id int64) error {
	if _, err := s.q.Exec(ctx, "DELETE FROM courses WHERE id = $1", id); err != nil {
		return fmt.Errorf("postgres: failed to delete course: %w", err)
	}
	return nil
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	course := &models.Course{}
	var fee string

	if err := row.Scan(&course.ID, &course.Name, &course.DurationMonths, &fee); err != nil {
		return nil, err
	}

	f, err := decimal.NewFromString(fee)
	if err != nil {
		return nil, fmt.Errorf("invalid fee %q: %w", fee, err)
	}
	course.Fee = f

	return course, nil
}
