package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/studentfees/internal/models"
	"github.com/mmynk/studentfees/internal/storage"
)

// CourseService manages the course catalog.
// Caller-supplied course fields are stored as given.
type CourseService struct {
	store storage.Store
}

// NewCourseService creates a new CourseService with the given storage backend.
func NewCourseService(store storage.Store) *CourseService {
	return &CourseService{store: store}
}

// AddCourse creates a course and returns its ID.
func (s *CourseService) AddCourse(ctx context.Context, name string, durationMonths int, fee decimal.Decimal) (int64, error) {
	slog.Info("AddCourse request received", "name", name, "duration_months", durationMonths, "fee", fee)

	course := &models.Course{Name: name, DurationMonths: durationMonths, Fee: fee}
	if err := s.store.CreateCourse(ctx, course); err != nil {
		slog.Error("AddCourse failed", "error", err)
		return 0, err
	}

	slog.Info("Course added", "course_id", course.ID)
	return course.ID, nil
}

// UpdateCourse overwrites a course's name, duration and fee.
func (s *CourseService) UpdateCourse(ctx context.Context, courseID int64, name string, durationMonths int, fee decimal.Decimal) error {
	const op = "UpdateCourse"
	slog.Info("UpdateCourse request received", "course_id", courseID)

	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		course, err := getCourse(ctx, tx, op, courseID)
		if err != nil {
			return err
		}
		course.Name = name
		course.DurationMonths = durationMonths
		course.Fee = fee
		return tx.UpdateCourse(ctx, course)
	})
	if err != nil {
		slog.Warn("UpdateCourse failed", "course_id", courseID, "error", err)
		return err
	}

	slog.Info("Course updated", "course_id", courseID)
	return nil
}

// DeleteCourse removes a course that has no enrolled students.
func (s *CourseService) DeleteCourse(ctx context.Context, courseID int64) error {
	const op = "DeleteCourse"
	slog.Info("DeleteCourse request received", "course_id", courseID)

	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		course, err := getCourse(ctx, tx, op, courseID)
		if err != nil {
			return err
		}
		if course.HasEnrollments() {
			return conflict(op, "cannot delete course %d with %d enrolled students", courseID, len(course.StudentIDs))
		}
		return tx.DeleteCourse(ctx, courseID)
	})
	if err != nil {
		slog.Warn("DeleteCourse failed", "course_id", courseID, "error", err)
		return err
	}

	slog.Info("Course deleted", "course_id", courseID)
	return nil
}

// GetCourse retrieves a course by ID.
func (s *CourseService) GetCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	return getCourse(ctx, s.store, "GetCourse", courseID)
}

// ListCourses returns every course.
func (s *CourseService) ListCourses(ctx context.Context) ([]*models.Course, error) {
	return s.store.ListCourses(ctx)
}
