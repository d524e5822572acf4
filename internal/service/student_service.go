package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/studentfees/internal/models"
	"github.com/mmynk/studentfees/internal/storage"
)

// StudentService manages student records and enrollment.
type StudentService struct {
	store storage.Store
}

// NewStudentService creates a new StudentService with the given storage backend.
func NewStudentService(store storage.Store) *StudentService {
	return &StudentService{store: store}
}

// AddStudent registers a student with a zero balance and no course.
func (s *StudentService) AddStudent(ctx context.Context, name, email string) (int64, error) {
	const op = "AddStudent"
	slog.Info("AddStudent request received", "name", name, "email", email)

	student := &models.Student{Name: name, Email: email}
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		taken, err := emailInUse(ctx, tx, email, 0)
		if err != nil {
			return err
		}
		if taken {
			return emailTaken(op, email)
		}
		return tx.CreateStudent(ctx, student)
	})
	if errors.Is(err, storage.ErrDuplicate) {
		err = emailTaken(op, email)
	}
	if err != nil {
		slog.Warn("AddStudent failed", "email", email, "error", err)
		return 0, err
	}

	slog.Info("Student added", "student_id", student.ID)
	return student.ID, nil
}

// EnrollStudent points a student at a course. An existing enrollment is replaced.
func (s *StudentService) EnrollStudent(ctx context.Context, studentID, courseID int64) error {
	const op = "EnrollStudent"
	slog.Info("EnrollStudent request received", "student_id", studentID, "course_id", courseID)

	var courseName string
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		student, err := getStudent(ctx, tx, op, studentID)
		if err != nil {
			return err
		}
		course, err := getCourse(ctx, tx, op, courseID)
		if err != nil {
			return err
		}

		if student.CourseID != nil && *student.CourseID != courseID {
			slog.Info("Replacing existing enrollment", "student_id", studentID, "previous_course_id", *student.CourseID)
		}
		student.CourseID = &course.ID
		courseName = course.Name
		return tx.UpdateStudent(ctx, student)
	})
	if err != nil {
		slog.Warn("EnrollStudent failed", "student_id", studentID, "course_id", courseID, "error", err)
		return err
	}

	slog.Info("Student enrolled", "student_id", studentID, "course", courseName)
	return nil
}

// UpdateStudent changes a student's name and email.
func (s *StudentService) UpdateStudent(ctx context.Context, studentID int64, name, email string) error {
	const op = "UpdateStudent"
	slog.Info("UpdateStudent request received", "student_id", studentID)

	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		student, err := getStudent(ctx, tx, op, studentID)
		if err != nil {
			return err
		}

		if student.Email != email {
			taken, err := emailInUse(ctx, tx, email, studentID)
			if err != nil {
				return err
			}
			if taken {
				return emailTaken(op, email)
			}
		}

		student.Name = name
		student.Email = email
		return tx.UpdateStudent(ctx, student)
	})
	if errors.Is(err, storage.ErrDuplicate) {
		err = emailTaken(op, email)
	}
	if err != nil {
		slog.Warn("UpdateStudent failed", "student_id", studentID, "error", err)
		return err
	}

	slog.Info("Student updated", "student_id", studentID)
	return nil
}

// DeleteStudent removes a student together with their payment ledger.
// Both deletes happen in one transaction.
func (s *StudentService) DeleteStudent(ctx context.Context, studentID int64) error {
	const op = "DeleteStudent"
	slog.Info("DeleteStudent request received", "student_id", studentID)

	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		if _, err := getStudent(ctx, tx, op, studentID); err != nil {
			return err
		}
		if err := tx.DeletePaymentsByStudent(ctx, studentID); err != nil {
			return err
		}
		return tx.DeleteStudent(ctx, studentID)
	})
	if err != nil {
		slog.Warn("DeleteStudent failed", "student_id", studentID, "error", err)
		return err
	}

	slog.Info("Student deleted", "student_id", studentID)
	return nil
}

// GetStudent retrieves a student by ID.
func (s *StudentService) GetStudent(ctx context.Context, studentID int64) (*models.Student, error) {
	return getStudent(ctx, s.store, "GetStudent", studentID)
}

// ListStudents returns every student.
func (s *StudentService) ListStudents(ctx context.Context) ([]*models.Student, error) {
	return s.store.ListStudents(ctx)
}

// ListStudentsByCourse returns the students enrolled in a course.
// An unknown course simply has no students.
func (s *StudentService) ListStudentsByCourse(ctx context.Context, courseID int64) ([]*models.Student, error) {
	return s.store.ListStudentsByCourse(ctx, courseID)
}

// emailInUse reports whether a student other than exceptID holds email.
func emailInUse(ctx context.Context, store storage.StudentStore, email string, exceptID int64) (bool, error) {
	existing, err := store.GetStudentByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ID != exceptID, nil
}

// getStudent loads a student, translating storage.ErrNotFound into a service error.
func getStudent(ctx context.Context, store storage.StudentStore, op string, id int64) (*models.Student, error) {
	student, err := store.GetStudent(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFound(op, "student", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return student, nil
}

// getCourse loads a course, translating storage.ErrNotFound into a service error.
func getCourse(ctx context.Context, store storage.CourseStore, op string, id int64) (*models.Course, error) {
	course, err := store.GetCourse(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFound(op, "course", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return course, nil
}
