package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

type sampleCourse struct {
	name   string
	months int
	fee    int64
}

type sampleStudent struct {
	name   string
	email  string
	course int // index into sampleCourses
}

var sampleCourses = []sampleCourse{
	{"Java Full Stack Development", 6, 45000},
	{"Python Data Science", 5, 40000},
	{"Web Development", 4, 35000},
}

var sampleStudents = []sampleStudent{
	{"Rahul Sharma", "rahul.sharma@email.com", 0},
	{"Priya Singh", "priya.singh@email.com", 1},
	{"Amit Kumar", "amit.kumar@email.com", 2},
}

// Seed loads the demo courses and students, each student enrolled in the
// matching course. It does nothing if any course or student already exists,
// so it is safe to call on every start.
func (a *App) Seed(ctx context.Context) error {
	courses, err := a.Courses.ListCourses(ctx)
	if err != nil {
		return err
	}
	students, err := a.Students.ListStudents(ctx)
	if err != nil {
		return err
	}
	if len(courses) > 0 || len(students) > 0 {
		slog.Debug("Sample data skipped, store not empty", "courses", len(courses), "students", len(students))
		return nil
	}

	courseIDs := make([]int64, len(sampleCourses))
	for i, c := range sampleCourses {
		id, err := a.Courses.AddCourse(ctx, c.name, c.months, decimal.NewFromInt(c.fee))
		if err != nil {
			return fmt.Errorf("course %q: %w", c.name, err)
		}
		courseIDs[i] = id
	}

	for _, s := range sampleStudents {
		id, err := a.Students.AddStudent(ctx, s.name, s.email)
		if err != nil {
			return fmt.Errorf("student %q: %w", s.name, err)
		}
		if err := a.Students.EnrollStudent(ctx, id, courseIDs[s.course]); err != nil {
			return fmt.Errorf("enroll %q: %w", s.name, err)
		}
	}

	slog.Info("Sample data initialized", "courses", len(sampleCourses), "students", len(sampleStudents))
	return nil
}
