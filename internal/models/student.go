package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Student represents a registered student.
type Student struct {
	// ID is assigned by the store on creation and never changes.
	ID int64

	// Name is the student's display name.
	Name string

	// Email is unique across all students.
	Email string

	// CourseID references the enrolled course, or nil when not enrolled.
	// Re-enrolling overwrites it; past enrollments are not kept.
	CourseID *int64

	// CourseName is joined from the courses table on read. It is ignored on write.
	CourseName string

	// Balance is the running fee balance. Payments decrease it and refunds
	// increase it, so a student who has paid 10000 has a balance of -10000.
	Balance decimal.Decimal

	// CreatedAt is when the student was registered.
	CreatedAt time.Time
}

// Enrolled reports whether the student references a course.
func (s *Student) Enrolled() bool {
	return s.CourseID != nil
}

// String renders the student the way the shell lists them.
func (s *Student) String() string {
	course := "Not Enrolled"
	if s.Enrolled() {
		course = s.CourseName
		if course == "" {
			course = fmt.Sprintf("course #%d", *s.CourseID)
		}
	}
	return fmt.Sprintf("Student{id=%d, name=%q, email=%q, course=%s, balance=%s}",
		s.ID, s.Name, s.Email, course, s.Balance.StringFixed(2))
}
