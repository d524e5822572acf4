package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Course represents a paid program.
type Course struct {
	// ID is assigned by the store on creation.
	ID int64

	// Name is the course title (e.g., "Web Development").
	Name string

	// DurationMonths is the course length in months.
	DurationMonths int

	// Fee is the full course fee.
	Fee decimal.Decimal

	// StudentIDs lists the students currently enrolled.
	// Derived from students.course_id on read; writes ignore it.
	StudentIDs []int64
}

// HasEnrollments reports whether any student references this course.
func (c *Course) HasEnrollments() bool {
	return len(c.StudentIDs) > 0
}

func (c *Course) String() string {
	return fmt.Sprintf("Course{id=%d, name=%q, duration=%d months, fee=%s, enrolled=%d}",
		c.ID, c.Name, c.DurationMonths, c.Fee.StringFixed(2), len(c.StudentIDs))
}
