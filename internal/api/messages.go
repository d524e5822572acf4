package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/studentfees/internal/models"
	"github.com/mmynk/studentfees/internal/service"
)

// Student is the wire form of models.Student.
type Student struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	CourseID   *int64          `json:"course_id,omitempty"`
	CourseName string          `json:"course_name,omitempty"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Course is the wire form of models.Course.
type Course struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	DurationMonths int             `json:"duration_months"`
	Fee            decimal.Decimal `json:"fee"`
	StudentIDs     []int64         `json:"student_ids"`
}

// Payment is the wire form of a ledger entry.
type Payment struct {
	ID        int64           `json:"id"`
	Reference string          `json:"reference"`
	StudentID int64           `json:"student_id"`
	Amount    decimal.Decimal `json:"amount"`
	Kind      string          `json:"kind"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Empty is the response of operations that return nothing.
type Empty struct{}

// Student service

type AddStudentRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=100"`
}

type AddStudentResponse struct {
	StudentID int64 `json:"student_id"`
}

type EnrollStudentRequest struct {
	StudentID int64 `json:"student_id" validate:"gt=0"`
	CourseID  int64 `json:"course_id" validate:"gt=0"`
}

type UpdateStudentRequest struct {
	StudentID int64  `json:"student_id" validate:"gt=0"`
	Name      string `json:"name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=100"`
}

type StudentIDRequest struct {
	StudentID int64 `json:"student_id" validate:"gt=0"`
}

type GetStudentResponse struct {
	Student *Student `json:"student"`
}

// ListStudentsRequest lists every student, or only those enrolled in
// CourseID when it is set.
type ListStudentsRequest struct {
	CourseID *int64 `json:"course_id,omitempty" validate:"omitempty,gt=0"`
}

type ListStudentsResponse struct {
	Students []*Student `json:"students"`
}

// Course service

type AddCourseRequest struct {
	Name           string          `json:"name" validate:"required,max=100"`
	DurationMonths int             `json:"duration_months" validate:"gt=0"`
	Fee            decimal.Decimal `json:"fee" validate:"gte=0"`
}

type AddCourseResponse struct {
	CourseID int64 `json:"course_id"`
}

type UpdateCourseRequest struct {
	CourseID       int64           `json:"course_id" validate:"gt=0"`
	Name           string          `json:"name" validate:"required,max=100"`
	DurationMonths int             `json:"duration_months" validate:"gt=0"`
	Fee            decimal.Decimal `json:"fee" validate:"gte=0"`
}

type CourseIDRequest struct {
	CourseID int64 `json:"course_id" validate:"gt=0"`
}

type GetCourseResponse struct {
	Course *Course `json:"course"`
}

type ListCoursesRequest struct{}

type ListCoursesResponse struct {
	Courses []*Course `json:"courses"`
}

// Fee service

// LedgerRequest records a payment or a refund. Amount is checked by the
// service so that an unknown student is reported before a bad amount.
type LedgerRequest struct {
	StudentID int64           `json:"student_id" validate:"gt=0"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note" validate:"max=255"`
}

type ReceiptResponse struct {
	Payment *Payment        `json:"payment"`
	Balance decimal.Decimal `json:"balance"`
}

type PaymentHistoryResponse struct {
	Payments []*Payment `json:"payments"`
}

type FeeSummaryResponse struct {
	StudentID     int64           `json:"student_id"`
	StudentName   string          `json:"student_name"`
	CourseName    string          `json:"course_name,omitempty"`
	CourseFee     decimal.Decimal `json:"course_fee"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalRefunded decimal.Decimal `json:"total_refunded"`
	NetPaid       decimal.Decimal `json:"net_paid"`
	Balance       decimal.Decimal `json:"balance"`
}

type ReconcileResponse struct {
	StudentID     int64           `json:"student_id"`
	Entries       int             `json:"entries"`
	Stored        decimal.Decimal `json:"stored"`
	Expected      decimal.Decimal `json:"expected"`
	Drift         decimal.Decimal `json:"drift"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalRefunded decimal.Decimal `json:"total_refunded"`
	Consistent    bool            `json:"consistent"`
}

func toStudent(s *models.Student) *Student {
	return &Student{
		ID:         s.ID,
		Name:       s.Name,
		Email:      s.Email,
		CourseID:   s.CourseID,
		CourseName: s.CourseName,
		Balance:    s.Balance,
		CreatedAt:  s.CreatedAt,
	}
}

func toStudents(in []*models.Student) []*Student {
	out := make([]*Student, 0, len(in))
	for _, s := range in {
		out = append(out, toStudent(s))
	}
	return out
}

func toCourse(c *models.Course) *Course {
	ids := c.StudentIDs
	if ids == nil {
		ids = []int64{}
	}
	return &Course{
		ID:             c.ID,
		Name:           c.Name,
		DurationMonths: c.DurationMonths,
		Fee:            c.Fee,
		StudentIDs:     ids,
	}
}

func toPayment(p *models.Payment) *Payment {
	return &Payment{
		ID:        p.ID,
		Reference: p.Reference,
		StudentID: p.StudentID,
		Amount:    p.Amount,
		Kind:      string(p.Kind),
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
	}
}

func toReceipt(r *service.Receipt) *ReceiptResponse {
	return &ReceiptResponse{Payment: toPayment(r.Payment), Balance: r.Balance}
}
