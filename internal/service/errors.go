package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error kinds. Every error a service returns for a business rule matches
// exactly one of these with errors.Is.
var (
	// ErrNotFound means a referenced student or course does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness or business rule would be violated.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument means an input is out of range (e.g., a non-positive amount).
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrEmailTaken is returned when another student already holds the email.
var ErrEmailTaken = &Error{Kind: ErrConflict, Message: "email already registered"}

// Error is a business-rule failure with enough context to show the user.
type Error struct {
	Kind    error  // ErrNotFound, ErrConflict or ErrInvalidArgument
	Op      string // Operation that failed, e.g. "ProcessRefund"
	Message string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Is matches the error's kind.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func notFound(op, entity string, id int64) error {
	return &Error{Kind: ErrNotFound, Op: op, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

func invalidArgument(op, format string, args ...any) error {
	return &Error{Kind: ErrInvalidArgument, Op: op, Message: fmt.Sprintf(format, args...)}
}

func conflict(op, format string, args ...any) error {
	return &Error{Kind: ErrConflict, Op: op, Message: fmt.Sprintf(format, args...)}
}

// emailTaken wraps ErrEmailTaken with the offending address.
func emailTaken(op, email string) error {
	return fmt.Errorf("%s: %w: %s", op, ErrEmailTaken, email)
}

// RefundLimitError reports a refund larger than the ledger allows.
// It matches ErrConflict.
type RefundLimitError struct {
	StudentID int64
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *RefundLimitError) Error() string {
	return fmt.Sprintf("ProcessRefund: refund of %s exceeds available refund amount for student %d (available: %s)",
		e.Requested.StringFixed(2), e.StudentID, e.Available.StringFixed(2))
}

// Is matches ErrConflict.
func (e *RefundLimitError) Is(target error) bool {
	return target == ErrConflict
}
