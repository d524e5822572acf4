package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/studentfees/internal/ledger"
	"github.com/mmynk/studentfees/internal/metrics"
	"github.com/mmynk/studentfees/internal/models"
	"github.com/mmynk/studentfees/internal/storage"
)

// FeeService records payments and refunds against a student's ledger.
//
// The ledger is the source of truth. Student.Balance is a cache of it that is
// updated in the same transaction as every ledger append, and refund
// eligibility is always recomputed from the ledger rather than the balance.
type FeeService struct {
	store   storage.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewFeeService creates a new FeeService. m may be nil.
func NewFeeService(store storage.Store, m *metrics.Metrics) *FeeService {
	return &FeeService{store: store, metrics: m, now: time.Now}
}

// Receipt is the outcome of a recorded payment or refund.
type Receipt struct {
	Payment *models.Payment
	Balance decimal.Decimal // Student balance after the entry
}

// FeeSummary is a read-only view of a student's fee position.
type FeeSummary struct {
	StudentID     int64
	StudentName   string
	CourseName    string          // Empty when not enrolled
	CourseFee     decimal.Decimal // Zero when not enrolled
	TotalPaid     decimal.Decimal
	TotalRefunded decimal.Decimal
	NetPaid       decimal.Decimal // TotalPaid - TotalRefunded
	Balance       decimal.Decimal // Stored balance
}

// Reconciliation compares the stored balance with the one the ledger implies.
type Reconciliation struct {
	StudentID int64
	Entries   int
	Stored    decimal.Decimal
	Expected  decimal.Decimal
	Drift     decimal.Decimal // Stored - Expected
	Paid      decimal.Decimal // Sum of replayed PAYMENT entries
	Refunded  decimal.Decimal // Sum of replayed REFUND entries
}

// Consistent reports whether the stored balance matches the ledger.
func (r *Reconciliation) Consistent() bool {
	return r.Drift.IsZero()
}

// ProcessPayment records a payment. The balance drops by amount and a PAYMENT
// entry is appended, atomically.
func (s *FeeService) ProcessPayment(ctx context.Context, studentID int64, amount decimal.Decimal, description string) (*Receipt, error) {
	return s.record(ctx, "ProcessPayment", studentID, models.KindPayment, amount, description)
}

// ProcessRefund records a refund. It fails with *RefundLimitError when amount
// exceeds total payments minus total refunds. On success the balance rises by
// amount and a REFUND entry is appended, atomically.
func (s *FeeService) ProcessRefund(ctx context.Context, studentID int64, amount decimal.Decimal, reason string) (*Receipt, error) {
	return s.record(ctx, "ProcessRefund", studentID, models.KindRefund, amount, reason)
}

func (s *FeeService) record(ctx context.Context, op string, studentID int64, kind models.PaymentKind, amount decimal.Decimal, note string) (*Receipt, error) {
	slog.Info(op+" request received", "student_id", studentID, "amount", amount)

	var receipt *Receipt
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		student, err := lockStudent(ctx, tx, op, studentID)
		if err != nil {
			return err
		}

		if !amount.IsPositive() {
			return invalidArgument(op, "%s amount must be positive, got %s", strings.ToLower(string(kind)), amount)
		}

		if kind == models.KindRefund {
			totals, err := ledgerTotals(ctx, tx, studentID)
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			if !totals.CanRefund(amount) {
				return &RefundLimitError{StudentID: studentID, Requested: amount, Available: totals.Refundable()}
			}
		}

		student.Balance = ledger.Apply(student.Balance, kind, amount)
		if err := tx.UpdateStudent(ctx, student); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		payment := &models.Payment{
			StudentID: studentID,
			Amount:    amount,
			Kind:      kind,
			Note:      note,
			CreatedAt: s.now(),
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		receipt = &Receipt{Payment: payment, Balance: student.Balance}
		return nil
	})
	if err != nil {
		var limitErr *RefundLimitError
		if errors.As(err, &limitErr) {
			s.metrics.RecordRefundRejected()
		}
		slog.Warn(op+" failed", "student_id", studentID, "amount", amount, "error", err)
		return nil, err
	}

	s.metrics.RecordEntry(kind, amount)
	slog.Info(op+" successful",
		"student_id", studentID,
		"payment_id", receipt.Payment.ID,
		"reference", receipt.Payment.Reference,
		"new_balance", receipt.Balance,
	)
	return receipt, nil
}

// PaymentHistory returns a student's ledger, most recent first.
func (s *FeeService) PaymentHistory(ctx context.Context, studentID int64) ([]*models.Payment, error) {
	const op = "PaymentHistory"

	if _, err := getStudent(ctx, s.store, op, studentID); err != nil {
		return nil, err
	}

	payments, err := s.store.ListPaymentsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payments, nil
}

// FeeSummary computes a student's fee position. It does not modify anything.
func (s *FeeService) FeeSummary(ctx context.Context, studentID int64) (*FeeSummary, error) {
	const op = "FeeSummary"

	var summary *FeeSummary
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		student, err := getStudent(ctx, tx, op, studentID)
		if err != nil {
			return err
		}

		summary = &FeeSummary{
			StudentID:   student.ID,
			StudentName: student.Name,
			CourseFee:   decimal.Zero,
			Balance:     student.Balance,
		}

		if student.CourseID != nil {
			course, err := getCourse(ctx, tx, op, *student.CourseID)
			if err != nil {
				return err
			}
			summary.CourseName = course.Name
			summary.CourseFee = course.Fee
		}

		totals, err := ledgerTotals(ctx, tx, studentID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		summary.TotalPaid = totals.Paid
		summary.TotalRefunded = totals.Refunded
		summary.NetPaid = totals.Net()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// Reconcile replays a student's ledger and compares the result with the
// stored balance. It reports drift and never corrects it.
func (s *FeeService) Reconcile(ctx context.Context, studentID int64) (*Reconciliation, error) {
	const op = "Reconcile"

	var rec *Reconciliation
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		student, err := getStudent(ctx, tx, op, studentID)
		if err != nil {
			return err
		}
		entries, err := tx.ListPaymentsByStudent(ctx, studentID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		expected := ledger.Replay(entries)
		totals := ledger.Tally(entries)
		rec = &Reconciliation{
			StudentID: studentID,
			Entries:   len(entries),
			Stored:    student.Balance,
			Expected:  expected,
			Drift:     student.Balance.Sub(expected),
			Paid:      totals.Paid,
			Refunded:  totals.Refunded,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !rec.Consistent() {
		slog.Warn("Balance drift detected", "student_id", studentID, "stored", rec.Stored, "expected", rec.Expected)
	}
	return rec, nil
}

// lockStudent is getStudent through the row-locking read. Every ledger write
// starts with it, so the balance and refund checks of two concurrent writes
// for the same student never interleave.
func lockStudent(ctx context.Context, store storage.StudentStore, op string, id int64) (*models.Student, error) {
	student, err := store.GetStudentForUpdate(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFound(op, "student", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return student, nil
}

// ledgerTotals reads the per-kind sums from the store.
func ledgerTotals(ctx context.Context, store storage.PaymentStore, studentID int64) (ledger.Totals, error) {
	paid, err := store.SumPayments(ctx, studentID, models.KindPayment)
	if err != nil {
		return ledger.Totals{}, err
	}
	refunded, err := store.SumPayments(ctx, studentID, models.KindRefund)
	if err != nil {
		return ledger.Totals{}, err
	}
	return ledger.Totals{Paid: paid, Refunded: refunded}, nil
}
