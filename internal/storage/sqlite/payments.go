package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/studentfees/internal/models"
	"github.com/mmynk/studentfees/internal/storage"
)

const selectPayment = `SELECT id, reference, student_id, amount, kind, note, created_at FROM payments`

// CreatePayment appends a ledger entry.
func (s *SQLiteStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if !payment.Kind.Valid() {
		return fmt.Errorf("invalid payment kind %q", payment.Kind)
	}

	// Generate reference if not set
	if payment.Reference == "" {
		payment.Reference = uuid.New().String()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}

	var note any = nil
	if payment.Note != "" {
		note = payment.Note
	}

	res, err := s.q.ExecContext(ctx,
		`INSERT INTO payments (reference, student_id, amount, kind, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		payment.Reference, payment.StudentID, payment.Amount, string(payment.Kind), note, toUnix(payment.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read payment id: %w", err)
	}
	payment.ID = id

	return nil
}

// GetPayment retrieves a ledger entry by ID.
func (s *SQLiteStore) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	payment, err := scanPayment(s.q.QueryRowContext(ctx, selectPayment+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// ListPayments returns the whole ledger ordered by ID.
func (s *SQLiteStore) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	return s.queryPayments(ctx, selectPayment+" ORDER BY id")
}

// ListPaymentsByStudent returns a student's ledger, most recent first.
// Entries recorded within the same instant fall back to insertion order.
func (s *SQLiteStore) ListPaymentsByStudent(ctx context.Context, studentID int64) ([]*models.Payment, error) {
	return s.queryPayments(ctx, selectPayment+" WHERE student_id = ? ORDER BY created_at DESC, id DESC", studentID)
}

// SumPayments totals a student's entries of one kind.
// Amounts are stored as TEXT to stay exact, so the sum happens here rather than in SQL.
func (s *SQLiteStore) SumPayments(ctx context.Context, studentID int64, kind models.PaymentKind) (decimal.Decimal, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT amount FROM payments WHERE student_id = ? AND kind = ?",
		studentID, string(kind),
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to iterate amounts: %w", err)
	}

	return total, nil
}

// DeletePaymentsByStudent removes every ledger entry of a student.
func (s *SQLiteStore) DeletePaymentsByStudent(ctx context.Context, studentID int64) error {
	if _, err := s.q.ExecContext(ctx, "DELETE FROM payments WHERE student_id = ?", studentID); err != nil {
		return fmt.Errorf("failed to delete payments: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryPayments(ctx context.Context, query string, args ...any) ([]*models.Payment, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	payment := &models.Payment{}
	var kind string
	var note sql.NullString
	var createdAt int64

	if err := row.Scan(&payment.ID, &payment.Reference, &payment.StudentID,
		&payment.Amount, &kind, &note, &createdAt); err != nil {
		return nil, err
	}

	payment.Kind = models.PaymentKind(kind)
	if note.Valid {
		payment.Note = note.String
	}
	payment.CreatedAt = fromUnix(createdAt)

	return payment, nil
}
