package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/studentfees/internal/models"
	"github.com/mmynk/studentfees/internal/storage"
)

const selectPayment = `
	SELECT id, reference::text, student_id, amount::text, kind, COALESCE(note, ''), created_at
	FROM payments
`

// CreatePayment appends a ledger entry.
func (s *PostgresStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if !payment.Kind.Valid() {
		return fmt.Errorf("invalid payment kind %q", payment.Kind)
	}
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

	err := s.q.QueryRow(ctx,
		`INSERT INTO payments (reference, student_id, amount, kind, note, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		payment.Reference, payment.StudentID, payment.Amount.String(), string(payment.Kind), note, payment.CreatedAt,
	).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("postgres: failed to insert payment: %w", err)
	}
	return nil
}

// GetPayment retrieves a ledger entry by ID.
func (s *PostgresStore) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	payment, err := scanPayment(s.q.QueryRow(ctx, selectPayment+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("payment %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get payment: %w", err)
	}
	return payment, nil
}

// ListPayments returns the whole ledger ordered by ID.
func (s *PostgresStore) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	return s.queryPayments(ctx, selectPayment+" ORDER BY id")
}

// ListPaymentsByStudent returns a student's ledger, most recent first.
func (s *PostgresStore) ListPaymentsByStudent(ctx context.Context, studentID int64) ([]*models.Payment, error) {
	return s.queryPayments(ctx, selectPayment+" WHERE student_id = $1 ORDER BY created_at DESC, id DESC", studentID)
}

// SumPayments totals a student's entries of one kind.
func (s *PostgresStore) SumPayments(ctx context.Context, studentID int64, kind models.PaymentKind) (decimal.Decimal, error) {
	var total string
	err := s.q.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0)::text FROM payments WHERE student_id = $1 AND kind = $2",
		studentID, string(kind),
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("postgres: failed to sum payments: %w", err)
	}
	return decimal.NewFromString(total)
}

// DeletePaymentsByStudent removes every ledger entry of a student.
func (s *PostgresStore) DeletePaymentsByStudent(ctx context.Context, studentID int64) error {
	if _, err := s.q.Exec(ctx, "DELETE FROM payments WHERE student_id = $1", studentID); err != nil {
		return fmt.Errorf("postgres: failed to delete payments: %w", err)
	}
	return nil
}

func (s *PostgresStore) queryPayments(ctx context.Context, query string, args ...any) ([]*models.Payment, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list payments: %w", err)
	}
	payments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Payment, error) {
		return scanPayment(row)
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan payments: %w", err)
	}
	return payments, nil
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	payment := &models.Payment{}
	var amount, kind string

	if err := row.Scan(&payment.ID, &payment.Reference, &payment.StudentID,
		&amount, &kind, &payment.Note, &payment.CreatedAt); err != nil {
		return nil, err
	}

	a, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	payment.Amount = a
	payment.Kind = models.PaymentKind(kind)

	return payment, nil
}
