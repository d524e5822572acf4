package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentKind distinguishes money received from money returned.
type PaymentKind string

const (
	KindPayment PaymentKind = "PAYMENT"
	KindRefund  PaymentKind = "REFUND"
)

// Valid reports whether k is a known kind.
func (k PaymentKind) Valid() bool {
	return k == KindPayment || k == KindRefund
}

// Payment is one append-only ledger entry.
// There is no update path: once created, a payment is never modified.
type Payment struct {
	// ID is assigned by the store on creation.
	ID int64

	// Reference is a receipt number (UUID format) assigned on creation.
	Reference string

	// StudentID is the owning student. Immutable.
	StudentID int64

	// Amount is always positive; Kind carries the direction.
	Amount decimal.Decimal

	// Kind is PAYMENT or REFUND.
	Kind PaymentKind

	// Note is free text: a description for payments, a reason for refunds.
	Note string

	// CreatedAt is set once when the entry is recorded.
	CreatedAt time.Time
}

func (p *Payment) String() string {
	return fmt.Sprintf("Payment{id=%d, ref=%s, kind=%s, amount=%s, date=%s, note=%q}",
		p.ID, p.Reference, p.Kind, p.Amount.StringFixed(2),
		p.CreatedAt.Format("2006-01-02 15:04:05"), p.Note)
}
