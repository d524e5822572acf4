// Package ledger holds the arithmetic of a student's fee ledger.
// Everything here is pure: callers load entries or sums from storage and
// decide what to persist.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/studentfees/internal/models"
)

// Totals aggregates a student's ledger by kind.
type Totals struct {
	Paid     decimal.Decimal // Sum of PAYMENT entries
	Refunded decimal.Decimal // Sum of REFUND entries
}

// Net is what the student has paid and not had returned.
func (t Totals) Net() decimal.Decimal {
	return t.Paid.Sub(t.Refunded)
}

// Refundable is the largest refund the ledger allows.
// It is the same as Net; a separate name keeps refund checks readable.
func (t Totals) Refundable() decimal.Decimal {
	return t.Net()
}

// CanRefund reports whether a refund of amount keeps refunds within payments.
func (t Totals) CanRefund(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(t.Refundable())
}

// Tally sums entries by kind. Entries of unknown kind are ignored.
func Tally(entries []*models.Payment) Totals {
	totals := Totals{Paid: decimal.Zero, Refunded: decimal.Zero}
	for _, e := range entries {
		switch e.Kind {
		case models.KindPayment:
			totals.Paid = totals.Paid.Add(e.Amount)
		case models.KindRefund:
			totals.Refunded = totals.Refunded.Add(e.Amount)
		}
	}
	return totals
}

// Apply returns the balance after recording one entry.
// Balance tracks debt: a payment lowers it, a refund raises it.
func Apply(balance decimal.Decimal, kind models.PaymentKind, amount decimal.Decimal) decimal.Decimal {
	switch kind {
	case models.KindPayment:
		return balance.Sub(amount)
	case models.KindRefund:
		return balance.Add(amount)
	default:
		return balance
	}
}

// Replay rebuilds the balance implied by a full ledger, starting from zero.
func Replay(entries []*models.Payment) decimal.Decimal {
	balance := decimal.Zero
	for _, e := range entries {
		balance = Apply(balance, e.Kind, e.Amount)
	}
	return balance
}
