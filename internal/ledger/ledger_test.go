package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mmynk/studentfees/internal/models"
)

func entry(kind models.PaymentKind, amount string) *models.Payment {
	return &models.Payment{Kind: kind, Amount: decimal.RequireFromString(amount)}
}

func TestTally(t *testing.T) {
	tests := []struct {
		name         string
		entries      []*models.Payment
		wantPaid     string
		wantRefunded string
		wantNet      string
	}{
		{
			name:         "empty ledger",
			entries:      nil,
			wantPaid:     "0",
			wantRefunded: "0",
			wantNet:      "0",
		},
		{
			name: "payments only",
			entries: []*models.Payment{
				entry(models.KindPayment, "10000"),
				entry(models.KindPayment, "2500.50"),
			},
			wantPaid:     "12500.50",
			wantRefunded: "0",
			wantNet:      "12500.50",
		},
		{
			name: "payment then partial refund",
			entries: []*models.Payment{
				entry(models.KindPayment, "10000"),
				entry(models.KindRefund, "5000"),
			},
			wantPaid:     "10000",
			wantRefunded: "5000",
			wantNet:      "5000",
		},
		{
			name: "unknown kind ignored",
			entries: []*models.Payment{
				entry(models.KindPayment, "100"),
				entry(models.PaymentKind("ADJUSTMENT"), "40"),
			},
			wantPaid:     "100",
			wantRefunded: "0",
			wantNet:      "100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tally(tt.entries)
			assert.True(t, got.Paid.Equal(decimal.RequireFromString(tt.wantPaid)), "paid = %s", got.Paid)
			assert.True(t, got.Refunded.Equal(decimal.RequireFromString(tt.wantRefunded)), "refunded = %s", got.Refunded)
			assert.True(t, got.Net().Equal(decimal.RequireFromString(tt.wantNet)), "net = %s", got.Net())
		})
	}
}

func TestCanRefund(t *testing.T) {
	totals := Totals{
		Paid:     decimal.NewFromInt(10000),
		Refunded: decimal.NewFromInt(5000),
	}

	assert.True(t, totals.CanRefund(decimal.NewFromInt(5000)), "refund equal to available is allowed")
	assert.True(t, totals.CanRefund(decimal.RequireFromString("0.01")))
	assert.False(t, totals.CanRefund(decimal.NewFromInt(6000)))
	assert.False(t, totals.CanRefund(decimal.RequireFromString("5000.01")))
}

func TestApply(t *testing.T) {
	start := decimal.NewFromInt(-10000)

	assert.True(t, Apply(start, models.KindPayment, decimal.NewFromInt(500)).Equal(decimal.NewFromInt(-10500)))
	assert.True(t, Apply(start, models.KindRefund, decimal.NewFromInt(500)).Equal(decimal.NewFromInt(-9500)))
	assert.True(t, Apply(start, models.PaymentKind("BOGUS"), decimal.NewFromInt(500)).Equal(start))
}

func TestReplay(t *testing.T) {
	entries := []*models.Payment{
		entry(models.KindPayment, "10000"),
		entry(models.KindRefund, "5000"),
		entry(models.KindPayment, "0.10"),
		entry(models.KindPayment, "0.20"),
	}

	// Decimal arithmetic: 0.1 + 0.2 must not drift.
	assert.Equal(t, "-5000.30", Replay(entries).StringFixed(2))
	assert.True(t, Replay(nil).IsZero())
}
