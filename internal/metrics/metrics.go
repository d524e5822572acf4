// Package metrics defines the Prometheus collectors exported by studentfees.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/mmynk/studentfees/internal/models"
)

const namespace = "studentfees"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing,
// so services and tests can run without a registry.
type Metrics struct {
	ledgerEntries   *prometheus.CounterVec
	ledgerAmount    *prometheus.CounterVec
	refundsRejected prometheus.Counter
	rpcRequests     *prometheus.CounterVec
	rpcDuration     *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ledgerEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_total",
			Help:      "Ledger entries recorded, by kind.",
		}, []string{"kind"}),
		ledgerAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_amount_total",
			Help:      "Sum of recorded ledger amounts, by kind.",
		}, []string{"kind"}),
		refundsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refunds_rejected_total",
			Help:      "Refunds rejected for exceeding the refundable amount.",
		}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}

	reg.MustRegister(m.ledgerEntries, m.ledgerAmount, m.refundsRejected, m.rpcRequests, m.rpcDuration)
	return m
}

// RecordEntry counts a committed ledger entry.
func (m *Metrics) RecordEntry(kind models.PaymentKind, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.ledgerEntries.WithLabelValues(string(kind)).Inc()
	m.ledgerAmount.WithLabelValues(string(kind)).Add(amount.InexactFloat64())
}

// RecordRefundRejected counts a refund refused by the ledger cap.
func (m *Metrics) RecordRefundRejected() {
	if m == nil {
		return
	}
	m.refundsRejected.Inc()
}

// ObserveRPC records one handled RPC.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}
