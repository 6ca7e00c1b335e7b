// Package metrics holds the prometheus instruments for checkout, scanning
// and the ledger outbox.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes.
const (
	CheckoutCommitted = "committed"
	CheckoutRejected  = "rejected"
	CheckoutFailed    = "failed"
)

// Outbox results.
const (
	OutboxQueued    = "queued"
	OutboxDelivered = "delivered"
	OutboxRetried   = "retried"
	OutboxAbandoned = "abandoned"
)

// Config labels every series with the service and environment.
type Config struct {
	ServiceName string
	Environment string
}

// Metrics is nil-safe: every method on a nil *Metrics is a no-op.
type Metrics struct {
	checkoutTotal    *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
	scannerTokens    prometheus.Counter
	outboxTotal      *prometheus.CounterVec
}

// New creates the instruments and registers them on registerer, falling
// back to the default registerer.
func New(registerer prometheus.Registerer, cfg Config) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "tillpoint"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &Metrics{
		checkoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "tillpoint_checkout_total",
			Help:        "Checkout attempts by outcome.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		checkoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "tillpoint_checkout_duration_seconds",
			Help:        "Checkout latency from reconciliation to the ledger step.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			ConstLabels: constLabels,
		}),
		scannerTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "tillpoint_scanner_tokens_total",
			Help:        "Barcode tokens emitted by the scanner classifier.",
			ConstLabels: constLabels,
		}),
		outboxTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "tillpoint_ledger_outbox_total",
			Help:        "Ledger outbox entries by result.",
			ConstLabels: constLabels,
		}, []string{"result"}),
	}
	registerer.MustRegister(m.checkoutTotal, m.checkoutDuration, m.scannerTokens, m.outboxTotal)
	return m
}

func (m *Metrics) ObserveCheckout(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.checkoutTotal.WithLabelValues(outcome).Inc()
	m.checkoutDuration.Observe(d.Seconds())
}

func (m *Metrics) ScannerToken() {
	if m == nil {
		return
	}
	m.scannerTokens.Inc()
}

func (m *Metrics) Outbox(result string) {
	if m == nil {
		return
	}
	m.outboxTotal.WithLabelValues(result).Inc()
}
