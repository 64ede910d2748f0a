package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics holds the reconciliation collectors. A nil *PaymentMetrics
// is valid and records nothing.
type PaymentMetrics struct {
	// Payment lifecycle
	PaymentsCreatedTotal    prometheus.CounterVec
	PaymentTransitionsTotal prometheus.CounterVec
	PaymentNoopTotal        prometheus.CounterVec
	OrdersPaidTotal         prometheus.CounterVec

	// Webhooks
	WebhooksTotal       prometheus.CounterVec
	SecurityEventsTotal prometheus.CounterVec

	// Poller
	PollTicksTotal   prometheus.CounterVec
	PollJobsExpired  prometheus.CounterVec
	PollTickDuration prometheus.Histogram

	// Idempotency ledger
	IdempotencyTotal prometheus.CounterVec

	// Provider calls
	ProviderCallDuration prometheus.HistogramVec
	ProviderUp           prometheus.GaugeVec

	// Refunds
	RefundsTotal prometheus.CounterVec
}

func NewPaymentMetrics() *PaymentMetrics {
	return NewPaymentMetricsWith(prometheus.DefaultRegisterer)
}

func NewPaymentMetricsWith(reg prometheus.Registerer) *PaymentMetrics {
	f := promauto.With(reg)
	return &PaymentMetrics{
		PaymentsCreatedTotal: *f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_created_total",
				Help: "Payment attempts created, by provider and method",
			},
			[]string{"tenant", "provider", "method"},
		),
		PaymentTransitionsTotal: *f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_transitions_total",
				Help: "Applied payment status transitions",
			},
			[]string{"provider", "from", "to", "source"},
		),
		PaymentNoopTotal: *f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_transition_noop_total",
				Help: "Transition calls absorbed without a write",
			},
			[]string{"provider", "reason", "source"},
		),
		OrdersPaidTotal: *f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_paid_total",
				Help: "Orders promoted to paid",
			},
			[]string{"tenant", "currency"},
		),
		WebhooksTotal: *f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_webhooks_total",
				Help: "Inbound webhooks by outcome",
			},
			[]string{"provider", "outcome"},
		),
		SecurityEventsTotal: *f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_security_events_total",
				Help: "Hard webhook authorization failures",
			},
			[]string{"tenant", "provider", "type"},
		),
		PollTicksTotal: *f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_poll_ticks_total",
				Help: "Status poll attempts by outcome",
			},
			[]string{"provider", "outcome"},
		),
		PollJobsExpired: *f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_poll_jobs_expired_total",
				Help: "Polling jobs that expired before a definitive status",
			},
			[]string{"provider"},
		),
		PollTickDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "payment_poll_tick_duration_seconds",
				Help:    "Duration of one poller tick",
				Buckets: prometheus.DefBuckets,
			},
		),
		IdempotencyTotal: *f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_idempotency_total",
				Help: "Idempotency ledger lookups by scope and result",
			},
			[]string{"scope", "result"},
		),
		ProviderCallDuration: *f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payment_provider_call_duration_seconds",
				Help:    "Provider API call latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"provider", "op", "result"},
		),
		ProviderUp: *f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "payment_provider_up",
				Help: "1 when the last provider health check passed",
			},
			[]string{"tenant", "provider"},
		),
		RefundsTotal: *f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_refunds_total",
				Help: "Refund status changes",
			},
			[]string{"provider", "status"},
		),
	}
}

func (m *PaymentMetrics) RecordPaymentCreated(tenant, provider, method string) {
	if m == nil {
		return
	}
	m.PaymentsCreatedTotal.WithLabelValues(tenant, provider, method).Inc()
}

func (m *PaymentMetrics) RecordTransition(provider, from, to, source string) {
	if m == nil {
		return
	}
	m.PaymentTransitionsTotal.WithLabelValues(provider, from, to, source).Inc()
}

func (m *PaymentMetrics) RecordNoop(provider, reason, source string) {
	if m == nil {
		return
	}
	m.PaymentNoopTotal.WithLabelValues(provider, reason, source).Inc()
}

func (m *PaymentMetrics) RecordOrderPaid(tenant, currency string) {
	if m == nil {
		return
	}
	m.OrdersPaidTotal.WithLabelValues(tenant, currency).Inc()
}

func (m *PaymentMetrics) RecordWebhook(provider, outcome string) {
	if m == nil {
		return
	}
	m.WebhooksTotal.WithLabelValues(provider, outcome).Inc()
}

func (m *PaymentMetrics) RecordSecurityEvent(tenant, provider, eventType string) {
	if m == nil {
		return
	}
	m.SecurityEventsTotal.WithLabelValues(tenant, provider, eventType).Inc()
}

func (m *PaymentMetrics) RecordPollTick(provider, outcome string) {
	if m == nil {
		return
	}
	m.PollTicksTotal.WithLabelValues(provider, outcome).Inc()
}

func (m *PaymentMetrics) RecordPollExpired(provider string) {
	if m == nil {
		return
	}
	m.PollJobsExpired.WithLabelValues(provider).Inc()
}

func (m *PaymentMetrics) ObservePollTick(d time.Duration) {
	if m == nil {
		return
	}
	m.PollTickDuration.Observe(d.Seconds())
}

func (m *PaymentMetrics) RecordIdempotency(scope, result string) {
	if m == nil {
		return
	}
	m.IdempotencyTotal.WithLabelValues(scope, result).Inc()
}

func (m *PaymentMetrics) ObserveProviderCall(provider, op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ProviderCallDuration.WithLabelValues(provider, op, result).Observe(d.Seconds())
}

func (m *PaymentMetrics) SetProviderUp(tenant, provider string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.ProviderUp.WithLabelValues(tenant, provider).Set(v)
}

func (m *PaymentMetrics) RecordRefund(provider, status string) {
	if m == nil {
		return
	}
	m.RefundsTotal.WithLabelValues(provider, status).Inc()
}
