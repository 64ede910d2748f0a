package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *PaymentMetrics
	assert.NotPanics(t, func() {
		m.RecordTransition("phonepe", "created", "captured", "webhook")
		m.RecordWebhook("phonepe", "processed")
		m.ObserveProviderCall("phonepe", "status", time.Second, nil)
		m.SetProviderUp("acme", "phonepe", true)
	})
}

func TestRecordTransitionCounts(t *testing.T) {
	m := NewPaymentMetricsWith(prometheus.NewRegistry())

	m.RecordTransition("phonepe", "created", "captured", "webhook")
	m.RecordTransition("phonepe", "created", "captured", "webhook")
	m.SetProviderUp("acme", "phonepe", false)
	m.ObserveProviderCall("phonepe", "pay", 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PaymentTransitionsTotal.WithLabelValues("phonepe", "created", "captured", "webhook")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ProviderUp.WithLabelValues("acme", "phonepe")))
}
