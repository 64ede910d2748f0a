package notifier_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/notifier"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projected(tenant string) domain.PaymentEvent {
	return domain.PaymentEvent{
		ID:        "evt-1",
		TenantID:  tenant,
		OrderID:   "ord-1",
		PaymentID: "pay-1",
		Type:      domain.EventOrderProjected,
		Payload: map[string]any{
			"status_from":         "pending",
			"status_to":           "confirmed",
			"payment_status_from": "processing",
			"payment_status_to":   "paid",
		},
		CreatedAt: testkit.T0,
	}
}

func TestOrderProjectionIsPostedAndSigned(t *testing.T) {
	var (
		mu   sync.Mutex
		got  notifier.CallbackPayload
		sig  string
		body []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		body, _ = io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		sig = r.Header.Get(notifier.SignatureHeader)
	}))
	defer srv.Close()

	next := &testkit.RecordingPublisher{}
	p := notifier.NewCallbackPublisher(next, notifier.Options{
		URLs:   map[string]string{"acme": srv.URL},
		Secret: "s3cret",
	}, logger.Discard())

	other := projected("acme")
	other.Type = domain.EventPaymentTransitioned
	require.NoError(t, p.PublishPaymentEvents(context.Background(), projected("acme"), other))
	p.Wait()

	assert.Len(t, next.Events, 2)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "ord-1", got.OrderID)
	assert.Equal(t, "confirmed", got.Status)
	assert.Equal(t, "paid", got.PaymentStatus)
	assert.Equal(t, "pending", got.PreviousStatus)
	assert.Equal(t, notifier.Sign("s3cret", body), sig)
}

func TestTenantWithoutURLGetsNothing(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls.Add(1) }))
	defer srv.Close()

	p := notifier.NewCallbackPublisher(&testkit.RecordingPublisher{}, notifier.Options{
		URLs: map[string]string{"acme": srv.URL},
	}, logger.Discard())
	require.NoError(t, p.PublishPaymentEvents(context.Background(), projected("globex")))
	p.Wait()

	assert.Zero(t, calls.Load())
}

func TestFailedCallbackIsRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	p := notifier.NewCallbackPublisher(&testkit.RecordingPublisher{}, notifier.Options{
		URLs:        map[string]string{"acme": srv.URL},
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
	}, logger.Discard())
	require.NoError(t, p.PublishPaymentEvents(context.Background(), projected("acme")))
	p.Wait()

	assert.Equal(t, int32(3), calls.Load())
}
