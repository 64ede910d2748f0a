package poller_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/repository"
	paymentdto "github.com/LavaJover/shvark-payments-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/poller"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/reconcile"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/testkit"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/webhook"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var settings = poller.Settings{
	Interval:      time.Second,
	BatchSize:     10,
	Lease:         30 * time.Second,
	InitialDelay:  20 * time.Second,
	MaxInterval:   2 * time.Minute,
	Multiplier:    2,
	RefundPollAge: 2 * time.Minute,
}

type refundSyncer struct {
	mu    sync.Mutex
	calls []string
}

func (s *refundSyncer) SyncRefund(_ context.Context, _, refundID string) (*paymentdto.RefundOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, refundID)
	return &paymentdto.RefundOutput{RefundID: refundID}, nil
}

type fixture struct {
	store   *repository.DefaultStore
	pub     *testkit.RecordingPublisher
	clock   *testkit.Clock
	adapter *testkit.MockAdapter
	rec     *reconcile.Reconciler
	refunds *refundSyncer
	poller  *poller.Poller
	payment *domain.Payment
}

func newFixture(t *testing.T) *fixture {
	store := testkit.NewStore(t)
	testkit.SeedProviderConfig(t, store)
	pub := &testkit.RecordingPublisher{}
	clock := testkit.NewClock(testkit.T0)
	rec := reconcile.NewReconciler(store, pub, nil, logger.Discard(), reconcile.WithClock(clock.Now))
	adapter := &testkit.MockAdapter{}
	refunds := &refundSyncer{}
	p := poller.NewPoller(store, testkit.StaticFactory{A: adapter}, rec, refunds, nil, logger.Discard(), settings)

	order := testkit.SeedOrder(t, store, "ord-1", 1000)
	order.PaymentStatus = domain.OrderPaymentProcessing
	require.NoError(t, store.Orders().Update(context.Background(), order))
	payment := testkit.SeedPayment(t, store, "ord-1", 1000, domain.PaymentCreated)
	require.NoError(t, store.PollingJobs().Upsert(context.Background(), &domain.PollingJob{
		ID:                    uuid.NewString(),
		TenantID:              testkit.Tenant,
		PaymentID:             payment.ID,
		Provider:              testkit.Provider,
		MerchantTransactionID: payment.MerchantTransactionID,
		Status:                domain.PollingActive,
		NextPollAt:            testkit.T0.Add(20 * time.Second),
		ExpireAt:              testkit.T0.Add(20 * time.Minute),
		CreatedAt:             testkit.T0,
		UpdatedAt:             testkit.T0,
	}))

	return &fixture{store: store, pub: pub, clock: clock, adapter: adapter, rec: rec, refunds: refunds, poller: p, payment: payment}
}

func (f *fixture) job(t *testing.T) *domain.PollingJob {
	t.Helper()
	job, err := f.store.PollingJobs().GetByPayment(context.Background(), testkit.Tenant, f.payment.ID)
	require.NoError(t, err)
	return job
}

func (f *fixture) order(t *testing.T) *domain.Order {
	t.Helper()
	order, err := f.store.Orders().Get(context.Background(), testkit.Tenant, "ord-1")
	require.NoError(t, err)
	return order
}

func pending() *domain.ProviderStatus {
	return &domain.ProviderStatus{
		Status:         domain.PaymentProcessing,
		ProviderStatus: "PAYMENT_PENDING",
		ResponseCode:   "PAYMENT_PENDING",
	}
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 20*time.Second, settings.Backoff(0))
	assert.Equal(t, 40*time.Second, settings.Backoff(1))
	assert.Equal(t, 80*time.Second, settings.Backoff(2))
	assert.Equal(t, 2*time.Minute, settings.Backoff(3))
	assert.Equal(t, 2*time.Minute, settings.Backoff(500))
}

func TestNothingDueBeforeInitialDelay(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(10 * time.Second)

	stats, err := f.poller.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Polled)
	f.adapter.AssertNotCalled(t, "GetStatus", mock.Anything, mock.Anything)
}

func TestPendingReschedules(t *testing.T) {
	f := newFixture(t)
	f.adapter.On("GetStatus", mock.Anything, f.payment.MerchantTransactionID).Return(pending(), nil)
	f.clock.Advance(20 * time.Second)

	stats, err := f.poller.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Polled)
	assert.Equal(t, 1, stats.Pending)

	job := f.job(t)
	assert.Equal(t, domain.PollingActive, job.Status)
	assert.Equal(t, 1, job.Attempt)
	assert.True(t, job.NextPollAt.Equal(f.clock.Now().Add(40*time.Second)))
	assert.Equal(t, "PAYMENT_PENDING", job.LastProviderStatus)
	assert.Equal(t, "PAYMENT_PENDING", job.LastResponseCode)

	got, err := f.store.Payments().Get(context.Background(), testkit.Tenant, f.payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCreated, got.Status)
	assert.Equal(t, domain.OrderPaymentProcessing, f.order(t).PaymentStatus)
	assert.Contains(t, f.pub.Types(), domain.EventPollRescheduled)
}

func TestDefinitiveStatusResolves(t *testing.T) {
	f := newFixture(t)
	f.adapter.On("GetStatus", mock.Anything, f.payment.MerchantTransactionID).Return(&domain.ProviderStatus{
		Status:         domain.PaymentCaptured,
		Definitive:     true,
		ProviderStatus: "PAYMENT_SUCCESS",
		ResponseCode:   "SUCCESS",
		AmountMinor:    1000,
	}, nil)
	f.clock.Advance(20 * time.Second)

	stats, err := f.poller.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Resolved)

	assert.Equal(t, domain.PollingCompleted, f.job(t).Status)
	order := f.order(t)
	assert.Equal(t, domain.OrderPaymentPaid, order.PaymentStatus)
	assert.Equal(t, domain.OrderConfirmed, order.Status)
}

func TestProviderErrorIsRecorded(t *testing.T) {
	f := newFixture(t)
	f.adapter.On("GetStatus", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))
	f.clock.Advance(20 * time.Second)

	stats, err := f.poller.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)

	job := f.job(t)
	assert.Equal(t, 1, job.Attempt)
	assert.Equal(t, "connection reset", job.LastError)
	assert.Equal(t, domain.PollingActive, job.Status)
}

func TestRescheduleNeverPassesExpiry(t *testing.T) {
	f := newFixture(t)
	f.adapter.On("GetStatus", mock.Anything, mock.Anything).Return(pending(), nil)
	f.clock.Advance(19*time.Minute + 30*time.Second)

	_, err := f.poller.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, f.job(t).NextPollAt.Equal(testkit.T0.Add(20*time.Minute)))
}

func TestExpiredJobLeavesPaymentAlone(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(21 * time.Minute)

	stats, err := f.poller.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Expired)
	assert.Zero(t, stats.Polled)
	f.adapter.AssertNotCalled(t, "GetStatus", mock.Anything, mock.Anything)

	assert.Equal(t, domain.PollingExpired, f.job(t).Status)
	got, err := f.store.Payments().Get(context.Background(), testkit.Tenant, f.payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCreated, got.Status)
	assert.Contains(t, f.pub.Types(), domain.EventPollExpired)
}

func TestTerminalPaymentClosesJob(t *testing.T) {
	f := newFixture(t)
	_, err := f.rec.Transition(context.Background(), reconcile.TransitionInput{
		TenantID: testkit.Tenant, PaymentID: f.payment.ID, Status: domain.PaymentFailed, Verified: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PollingCompleted, f.job(t).Status)

	f.clock.Advance(time.Minute)
	stats, err := f.poller.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Polled)
}

func TestStalePendingRefundsAreSynced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	captured := testkit.SeedPayment(t, f.store, "ord-1", 1000, domain.PaymentCaptured)
	refund := &domain.Refund{
		ID:               uuid.NewString(),
		TenantID:         testkit.Tenant,
		PaymentID:        captured.ID,
		OrderID:          "ord-1",
		Provider:         testkit.Provider,
		MerchantRefundID: domain.NewMerchantRefundID(),
		AmountMinor:      500,
		Currency:         "INR",
		Status:           domain.RefundPending,
		CreatedAt:        testkit.T0,
		UpdatedAt:        testkit.T0,
	}
	require.NoError(t, f.store.Refunds().Create(ctx, refund))
	f.adapter.On("GetStatus", mock.Anything, mock.Anything).Return(pending(), nil)

	f.clock.Advance(time.Minute)
	_, err := f.poller.RunOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, f.refunds.calls)

	f.clock.Advance(2 * time.Minute)
	stats, err := f.poller.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Refunds)
	assert.Equal(t, []string{refund.ID}, f.refunds.calls)
}

func TestStartStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.poller.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}

// A pending poll, then a verified capture webhook, then the same webhook again.
func TestPollThenWebhookScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	router := webhook.NewRouter(f.store, testkit.StaticFactory{A: f.adapter}, f.rec, f.pub, nil, logger.Discard())

	f.adapter.On("GetStatus", mock.Anything, f.payment.MerchantTransactionID).Return(pending(), nil)
	f.clock.Advance(20 * time.Second)
	_, err := f.poller.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.job(t).Attempt)
	assert.Equal(t, domain.OrderPending, f.order(t).Status)

	key := f.payment.MerchantTransactionID + ":PAYMENT_SUCCESS"
	f.adapter.On("WebhookDedupeKey", mock.Anything, mock.Anything).Return(key, nil)
	f.adapter.On("VerifyWebhook", mock.Anything, mock.Anything, mock.Anything).Return(&domain.WebhookVerification{
		Verified: true,
		Event: &domain.WebhookEvent{
			Kind:                  domain.WebhookPayment,
			Type:                  "PAYMENT_SUCCESS",
			MerchantTransactionID: f.payment.MerchantTransactionID,
			Payment: &domain.ProviderStatus{
				Status:         domain.PaymentCaptured,
				Definitive:     true,
				ProviderStatus: "PAYMENT_SUCCESS",
				AmountMinor:    1000,
			},
		},
	}, nil)

	req := webhook.Request{TenantID: testkit.Tenant, Provider: testkit.Provider, Headers: http.Header{}, Body: []byte(`{"response":"x"}`)}
	res, err := router.Handle(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeProcessed, res.Outcome)

	got, err := f.store.Payments().Get(ctx, testkit.Tenant, f.payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCaptured, got.Status)
	order := f.order(t)
	assert.Equal(t, domain.OrderConfirmed, order.Status)
	assert.Equal(t, domain.OrderPaymentPaid, order.PaymentStatus)
	assert.Equal(t, domain.PollingCompleted, f.job(t).Status)

	res, err = router.Handle(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeAlreadyProcessed, res.Outcome)
}
