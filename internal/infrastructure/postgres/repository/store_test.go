package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *repository.DefaultStore {
	return repository.NewDefaultStore(testdb.Open(t))
}

func seedOrder(t *testing.T, store domain.Store, id string) *domain.Order {
	t.Helper()
	order := &domain.Order{
		ID:            id,
		TenantID:      "acme",
		Currency:      "INR",
		AmountMinor:   1000,
		Status:        domain.OrderPending,
		PaymentStatus: domain.OrderPaymentPending,
		CreatedAt:     t0,
		UpdatedAt:     t0,
	}
	require.NoError(t, store.Orders().Create(context.Background(), order))
	return order
}

func newPayment(orderID, mtid string) *domain.Payment {
	return &domain.Payment{
		ID:                    uuid.NewString(),
		TenantID:              "acme",
		OrderID:               orderID,
		Provider:              "phonepe",
		Environment:           domain.EnvironmentTest,
		MerchantTransactionID: mtid,
		Status:                domain.PaymentCreated,
		Currency:              "INR",
		AmountMinor:           1000,
		MethodKind:            domain.MethodUPI,
		CreatedAt:             t0,
		UpdatedAt:             t0,
	}
}

func TestPaymentRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedOrder(t, store, "ord-1")

	p := newPayment("ord-1", "MT1")
	p.UPI = domain.UPIDetails{PayerVPA: "pa***@ybl", Instrument: "UPI_INTENT"}
	p.ProviderData = map[string]any{"code": "PAYMENT_INITIATED"}
	require.NoError(t, store.Payments().Create(ctx, p))

	got, err := store.Payments().Get(ctx, "acme", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "MT1", got.MerchantTransactionID)
	assert.Equal(t, "pa***@ybl", got.UPI.PayerVPA)
	assert.Equal(t, "PAYMENT_INITIATED", got.ProviderData["code"])
	assert.Empty(t, got.ProviderPaymentID)

	byMT, err := store.Payments().GetByMerchantTransactionID(ctx, "acme", "phonepe", "MT1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byMT.ID)

	_, err = store.Payments().Get(ctx, "other-tenant", p.ID)
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProviderPaymentIDUniqueWhenPresent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedOrder(t, store, "ord-1")

	// Two attempts without a provider id are fine.
	require.NoError(t, store.Payments().Create(ctx, newPayment("ord-1", "MT1")))
	require.NoError(t, store.Payments().Create(ctx, newPayment("ord-1", "MT2")))

	a := newPayment("ord-1", "MT3")
	a.ProviderPaymentID = "T123"
	require.NoError(t, store.Payments().Create(ctx, a))

	b := newPayment("ord-1", "MT4")
	b.ProviderPaymentID = "T123"
	assert.ErrorIs(t, store.Payments().Create(ctx, b), domain.ErrDuplicate)
}

func TestOneCapturedUPIPaymentPerOrder(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedOrder(t, store, "ord-1")

	first := newPayment("ord-1", "MT1")
	second := newPayment("ord-1", "MT2")
	require.NoError(t, store.Payments().Create(ctx, first))
	require.NoError(t, store.Payments().Create(ctx, second))

	first.Status = domain.PaymentCaptured
	require.NoError(t, store.Payments().Update(ctx, first))

	second.Status = domain.PaymentCaptured
	assert.ErrorIs(t, store.Payments().Update(ctx, second), domain.ErrDuplicate)

	// A failed attempt next to the captured one is allowed.
	second.Status = domain.PaymentFailed
	require.NoError(t, store.Payments().Update(ctx, second))
}

func TestRefundUniqueness(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedOrder(t, store, "ord-1")
	p := newPayment("ord-1", "MT1")
	require.NoError(t, store.Payments().Create(ctx, p))

	mk := func(mrid, prid string) *domain.Refund {
		return &domain.Refund{
			ID: uuid.NewString(), TenantID: "acme", PaymentID: p.ID, OrderID: "ord-1",
			Provider: "phonepe", MerchantRefundID: mrid, ProviderRefundID: prid,
			AmountMinor: 100, Currency: "INR", Status: domain.RefundPending,
			CreatedAt: t0, UpdatedAt: t0,
		}
	}
	require.NoError(t, store.Refunds().Create(ctx, mk("MR1", "")))
	require.NoError(t, store.Refunds().Create(ctx, mk("MR2", "")))
	require.NoError(t, store.Refunds().Create(ctx, mk("MR3", "R1")))
	assert.ErrorIs(t, store.Refunds().Create(ctx, mk("MR4", "R1")), domain.ErrDuplicate)
	assert.ErrorIs(t, store.Refunds().Create(ctx, mk("MR1", "")), domain.ErrDuplicate)

	pending, err := store.Refunds().ListPendingBefore(ctx, t0.Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestInboxInsertDetectsDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	entry := &domain.WebhookInboxEntry{
		ID: uuid.NewString(), TenantID: "acme", Provider: "phonepe", DedupeKey: "MT1:PAYMENT_SUCCESS",
		Headers: map[string]string{"X-Verify": "abc###1"}, Body: "{}", Verified: true, ReceivedAt: t0,
	}
	require.NoError(t, store.Inbox().Insert(ctx, entry))

	dup := *entry
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, store.Inbox().Insert(ctx, &dup), domain.ErrDuplicate)

	require.NoError(t, store.Inbox().MarkProcessed(ctx, entry.ID, t0.Add(time.Second)))
	got, err := store.Inbox().FindByDedupeKey(ctx, "phonepe", "MT1:PAYMENT_SUCCESS")
	require.NoError(t, err)
	require.NotNil(t, got.ProcessedAt)
	assert.Equal(t, "abc###1", got.Headers["X-Verify"])
}

func TestInboxClaim(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	claimedAt := t0
	entry := &domain.WebhookInboxEntry{
		ID: uuid.NewString(), TenantID: "acme", Provider: "phonepe", DedupeKey: "MT2:PAYMENT_SUCCESS",
		Verified: true, ClaimedAt: &claimedAt, ReceivedAt: t0,
	}
	require.NoError(t, store.Inbox().Insert(ctx, entry))

	now := t0.Add(10 * time.Second)
	ok, err := store.Inbox().Claim(ctx, entry.ID, now, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, ok, "live claim must block")

	later := t0.Add(2 * time.Minute)
	ok, err = store.Inbox().Claim(ctx, entry.ID, later, later.Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, ok, "stale claim is taken over")

	require.NoError(t, store.Inbox().ReleaseClaim(ctx, entry.ID))
	ok, err = store.Inbox().Claim(ctx, entry.ID, later, later.Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Inbox().MarkProcessed(ctx, entry.ID, later))
	ok, err = store.Inbox().Claim(ctx, entry.ID, later.Add(time.Hour), later.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "processed rows are never claimed")
}

func TestIdempotencyReserveSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	rec := func(hash string) *domain.IdempotencyRecord {
		return &domain.IdempotencyRecord{
			ID: uuid.NewString(), TenantID: "acme", Scope: domain.ScopeCreatePayment, Key: "k1",
			RequestHash: hash, Status: domain.IdempotencyPending, CreatedAt: t0,
		}
	}

	_, created, err := store.Idempotency().Reserve(ctx, rec("h1"))
	require.NoError(t, err)
	assert.True(t, created)

	existing, created, err := store.Idempotency().Reserve(ctx, rec("h2"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "h1", existing.RequestHash)

	done := t0.Add(time.Second)
	existing.ResponseBody = []byte(`{"paymentId":"p1"}`)
	existing.PaymentID = "p1"
	existing.CompletedAt = &done
	require.NoError(t, store.Idempotency().Complete(ctx, existing))

	got, err := store.Idempotency().Get(ctx, "acme", domain.ScopeCreatePayment, "k1")
	require.NoError(t, err)
	assert.Equal(t, domain.IdempotencyCompleted, got.Status)
	assert.Equal(t, `{"paymentId":"p1"}`, string(got.ResponseBody))

	require.NoError(t, store.Idempotency().Delete(ctx, "acme", domain.ScopeCreatePayment, "k1"))
	_, err = store.Idempotency().Get(ctx, "acme", domain.ScopeCreatePayment, "k1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPollingJobUpsertAndClaim(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedOrder(t, store, "ord-1")
	p := newPayment("ord-1", "MT1")
	require.NoError(t, store.Payments().Create(ctx, p))

	job := &domain.PollingJob{
		ID: uuid.NewString(), TenantID: "acme", PaymentID: p.ID, Provider: "phonepe",
		MerchantTransactionID: "MT1", Status: domain.PollingActive,
		NextPollAt: t0, ExpireAt: t0.Add(20 * time.Minute), CreatedAt: t0, UpdatedAt: t0,
	}
	require.NoError(t, store.PollingJobs().Upsert(ctx, job))
	firstID := job.ID

	again := *job
	again.ID = uuid.NewString()
	again.Attempt = 3
	require.NoError(t, store.PollingJobs().Upsert(ctx, &again))
	assert.Equal(t, firstID, again.ID)

	got, err := store.PollingJobs().GetByPayment(ctx, "acme", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Attempt)

	claimed, err := store.PollingJobs().ClaimDue(ctx, t0.Add(time.Second), 30*time.Second, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	// The lease pushed next_poll_at forward, so nothing is due right away.
	claimed, err = store.PollingJobs().ClaimDue(ctx, t0.Add(2*time.Second), 30*time.Second, 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)

	expired, err := store.PollingJobs().ListExpired(ctx, t0.Add(21*time.Minute), 10)
	require.NoError(t, err)
	assert.Len(t, expired, 1)
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	seedOrder(t, store, "ord-1")

	err := store.WithinTx(ctx, func(tx domain.Store) error {
		require.NoError(t, tx.Payments().Create(ctx, newPayment("ord-1", "MT1")))
		return domain.ErrInvalidRequest
	})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	payments, err := store.Payments().ListByOrder(ctx, "acme", "ord-1")
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestProviderConfigDefault(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.ProviderConfigs().GetDefault(ctx, "acme")
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)

	require.NoError(t, store.ProviderConfigs().Upsert(ctx, &domain.ProviderConfig{
		ID: uuid.NewString(), TenantID: "acme", Provider: "phonepe", Environment: domain.EnvironmentTest,
		Enabled: true, IsDefault: true, MerchantID: "MID", CreatedAt: t0, UpdatedAt: t0,
	}))
	cfg, err := store.ProviderConfigs().GetDefault(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "phonepe", cfg.Provider)

	_, err = store.ProviderConfigs().GetEnabled(ctx, "other", "phonepe")
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
}
