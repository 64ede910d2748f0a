package domain

import (
	"context"
	"time"
)

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, tenantID, orderID string) (*Order, error)
	GetForUpdate(ctx context.Context, tenantID, orderID string) (*Order, error)
	Update(ctx context.Context, order *Order) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	Get(ctx context.Context, tenantID, paymentID string) (*Payment, error)
	GetForUpdate(ctx context.Context, tenantID, paymentID string) (*Payment, error)
	GetByMerchantTransactionID(ctx context.Context, tenantID, provider, merchantTxnID string) (*Payment, error)
	ListByOrder(ctx context.Context, tenantID, orderID string) ([]*Payment, error)
	Update(ctx context.Context, payment *Payment) error
}

type RefundRepository interface {
	Create(ctx context.Context, refund *Refund) error
	Get(ctx context.Context, tenantID, refundID string) (*Refund, error)
	GetByMerchantRefundID(ctx context.Context, tenantID, provider, merchantRefundID string) (*Refund, error)
	ListByPayment(ctx context.Context, tenantID, paymentID string) ([]*Refund, error)
	ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]*Refund, error)
	Update(ctx context.Context, refund *Refund) error
}

type EventRepository interface {
	Append(ctx context.Context, event *PaymentEvent) error
	ListByPayment(ctx context.Context, tenantID, paymentID string) ([]*PaymentEvent, error)
}

type WebhookInboxRepository interface {
	FindByDedupeKey(ctx context.Context, provider, dedupeKey string) (*WebhookInboxEntry, error)
	// Insert returns ErrDuplicate when the (provider, dedupe key) row exists.
	Insert(ctx context.Context, entry *WebhookInboxEntry) error
	// Claim takes an unprocessed row for dispatch unless another claim newer
	// than staleBefore holds it.
	Claim(ctx context.Context, id string, at, staleBefore time.Time) (bool, error)
	ReleaseClaim(ctx context.Context, id string) error
	MarkProcessed(ctx context.Context, id string, at time.Time) error
}

type PollingJobRepository interface {
	// Upsert registers the job or refreshes the existing (tenant, payment) row.
	Upsert(ctx context.Context, job *PollingJob) error
	GetByPayment(ctx context.Context, tenantID, paymentID string) (*PollingJob, error)
	// ClaimDue leases up to limit active jobs with NextPollAt <= now by moving
	// NextPollAt forward by lease.
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*PollingJob, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*PollingJob, error)
	Update(ctx context.Context, job *PollingJob) error
}

type IdempotencyRepository interface {
	// Reserve inserts a pending record or returns the existing one. created is
	// true only for the single winner.
	Reserve(ctx context.Context, record *IdempotencyRecord) (existing *IdempotencyRecord, created bool, err error)
	Get(ctx context.Context, tenantID, scope, key string) (*IdempotencyRecord, error)
	Complete(ctx context.Context, record *IdempotencyRecord) error
	Delete(ctx context.Context, tenantID, scope, key string) error
}

type ProviderConfigRepository interface {
	GetEnabled(ctx context.Context, tenantID, provider string) (*ProviderConfig, error)
	GetDefault(ctx context.Context, tenantID string) (*ProviderConfig, error)
	ListEnabled(ctx context.Context) ([]*ProviderConfig, error)
	Upsert(ctx context.Context, cfg *ProviderConfig) error
}

// Store groups the repositories so a usecase can run them inside one
// transaction. Inside WithinTx only the Store passed to fn may be used.
type Store interface {
	Orders() OrderRepository
	Payments() PaymentRepository
	Refunds() RefundRepository
	Events() EventRepository
	Inbox() WebhookInboxRepository
	PollingJobs() PollingJobRepository
	Idempotency() IdempotencyRepository
	ProviderConfigs() ProviderConfigRepository
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
