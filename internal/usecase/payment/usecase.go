package payment

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/metrics"
	paymentdto "github.com/LavaJover/shvark-payments-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/reconcile"
)

type PaymentUsecase interface {
	CreatePayment(ctx context.Context, tenantID string, input *paymentdto.CreatePaymentInput, idempotencyKey, providerHint string) (*paymentdto.IdempotentOutput, error)
	StartTokenURLFlow(ctx context.Context, tenantID string, input *paymentdto.TokenURLInput) (*paymentdto.IdempotentOutput, error)
	CancelPayment(ctx context.Context, tenantID string, input *paymentdto.CancelPaymentInput, idempotencyKey string) (*paymentdto.IdempotentOutput, error)
	CreateRefund(ctx context.Context, tenantID string, input *paymentdto.CreateRefundInput, idempotencyKey string) (*paymentdto.IdempotentOutput, error)
	SyncRefund(ctx context.Context, tenantID, refundID string) (*paymentdto.RefundOutput, error)

	GetPaymentStatus(ctx context.Context, tenantID, paymentID string) (*paymentdto.PaymentStatusOutput, error)
	GetOrderInfo(ctx context.Context, tenantID, orderID string) (*paymentdto.OrderInfoOutput, error)
	RecordReturn(ctx context.Context, tenantID, provider, merchantTransactionID string) (*paymentdto.PaymentStatusOutput, error)
}

// Settings are the timing knobs of the facade.
type Settings struct {
	PollInitialDelay time.Duration
	PollExpireAfter  time.Duration
	IdempotencyTTL   time.Duration
}

type DefaultPaymentUsecase struct {
	store      domain.Store
	adapters   domain.AdapterFactory
	reconciler *reconcile.Reconciler
	cache      domain.ResponseCache
	metrics    *metrics.PaymentMetrics
	logger     *slog.Logger
	settings   Settings
}

func NewDefaultPaymentUsecase(
	store domain.Store,
	adapters domain.AdapterFactory,
	reconciler *reconcile.Reconciler,
	cache domain.ResponseCache,
	m *metrics.PaymentMetrics,
	logger *slog.Logger,
	settings Settings,
) *DefaultPaymentUsecase {
	return &DefaultPaymentUsecase{
		store:      store,
		adapters:   adapters,
		reconciler: reconciler,
		cache:      cache,
		metrics:    m,
		logger:     logger,
		settings:   settings,
	}
}

func (uc *DefaultPaymentUsecase) now() time.Time {
	return uc.reconciler.Now()
}
