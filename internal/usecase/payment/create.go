package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	paymentdto "github.com/LavaJover/shvark-payments-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/reconcile"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// attempt is what both checkout flows need to open a payment at the provider.
type attempt struct {
	tenantID    string
	orderID     string
	amountMinor int64
	currency    string
	customer    domain.Customer
	provider    string
	methodKind  domain.MethodKind
	flow        domain.PaymentFlow
	successURL  string
	failureURL  string
}

type renderFunc func(p *domain.Payment, res *domain.ProviderPaymentResult) any

func (uc *DefaultPaymentUsecase) CreatePayment(ctx context.Context, tenantID string, input *paymentdto.CreatePaymentInput, idempotencyKey, providerHint string) (*paymentdto.IdempotentOutput, error) {
	if strings.TrimSpace(idempotencyKey) == "" {
		return nil, domain.ErrIdempotencyKeyRequired
	}
	amountMinor, err := validateAmount(input.OrderID, input.Amount, input.Currency)
	if err != nil {
		return nil, err
	}
	provider := providerHint
	if provider == "" {
		provider = input.Provider
	}
	hash, err := requestHash(input, provider)
	if err != nil {
		return nil, err
	}

	call := idempotentCall{tenantID: tenantID, scope: domain.ScopeCreatePayment, key: idempotencyKey, requestHash: hash}
	replay, record, err := uc.claim(ctx, call)
	if err != nil || replay != nil {
		return replay, err
	}

	return uc.createAttempt(ctx, call, record, attempt{
		tenantID:    tenantID,
		orderID:     input.OrderID,
		amountMinor: amountMinor,
		currency:    strings.ToUpper(input.Currency),
		customer:    input.Customer,
		provider:    provider,
		methodKind:  input.MethodKind,
		flow:        input.Flow,
		successURL:  input.SuccessURL,
		failureURL:  input.FailureURL,
	}, renderPayment)
}

func renderPayment(p *domain.Payment, res *domain.ProviderPaymentResult) any {
	return paymentdto.PaymentOutput{
		PaymentID:             p.ID,
		OrderID:               p.OrderID,
		Provider:              p.Provider,
		MerchantTransactionID: p.MerchantTransactionID,
		Status:                p.Status,
		AmountMinor:           p.AmountMinor,
		Amount:                domain.FormatMinor(p.AmountMinor, p.Currency),
		Currency:              p.Currency,
		RedirectURL:           res.RedirectURL,
		IntentURL:             res.IntentURL,
		QRData:                res.QRData,
		ExpiresAt:             res.ExpiresAt,
	}
}

func validateAmount(orderID string, amount decimal.Decimal, currency string) (int64, error) {
	if strings.TrimSpace(orderID) == "" {
		return 0, fmt.Errorf("%w: orderId is required", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(currency) == "" {
		return 0, fmt.Errorf("%w: currency is required", domain.ErrInvalidRequest)
	}
	return domain.ToMinorUnits(amount, currency)
}

func checkPayable(order *domain.Order, amountMinor int64, currency string) error {
	if order.IsPaid() {
		return domain.ErrOrderAlreadyPaid
	}
	switch order.Status {
	case domain.OrderCancelled, domain.OrderRefunded, domain.OrderPartiallyRefunded:
		return fmt.Errorf("%w: order is %s", domain.ErrOrderNotPayable, order.Status)
	}
	if !strings.EqualFold(order.Currency, currency) {
		return fmt.Errorf("%w: currency %s does not match order currency %s", domain.ErrInvalidRequest, currency, order.Currency)
	}
	if amountMinor != order.AmountMinor {
		return fmt.Errorf("%w: got %d, order total is %d", domain.ErrAmountMismatch, amountMinor, order.AmountMinor)
	}
	return nil
}

// createAttempt runs with a reserved ledger record and releases it on any
// failure so a retry can go through.
func (uc *DefaultPaymentUsecase) createAttempt(ctx context.Context, call idempotentCall, record *domain.IdempotencyRecord, a attempt, render renderFunc) (*paymentdto.IdempotentOutput, error) {
	out, err := uc.openAttempt(ctx, call, record, a, render)
	if err != nil {
		uc.release(ctx, record)
		return nil, err
	}
	return out, nil
}

func (uc *DefaultPaymentUsecase) openAttempt(ctx context.Context, call idempotentCall, record *domain.IdempotencyRecord, a attempt, render renderFunc) (*paymentdto.IdempotentOutput, error) {
	order, err := uc.store.Orders().Get(ctx, a.tenantID, a.orderID)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(order, a.amountMinor, a.currency); err != nil {
		return nil, err
	}
	cfg, adapter, err := uc.resolveAdapter(ctx, a.tenantID, a.provider)
	if err != nil {
		return nil, err
	}

	methodKind := a.methodKind
	if methodKind == "" {
		methodKind = domain.MethodUPI
	}
	merchantTxnID := domain.NewMerchantTransactionID()
	res, err := adapter.CreatePayment(ctx, domain.ProviderPaymentRequest{
		MerchantTransactionID: merchantTxnID,
		OrderID:               order.ID,
		AmountMinor:           a.amountMinor,
		Currency:              order.Currency,
		Customer:              a.customer,
		MethodKind:            methodKind,
		Flow:                  a.flow,
		RedirectURL:           a.successURL,
		CallbackURL:           cfg.CallbackURL,
	})
	if err != nil {
		uc.logger.Error("provider rejected payment creation",
			"tenant", a.tenantID, "order_id", order.ID, "provider", cfg.Provider, "error", err)
		uc.recordCreateFailure(ctx, a, order.ID, cfg.Provider, merchantTxnID, "provider", err)
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	now := uc.now()
	p := &domain.Payment{
		ID:                    uuid.NewString(),
		TenantID:              a.tenantID,
		OrderID:               order.ID,
		Provider:              cfg.Provider,
		Environment:           cfg.Environment,
		MerchantTransactionID: merchantTxnID,
		ProviderPaymentID:     res.ProviderPaymentID,
		ProviderReferenceID:   res.ProviderReferenceID,
		Status:                initialStatus(res.Status),
		ProviderStatus:        res.ProviderStatus,
		Currency:              order.Currency,
		AmountMinor:           a.amountMinor,
		MethodKind:            methodKind,
		RedirectURL:           res.RedirectURL,
		SuccessURL:            a.successURL,
		FailureURL:            a.failureURL,
		ExpiresAt:             res.ExpiresAt,
		ProviderData:          res.Raw,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	body, err := json.Marshal(render(p, res))
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}

	var events []domain.PaymentEvent
	err = uc.store.WithinTx(ctx, func(tx domain.Store) error {
		events = events[:0]
		if err := tx.Payments().Create(ctx, p); err != nil {
			return err
		}
		created := domain.PaymentEvent{
			ID:        uuid.NewString(),
			TenantID:  p.TenantID,
			PaymentID: p.ID,
			OrderID:   p.OrderID,
			Provider:  p.Provider,
			Type:      domain.EventPaymentCreated,
			Payload: map[string]any{
				"merchant_transaction_id": p.MerchantTransactionID,
				"status":                  string(p.Status),
				"amount_minor":            p.AmountMinor,
				"currency":                p.Currency,
				"method_kind":             string(p.MethodKind),
				"flow":                    string(a.flow),
			},
			CreatedAt: now,
		}
		if err := tx.Events().Append(ctx, &created); err != nil {
			return err
		}
		events = append(events, created)

		locked, err := tx.Orders().GetForUpdate(ctx, p.TenantID, p.OrderID)
		if err != nil {
			return err
		}
		if reconcile.ProjectAttemptCreated(locked, now) {
			if err := tx.Orders().Update(ctx, locked); err != nil {
				return err
			}
		}

		if err := tx.PollingJobs().Upsert(ctx, &domain.PollingJob{
			ID:                    uuid.NewString(),
			TenantID:              p.TenantID,
			PaymentID:             p.ID,
			Provider:              p.Provider,
			MerchantTransactionID: p.MerchantTransactionID,
			Status:                domain.PollingActive,
			NextPollAt:            now.Add(uc.settings.PollInitialDelay),
			ExpireAt:              now.Add(uc.settings.PollExpireAfter),
			LastProviderStatus:    p.ProviderStatus,
			CreatedAt:             now,
			UpdatedAt:             now,
		}); err != nil {
			return err
		}
		return uc.complete(ctx, tx, record, body, p.ID)
	})
	if err != nil {
		// The provider attempt exists without a local row.
		uc.logger.Error("failed to persist created payment",
			"tenant", a.tenantID, "order_id", order.ID, "provider", cfg.Provider,
			"merchant_transaction_id", merchantTxnID, "error", err)
		uc.recordCreateFailure(ctx, a, order.ID, cfg.Provider, merchantTxnID, "persist", err)
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	uc.cacheSet(ctx, call, record)
	uc.reconciler.Publish(ctx, events)
	uc.metrics.RecordPaymentCreated(p.TenantID, p.Provider, string(p.MethodKind))
	uc.logger.Info("payment attempt created",
		"tenant", p.TenantID, "payment_id", p.ID, "order_id", p.OrderID,
		"provider", p.Provider, "merchant_transaction_id", p.MerchantTransactionID)

	return &paymentdto.IdempotentOutput{Body: body, PaymentID: p.ID}, nil
}

func (uc *DefaultPaymentUsecase) recordCreateFailure(ctx context.Context, a attempt, orderID, provider, merchantTxnID, stage string, cause error) {
	err := uc.reconciler.Record(context.WithoutCancel(ctx), domain.PaymentEvent{
		TenantID: a.tenantID,
		OrderID:  orderID,
		Provider: provider,
		Type:     domain.EventPaymentCreateFailed,
		Payload: map[string]any{
			"merchant_transaction_id": merchantTxnID,
			"amount_minor":            a.amountMinor,
			"stage":                   stage,
			"error":                   cause.Error(),
		},
	})
	if err != nil {
		uc.logger.Warn("failed to record create failure", "error", err)
	}
}

// initialStatus keeps a new payment out of terminal states; later evidence
// goes through the reconciler.
func initialStatus(s domain.PaymentStatus) domain.PaymentStatus {
	switch s {
	case domain.PaymentCreated, domain.PaymentRequiresAction, domain.PaymentProcessing:
		return s
	default:
		return domain.PaymentRequiresAction
	}
}
