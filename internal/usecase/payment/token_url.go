package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	paymentdto "github.com/LavaJover/shvark-payments-service/internal/usecase/dto/payment"
)

// StartTokenURLFlow collapses repeated submissions of the same checkout onto
// one provider attempt until that attempt's pay link expires.
func (uc *DefaultPaymentUsecase) StartTokenURLFlow(ctx context.Context, tenantID string, input *paymentdto.TokenURLInput) (*paymentdto.IdempotentOutput, error) {
	amountMinor, err := validateAmount(input.OrderID, input.Amount, input.Currency)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(input.Currency)
	key := TokenURLKey(tenantID, input.OrderID, amountMinor, currency)
	call := idempotentCall{tenantID: tenantID, scope: domain.ScopeTokenURL, key: key, requestHash: key}

	for range 2 {
		replay, record, err := uc.claim(ctx, call)
		if err != nil {
			return nil, err
		}
		if record != nil {
			return uc.createAttempt(ctx, call, record, attempt{
				tenantID:    tenantID,
				orderID:     input.OrderID,
				amountMinor: amountMinor,
				currency:    currency,
				customer:    input.Customer,
				provider:    input.Provider,
				methodKind:  domain.MethodUPI,
				flow:        input.Flow,
			}, renderTokenURL)
		}

		var cached paymentdto.TokenURLOutput
		if err := replay.Decode(&cached); err != nil {
			return nil, fmt.Errorf("failed to decode cached token url: %w", err)
		}
		if cached.ExpiresAt == nil || uc.now().Before(*cached.ExpiresAt) {
			return replay, nil
		}
		if err := uc.expireTokenURL(ctx, call, replay.PaymentID, *cached.ExpiresAt); err != nil {
			return nil, err
		}
	}
	return nil, domain.ErrRequestInFlight
}

func renderTokenURL(p *domain.Payment, res *domain.ProviderPaymentResult) any {
	return paymentdto.TokenURLOutput{
		PaymentID:             p.ID,
		OrderID:               p.OrderID,
		MerchantTransactionID: p.MerchantTransactionID,
		TokenURL:              res.RedirectURL,
		IntentURL:             res.IntentURL,
		QRData:                res.QRData,
		ExpiresAt:             res.ExpiresAt,
	}
}

// expireTokenURL retires a cached attempt whose pay link has lapsed. The
// payment itself keeps its last known status.
func (uc *DefaultPaymentUsecase) expireTokenURL(ctx context.Context, call idempotentCall, paymentID string, expiredAt time.Time) error {
	now := uc.now()
	var provider string
	job, err := uc.store.PollingJobs().GetByPayment(ctx, call.tenantID, paymentID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return err
	default:
		provider = job.Provider
		if job.Status == domain.PollingActive {
			job.Status = domain.PollingExpired
			job.UpdatedAt = now
			if err := uc.store.PollingJobs().Update(ctx, job); err != nil {
				return fmt.Errorf("failed to expire polling job: %w", err)
			}
			uc.metrics.RecordPollExpired(job.Provider)
		}
	}

	if err := uc.invalidate(ctx, call); err != nil {
		return err
	}
	uc.metrics.RecordIdempotency(call.scope, "invalidated")
	uc.logger.Info("token url expired, creating a new attempt",
		"tenant", call.tenantID, "payment_id", paymentID, "expired_at", expiredAt)

	return uc.reconciler.Record(ctx, domain.PaymentEvent{
		TenantID:  call.tenantID,
		PaymentID: paymentID,
		Provider:  provider,
		Type:      domain.EventIdempotencyInvalidate,
		Payload: map[string]any{
			"scope":      call.scope,
			"expired_at": expiredAt.Format(time.RFC3339),
		},
	})
}
