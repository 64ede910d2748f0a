package payment

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	paymentdto "github.com/LavaJover/shvark-payments-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/reconcile"
)

// RecordReturn handles the buyer's browser coming back from the provider. The
// redirect is unauthenticated, so it can only leave a processing marker.
func (uc *DefaultPaymentUsecase) RecordReturn(ctx context.Context, tenantID, provider, merchantTransactionID string) (*paymentdto.PaymentStatusOutput, error) {
	if merchantTransactionID == "" {
		return nil, fmt.Errorf("%w: merchant transaction id is required", domain.ErrInvalidRequest)
	}
	p, err := uc.store.Payments().GetByMerchantTransactionID(ctx, tenantID, provider, merchantTransactionID)
	if err != nil {
		return nil, err
	}

	res, err := uc.reconciler.Transition(ctx, reconcile.TransitionInput{
		TenantID:  p.TenantID,
		PaymentID: p.ID,
		Status:    domain.PaymentProcessing,
		Verified:  false,
		Source:    reconcile.SourceReturn,
	})
	if err != nil {
		return nil, err
	}
	if !res.Applied && res.Noop != reconcile.NoopTerminal {
		if err := uc.reconciler.Record(ctx, domain.PaymentEvent{
			TenantID:  p.TenantID,
			PaymentID: p.ID,
			OrderID:   p.OrderID,
			Provider:  p.Provider,
			Type:      domain.EventPaymentProcessingMark,
			Payload: map[string]any{
				"source": string(reconcile.SourceReturn),
				"status": string(res.Payment.Status),
			},
		}); err != nil {
			return nil, err
		}
	}
	return toStatusOutput(res.Payment), nil
}
