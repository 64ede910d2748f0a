package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	paymentdto "github.com/LavaJover/shvark-payments-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/reconcile"
)

func (uc *DefaultPaymentUsecase) CancelPayment(ctx context.Context, tenantID string, input *paymentdto.CancelPaymentInput, idempotencyKey string) (*paymentdto.IdempotentOutput, error) {
	if idempotencyKey == "" {
		return nil, domain.ErrIdempotencyKeyRequired
	}
	if input.PaymentID == "" {
		return nil, fmt.Errorf("%w: paymentId is required", domain.ErrInvalidRequest)
	}
	hash, err := requestHash(input)
	if err != nil {
		return nil, err
	}
	call := idempotentCall{tenantID: tenantID, scope: domain.ScopeCancelPayment, key: idempotencyKey, requestHash: hash}
	replay, record, err := uc.claim(ctx, call)
	if err != nil || replay != nil {
		return replay, err
	}

	out, err := uc.cancel(ctx, tenantID, input)
	if err != nil {
		uc.release(ctx, record)
		return nil, err
	}
	body, err := json.Marshal(out)
	if err != nil {
		uc.release(ctx, record)
		return nil, err
	}
	return uc.finish(ctx, call, record, body, out.PaymentID)
}

// cancel asks the provider first: a payment already captured there is
// reconciled instead of cancelled.
func (uc *DefaultPaymentUsecase) cancel(ctx context.Context, tenantID string, input *paymentdto.CancelPaymentInput) (*paymentdto.CancelOutput, error) {
	p, err := uc.store.Payments().Get(ctx, tenantID, input.PaymentID)
	if err != nil {
		return nil, err
	}
	switch p.Status {
	case domain.PaymentCaptured:
		return nil, domain.ErrPaymentAlreadyCaptured
	case domain.PaymentCancelled:
		return &paymentdto.CancelOutput{PaymentID: p.ID, Status: p.Status, Cancelled: true}, nil
	case domain.PaymentFailed:
		return nil, domain.ErrPaymentTerminal
	}

	adapter, err := uc.adapterFor(ctx, p)
	if err != nil {
		return nil, err
	}
	st, err := adapter.GetStatus(ctx, p.MerchantTransactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check provider status before cancel: %w", err)
	}
	if st.Definitive && (st.Status == domain.PaymentCaptured || st.Status == domain.PaymentFailed) {
		res, err := uc.reconciler.Transition(ctx, reconcile.EvidenceFromStatus(p, st, true, reconcile.SourceAPI))
		if err != nil {
			return nil, err
		}
		if res.Payment.Status == domain.PaymentCaptured {
			return nil, domain.ErrPaymentAlreadyCaptured
		}
		return &paymentdto.CancelOutput{PaymentID: p.ID, Status: res.Payment.Status}, nil
	}

	res, err := uc.reconciler.Transition(ctx, reconcile.TransitionInput{
		TenantID:       tenantID,
		PaymentID:      p.ID,
		Status:         domain.PaymentCancelled,
		Verified:       true,
		Source:         reconcile.SourceAPI,
		ProviderStatus: st.ProviderStatus,
		ProviderData:   map[string]any{"cancel_reason": input.Reason},
	})
	if err != nil {
		return nil, err
	}
	return &paymentdto.CancelOutput{
		PaymentID: p.ID,
		Status:    res.Payment.Status,
		Cancelled: res.Payment.Status == domain.PaymentCancelled,
	}, nil
}
