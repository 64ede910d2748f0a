package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	paymentdto "github.com/LavaJover/shvark-payments-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/reconcile"
	"github.com/google/uuid"
)

const refundProviderErrorCode = "PROVIDER_ERROR"

func (uc *DefaultPaymentUsecase) CreateRefund(ctx context.Context, tenantID string, input *paymentdto.CreateRefundInput, idempotencyKey string) (*paymentdto.IdempotentOutput, error) {
	if idempotencyKey == "" {
		return nil, domain.ErrIdempotencyKeyRequired
	}
	if input.PaymentID == "" {
		return nil, fmt.Errorf("%w: paymentId is required", domain.ErrInvalidRequest)
	}
	if input.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: must not be negative", domain.ErrInvalidAmount)
	}
	hash, err := requestHash(input)
	if err != nil {
		return nil, err
	}
	call := idempotentCall{tenantID: tenantID, scope: domain.ScopeCreateRefund, key: idempotencyKey, requestHash: hash}
	replay, record, err := uc.claim(ctx, call)
	if err != nil || replay != nil {
		return replay, err
	}

	out, err := uc.refund(ctx, tenantID, input)
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

// refund reserves the balance with a pending row under the payment lock and
// only then calls the provider.
func (uc *DefaultPaymentUsecase) refund(ctx context.Context, tenantID string, input *paymentdto.CreateRefundInput) (*paymentdto.RefundOutput, error) {
	var (
		refund  *domain.Refund
		payment *domain.Payment
		events  []domain.PaymentEvent
	)
	err := uc.store.WithinTx(ctx, func(tx domain.Store) error {
		events = events[:0]
		p, err := tx.Payments().GetForUpdate(ctx, tenantID, input.PaymentID)
		if err != nil {
			return err
		}
		if p.Status != domain.PaymentCaptured {
			return domain.ErrPaymentNotCaptured
		}
		existing, err := tx.Refunds().ListByPayment(ctx, tenantID, p.ID)
		if err != nil {
			return err
		}
		refundable := reconcile.Refundable(p, existing)

		amountMinor := refundable
		if !input.Amount.IsZero() {
			amountMinor, err = domain.ToMinorUnits(input.Amount, p.Currency)
			if err != nil {
				return err
			}
		}
		if amountMinor <= 0 || amountMinor > refundable {
			return fmt.Errorf("%w: requested %d, refundable %d", domain.ErrRefundExceedsCaptured, amountMinor, refundable)
		}

		now := uc.now()
		refund = &domain.Refund{
			ID:               uuid.NewString(),
			TenantID:         tenantID,
			PaymentID:        p.ID,
			OrderID:          p.OrderID,
			Provider:         p.Provider,
			MerchantRefundID: domain.NewMerchantRefundID(),
			AmountMinor:      amountMinor,
			Currency:         p.Currency,
			Status:           domain.RefundPending,
			Reason:           input.Reason,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := tx.Refunds().Create(ctx, refund); err != nil {
			return err
		}
		created := domain.PaymentEvent{
			ID:        uuid.NewString(),
			TenantID:  tenantID,
			PaymentID: p.ID,
			OrderID:   p.OrderID,
			Provider:  p.Provider,
			Type:      domain.EventRefundCreated,
			Payload: map[string]any{
				"refund_id":          refund.ID,
				"merchant_refund_id": refund.MerchantRefundID,
				"amount_minor":       amountMinor,
				"reason":             input.Reason,
			},
			CreatedAt: now,
		}
		if err := tx.Events().Append(ctx, &created); err != nil {
			return err
		}
		events = append(events, created)
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.reconciler.Publish(ctx, events)

	adapter, err := uc.adapterFor(ctx, payment)
	if err != nil {
		uc.failRefund(ctx, refund, err)
		return nil, err
	}
	res, err := adapter.CreateRefund(ctx, domain.ProviderRefundRequest{
		MerchantRefundID:              refund.MerchantRefundID,
		OriginalMerchantTransactionID: payment.MerchantTransactionID,
		ProviderPaymentID:             payment.ProviderPaymentID,
		AmountMinor:                   refund.AmountMinor,
		Currency:                      refund.Currency,
	})
	if err != nil {
		if domain.IsTransient(err) {
			// The provider may have accepted it; the poller settles the pending row.
			uc.logger.Warn("refund outcome unknown, left pending",
				"refund_id", refund.ID, "payment_id", refund.PaymentID, "error", err)
			return nil, fmt.Errorf("failed to create refund: %w", err)
		}
		uc.failRefund(ctx, refund, err)
		return nil, fmt.Errorf("failed to create refund: %w", err)
	}

	applied, err := uc.reconciler.ApplyRefund(ctx, refundUpdate(refund, res, reconcile.SourceAPI))
	if err != nil {
		return nil, err
	}
	return toRefundOutput(applied.Refund), nil
}

// failRefund frees the reserved balance after the provider refused the refund.
func (uc *DefaultPaymentUsecase) failRefund(ctx context.Context, refund *domain.Refund, cause error) {
	uc.logger.Error("refund creation failed", "refund_id", refund.ID, "payment_id", refund.PaymentID, "error", cause)
	_, err := uc.reconciler.ApplyRefund(context.WithoutCancel(ctx), reconcile.RefundUpdate{
		TenantID:    refund.TenantID,
		RefundID:    refund.ID,
		Status:      domain.RefundFailed,
		FailureCode: refundProviderErrorCode,
		Source:      reconcile.SourceAPI,
	})
	if err != nil {
		uc.logger.Error("failed to release refund reservation", "refund_id", refund.ID, "error", err)
	}
}

// SyncRefund asks the provider for the refund's current status and applies it.
func (uc *DefaultPaymentUsecase) SyncRefund(ctx context.Context, tenantID, refundID string) (*paymentdto.RefundOutput, error) {
	refund, err := uc.store.Refunds().Get(ctx, tenantID, refundID)
	if err != nil {
		return nil, err
	}
	if refund.Status.IsTerminal() {
		return toRefundOutput(refund), nil
	}
	p, err := uc.store.Payments().Get(ctx, tenantID, refund.PaymentID)
	if err != nil {
		return nil, err
	}
	adapter, err := uc.adapterFor(ctx, p)
	if err != nil {
		return nil, err
	}
	res, err := adapter.GetRefundStatus(ctx, refund.MerchantRefundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query refund status: %w", err)
	}
	applied, err := uc.reconciler.ApplyRefund(ctx, refundUpdate(refund, res, reconcile.SourcePoll))
	if err != nil {
		return nil, err
	}
	return toRefundOutput(applied.Refund), nil
}

func refundUpdate(refund *domain.Refund, res *domain.ProviderRefundResult, source reconcile.Source) reconcile.RefundUpdate {
	status := domain.RefundPending
	if res.Definitive && res.Status.IsTerminal() {
		status = res.Status
	}
	return reconcile.RefundUpdate{
		TenantID:         refund.TenantID,
		RefundID:         refund.ID,
		Status:           status,
		ProviderRefundID: res.ProviderRefundID,
		UTR:              res.UTR,
		FailureCode:      res.FailureCode,
		Source:           source,
	}
}

func toRefundOutput(r *domain.Refund) *paymentdto.RefundOutput {
	return &paymentdto.RefundOutput{
		RefundID:         r.ID,
		PaymentID:        r.PaymentID,
		MerchantRefundID: r.MerchantRefundID,
		ProviderRefundID: r.ProviderRefundID,
		Status:           r.Status,
		AmountMinor:      r.AmountMinor,
		Amount:           domain.FormatMinor(r.AmountMinor, r.Currency),
		Currency:         r.Currency,
		UTR:              r.UTR,
		FailureCode:      r.FailureCode,
	}
}
