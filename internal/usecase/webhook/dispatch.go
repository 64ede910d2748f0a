package webhook

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/reconcile"
)

func (r *Router) dispatch(ctx context.Context, req Request, event *domain.WebhookEvent) (*Result, error) {
	switch event.Kind {
	case domain.WebhookRefund:
		return r.dispatchRefund(ctx, req, event)
	default:
		return r.dispatchPayment(ctx, req, event)
	}
}

func (r *Router) dispatchPayment(ctx context.Context, req Request, event *domain.WebhookEvent) (*Result, error) {
	if event.Payment == nil {
		return &Result{Outcome: OutcomeIgnored, Reason: "payment event without status"}, nil
	}
	p, err := r.store.Payments().GetByMerchantTransactionID(ctx, req.TenantID, req.Provider, event.MerchantTransactionID)
	if errors.Is(err, domain.ErrNotFound) {
		r.logger.Warn("webhook for unknown payment",
			"tenant", req.TenantID, "provider", req.Provider, "merchant_transaction_id", event.MerchantTransactionID)
		return &Result{Outcome: OutcomeIgnored, Reason: "unknown payment"}, nil
	}
	if err != nil {
		return nil, err
	}

	res, err := r.reconciler.Transition(ctx, reconcile.EvidenceFromStatus(p, event.Payment, true, reconcile.SourceWebhook))
	if err != nil {
		return nil, err
	}
	return &Result{Outcome: OutcomeProcessed, PaymentID: res.Payment.ID, Reason: string(res.Noop)}, nil
}

func (r *Router) dispatchRefund(ctx context.Context, req Request, event *domain.WebhookEvent) (*Result, error) {
	if event.Refund == nil {
		return &Result{Outcome: OutcomeIgnored, Reason: "refund event without status"}, nil
	}
	refund, err := r.store.Refunds().GetByMerchantRefundID(ctx, req.TenantID, req.Provider, event.MerchantRefundID)
	if errors.Is(err, domain.ErrNotFound) {
		r.logger.Warn("webhook for unknown refund",
			"tenant", req.TenantID, "provider", req.Provider, "merchant_refund_id", event.MerchantRefundID)
		return &Result{Outcome: OutcomeIgnored, Reason: "unknown refund"}, nil
	}
	if err != nil {
		return nil, err
	}

	status := domain.RefundPending
	if event.Refund.Definitive && event.Refund.Status.IsTerminal() {
		status = event.Refund.Status
	}
	res, err := r.reconciler.ApplyRefund(ctx, reconcile.RefundUpdate{
		TenantID:         refund.TenantID,
		RefundID:         refund.ID,
		Status:           status,
		ProviderRefundID: event.Refund.ProviderRefundID,
		UTR:              event.Refund.UTR,
		FailureCode:      event.Refund.FailureCode,
		Source:           reconcile.SourceWebhook,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Outcome: OutcomeProcessed, PaymentID: res.Payment.ID}, nil
}
