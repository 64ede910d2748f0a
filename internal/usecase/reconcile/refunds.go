package reconcile

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
)

type RefundUpdate struct {
	TenantID         string
	RefundID         string
	Status           domain.RefundStatus
	ProviderRefundID string
	UTR              string
	FailureCode      string
	Source           Source
}

type RefundResult struct {
	Refund  *domain.Refund
	Payment *domain.Payment
	Order   *domain.Order
	Applied bool
}

// ApplyRefund moves a refund to a terminal status and recomputes the parent
// payment's refunded total from the full set of succeeded refunds.
func (r *Reconciler) ApplyRefund(ctx context.Context, upd RefundUpdate) (*RefundResult, error) {
	var (
		log    eventLog
		result *RefundResult
	)
	err := r.store.WithinTx(ctx, func(tx domain.Store) error {
		log = eventLog{}
		res, err := r.applyRefundTx(ctx, tx, &log, upd)
		result = res
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.Applied {
		r.metrics.RecordRefund(result.Refund.Provider, string(result.Refund.Status))
		r.logger.Info("refund updated",
			"refund_id", result.Refund.ID, "payment_id", result.Payment.ID,
			"status", result.Refund.Status, "refunded_minor", result.Payment.AmountRefundedMinor)
	}
	r.publish(ctx, log.events)
	return result, nil
}

func (r *Reconciler) applyRefundTx(ctx context.Context, tx domain.Store, log *eventLog, upd RefundUpdate) (*RefundResult, error) {
	unlocked, err := tx.Refunds().Get(ctx, upd.TenantID, upd.RefundID)
	if err != nil {
		return nil, err
	}
	p, err := tx.Payments().GetForUpdate(ctx, upd.TenantID, unlocked.PaymentID)
	if err != nil {
		return nil, err
	}
	// Re-read under the payment lock.
	refund, err := tx.Refunds().Get(ctx, upd.TenantID, upd.RefundID)
	if err != nil {
		return nil, err
	}
	now := r.now()
	res := &RefundResult{Refund: refund, Payment: p}

	if refund.Status.IsTerminal() {
		return res, nil
	}
	if upd.ProviderRefundID != "" && refund.ProviderRefundID == "" {
		refund.ProviderRefundID = upd.ProviderRefundID
	}
	if upd.UTR != "" {
		refund.UTR = upd.UTR
	}

	switch upd.Status {
	case domain.RefundPending:
		refund.UpdatedAt = now
		return res, tx.Refunds().Update(ctx, refund)
	case domain.RefundSucceeded, domain.RefundFailed:
	default:
		return nil, fmt.Errorf("%w: unknown refund status %q", domain.ErrInvalidRequest, upd.Status)
	}

	refund.Status = upd.Status
	refund.FailureCode = upd.FailureCode
	refund.UpdatedAt = now
	if err := tx.Refunds().Update(ctx, refund); err != nil {
		return nil, err
	}
	res.Applied = true

	eventType := domain.EventRefundSucceeded
	if upd.Status == domain.RefundFailed {
		eventType = domain.EventRefundFailed
	}
	payload := map[string]any{
		"refund_id":    refund.ID,
		"amount_minor": refund.AmountMinor,
		"source":       string(upd.Source),
	}
	if refund.FailureCode != "" {
		payload["failure_code"] = refund.FailureCode
	}
	if refund.UTR != "" {
		payload["utr"] = refund.UTR
	}
	if err := log.add(ctx, tx, domain.PaymentEvent{
		TenantID:  p.TenantID,
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Provider:  p.Provider,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	if err := RecomputeRefunded(ctx, tx, p); err != nil {
		return nil, err
	}
	p.UpdatedAt = now
	if err := tx.Payments().Update(ctx, p); err != nil {
		return nil, err
	}

	order, _, err := r.projectRefunds(ctx, tx, log, p, now)
	if err != nil {
		return nil, err
	}
	res.Order = order
	return res, nil
}

// RecomputeRefunded sets AmountRefundedMinor to the sum of succeeded refunds.
// It never increments, so replays cannot double count.
func RecomputeRefunded(ctx context.Context, tx domain.Store, p *domain.Payment) error {
	refunds, err := tx.Refunds().ListByPayment(ctx, p.TenantID, p.ID)
	if err != nil {
		return err
	}
	var total int64
	for _, rf := range refunds {
		if rf.Status == domain.RefundSucceeded {
			total += rf.AmountMinor
		}
	}
	p.AmountRefundedMinor = total
	return nil
}

// Refundable is the captured amount not yet covered by succeeded or pending
// refunds.
func Refundable(p *domain.Payment, refunds []*domain.Refund) int64 {
	var reserved int64
	for _, rf := range refunds {
		if rf.Status == domain.RefundSucceeded || rf.Status == domain.RefundPending {
			reserved += rf.AmountMinor
		}
	}
	return p.AmountCapturedMinor - reserved
}
