package reconcile

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
)

// Order status table. paymentStatus=paid is never regressed and a cancelled
// order keeps its status.
//
//	attempt created                 status unchanged         paymentStatus pending|failed -> processing
//	verified capture                pending -> confirmed     -> paid, paidAt set
//	verified capture, underpaid     unchanged                unchanged
//	verified failure                unchanged                -> failed, paymentFailedAt set
//	cancel                          unchanged                processing -> pending when no other live attempt
//	refund succeeded, partial       -> partially_refunded    paid
//	refund succeeded, full          -> refunded              paid

// ProjectAttemptCreated marks the order as having a live attempt. The caller
// holds the order row lock.
func ProjectAttemptCreated(order *domain.Order, now time.Time) bool {
	if order.IsPaid() {
		return false
	}
	if order.PaymentStatus == domain.OrderPaymentPending || order.PaymentStatus == domain.OrderPaymentFailed {
		order.PaymentStatus = domain.OrderPaymentProcessing
		order.UpdatedAt = now
		return true
	}
	return false
}

func (r *Reconciler) projectPayment(ctx context.Context, tx domain.Store, log *eventLog, p *domain.Payment, verified bool, now time.Time) (*domain.Order, bool, error) {
	order, err := tx.Orders().GetForUpdate(ctx, p.TenantID, p.OrderID)
	if err != nil {
		return nil, false, err
	}
	before := *order

	switch p.Status {
	case domain.PaymentCaptured:
		if !verified || order.IsPaid() {
			break
		}
		if p.AmountCapturedMinor < p.AmountMinor {
			r.logger.Warn("underpaid capture, order left unpaid",
				"payment_id", p.ID, "order_id", p.OrderID,
				"captured_minor", p.AmountCapturedMinor, "amount_minor", p.AmountMinor)
			break
		}
		order.PaymentStatus = domain.OrderPaymentPaid
		order.PaidAt = &now
		order.PaymentMethod = string(p.MethodKind)
		if order.Status == domain.OrderPending {
			order.Status = domain.OrderConfirmed
		}
	case domain.PaymentFailed:
		if !verified || order.IsPaid() {
			break
		}
		order.PaymentStatus = domain.OrderPaymentFailed
		order.PaymentFailedAt = &now
	case domain.PaymentCancelled:
		if order.PaymentStatus != domain.OrderPaymentProcessing {
			break
		}
		live, err := hasOtherLiveAttempt(ctx, tx, p)
		if err != nil {
			return nil, false, err
		}
		if !live {
			order.PaymentStatus = domain.OrderPaymentPending
		}
	}

	changed, err := r.saveOrder(ctx, tx, log, &before, order, p.ID, now)
	if err != nil {
		return nil, false, err
	}
	if changed && order.IsPaid() && !before.IsPaid() {
		r.metrics.RecordOrderPaid(order.TenantID, order.Currency)
	}
	return order, changed, nil
}

func hasOtherLiveAttempt(ctx context.Context, tx domain.Store, p *domain.Payment) (bool, error) {
	payments, err := tx.Payments().ListByOrder(ctx, p.TenantID, p.OrderID)
	if err != nil {
		return false, err
	}
	for _, other := range payments {
		if other.ID != p.ID && !other.Status.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

// projectRefunds derives the order status from captured and refunded totals
// across every captured attempt of the order.
func (r *Reconciler) projectRefunds(ctx context.Context, tx domain.Store, log *eventLog, p *domain.Payment, now time.Time) (*domain.Order, bool, error) {
	order, err := tx.Orders().GetForUpdate(ctx, p.TenantID, p.OrderID)
	if err != nil {
		return nil, false, err
	}
	before := *order

	payments, err := tx.Payments().ListByOrder(ctx, p.TenantID, p.OrderID)
	if err != nil {
		return nil, false, err
	}
	var captured, refunded int64
	for _, other := range payments {
		if other.ID == p.ID {
			other = p
		}
		if other.Status != domain.PaymentCaptured {
			continue
		}
		captured += other.AmountCapturedMinor
		refunded += other.AmountRefundedMinor
	}

	if refunded > 0 && order.Status != domain.OrderCancelled {
		if refunded >= captured {
			order.Status = domain.OrderRefunded
		} else {
			order.Status = domain.OrderPartiallyRefunded
		}
	}

	changed, err := r.saveOrder(ctx, tx, log, &before, order, p.ID, now)
	return order, changed, err
}

func (r *Reconciler) saveOrder(ctx context.Context, tx domain.Store, log *eventLog, before, order *domain.Order, paymentID string, now time.Time) (bool, error) {
	if before.Status == order.Status && before.PaymentStatus == order.PaymentStatus {
		return false, nil
	}
	order.UpdatedAt = now
	if err := tx.Orders().Update(ctx, order); err != nil {
		return false, err
	}
	return true, log.add(ctx, tx, domain.PaymentEvent{
		TenantID:  order.TenantID,
		PaymentID: paymentID,
		OrderID:   order.ID,
		Type:      domain.EventOrderProjected,
		Payload: map[string]any{
			"status_from":         string(before.Status),
			"status_to":           string(order.Status),
			"payment_status_from": string(before.PaymentStatus),
			"payment_status_to":   string(order.PaymentStatus),
		},
		CreatedAt: now,
	})
}
