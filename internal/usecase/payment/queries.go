package payment

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	paymentdto "github.com/LavaJover/shvark-payments-service/internal/usecase/dto/payment"
)

func (uc *DefaultPaymentUsecase) GetPaymentStatus(ctx context.Context, tenantID, paymentID string) (*paymentdto.PaymentStatusOutput, error) {
	p, err := uc.store.Payments().Get(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	return toStatusOutput(p), nil
}

// GetOrderInfo is read only: the order, its most authoritative attempt and the
// polling progress of that attempt.
func (uc *DefaultPaymentUsecase) GetOrderInfo(ctx context.Context, tenantID, orderID string) (*paymentdto.OrderInfoOutput, error) {
	order, err := uc.store.Orders().Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	payments, err := uc.store.Payments().ListByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	out := &paymentdto.OrderInfoOutput{
		Order: paymentdto.OrderView{
			ID:              order.ID,
			Status:          order.Status,
			PaymentStatus:   order.PaymentStatus,
			PaymentMethod:   order.PaymentMethod,
			PaidAt:          order.PaidAt,
			PaymentFailedAt: order.PaymentFailedAt,
		},
		Attempts: len(payments),
	}

	var paid, refunded int64
	for _, p := range payments {
		if p.Status == domain.PaymentCaptured {
			paid += p.AmountCapturedMinor
			refunded += p.AmountRefundedMinor
		}
	}
	out.Amounts = breakdown(order, paid, refunded)

	latest := domain.LatestPayment(payments)
	if latest == nil {
		return out, nil
	}
	out.LatestPayment = toStatusOutput(latest)

	job, err := uc.store.PollingJobs().GetByPayment(ctx, tenantID, latest.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		out.Poll = &paymentdto.PollProgress{
			Status:             job.Status,
			Attempt:            job.Attempt,
			NextPollAt:         job.NextPollAt,
			ExpireAt:           job.ExpireAt,
			LastProviderStatus: job.LastProviderStatus,
			LastResponseCode:   job.LastResponseCode,
			LastError:          job.LastError,
		}
	}
	return out, nil
}

func breakdown(order *domain.Order, paid, refunded int64) paymentdto.AmountBreakdown {
	c := order.Currency
	return paymentdto.AmountBreakdown{
		Currency:      c,
		SubtotalMinor: order.SubtotalMinor,
		TaxMinor:      order.TaxMinor,
		ShippingMinor: order.ShippingMinor,
		TotalMinor:    order.AmountMinor,
		PaidMinor:     paid,
		RefundedMinor: refunded,
		Subtotal:      domain.FormatMinor(order.SubtotalMinor, c),
		Tax:           domain.FormatMinor(order.TaxMinor, c),
		Shipping:      domain.FormatMinor(order.ShippingMinor, c),
		Total:         domain.FormatMinor(order.AmountMinor, c),
		Paid:          domain.FormatMinor(paid, c),
		Refunded:      domain.FormatMinor(refunded, c),
	}
}

func toStatusOutput(p *domain.Payment) *paymentdto.PaymentStatusOutput {
	out := &paymentdto.PaymentStatusOutput{
		PaymentID:      p.ID,
		OrderID:        p.OrderID,
		Provider:       p.Provider,
		Status:         p.Status,
		ProviderStatus: p.ProviderStatus,
		MethodKind:     p.MethodKind,
		FailureCode:    p.FailureCode,
		FailureMessage: p.FailureMessage,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.UPI != (domain.UPIDetails{}) {
		upi := p.UPI
		out.UPI = &upi
	}
	return out
}
