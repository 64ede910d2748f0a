package domain

import "time"

type OrderStatus string

const (
	OrderPending           OrderStatus = "pending"
	OrderConfirmed         OrderStatus = "confirmed"
	OrderPaid              OrderStatus = "paid"
	OrderPartiallyRefunded OrderStatus = "partially_refunded"
	OrderRefunded          OrderStatus = "refunded"
	OrderCancelled         OrderStatus = "cancelled"
)

type OrderPaymentStatus string

const (
	OrderPaymentPending    OrderPaymentStatus = "pending"
	OrderPaymentProcessing OrderPaymentStatus = "processing"
	OrderPaymentPaid       OrderPaymentStatus = "paid"
	OrderPaymentFailed     OrderPaymentStatus = "failed"
)

// Order is owned by the storefront. This service only reads it and mutates
// the status columns through the reconcile projector.
type Order struct {
	ID              string
	TenantID        string
	Currency        string
	SubtotalMinor   int64
	TaxMinor        int64
	ShippingMinor   int64
	AmountMinor     int64
	Status          OrderStatus
	PaymentStatus   OrderPaymentStatus
	PaymentMethod   string
	PaymentFailedAt *time.Time
	PaidAt          *time.Time
	CustomerEmail   string
	CustomerPhone   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsPaid reports whether the order already has an authoritative capture.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == OrderPaymentPaid
}
