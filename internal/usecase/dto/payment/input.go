package paymentdto

import (
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/shopspring/decimal"
)

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// CreatePaymentInput carries the amount in major units; it is converted to
// minor units using the currency exponent.
type CreatePaymentInput struct {
	OrderID    string             `json:"orderId"`
	Amount     decimal.Decimal    `json:"amount"`
	Currency   string             `json:"currency"`
	Customer   domain.Customer    `json:"customer"`
	Billing    *Address           `json:"billing,omitempty"`
	SuccessURL string             `json:"successUrl,omitempty"`
	FailureURL string             `json:"failureUrl,omitempty"`
	Provider   string             `json:"provider,omitempty"`
	MethodKind domain.MethodKind  `json:"methodKind,omitempty"`
	Flow       domain.PaymentFlow `json:"flow,omitempty"`
}

type TokenURLInput struct {
	OrderID  string             `json:"orderId"`
	Amount   decimal.Decimal    `json:"amount"`
	Currency string             `json:"currency"`
	Customer domain.Customer    `json:"customer"`
	Provider string             `json:"provider,omitempty"`
	Flow     domain.PaymentFlow `json:"flow,omitempty"`
}

type CancelPaymentInput struct {
	PaymentID string `json:"paymentId"`
	Reason    string `json:"reason,omitempty"`
}

// CreateRefundInput refunds the whole refundable balance when Amount is zero.
type CreateRefundInput struct {
	PaymentID string          `json:"paymentId"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
}
