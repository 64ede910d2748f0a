package domain

import "time"

type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundSucceeded RefundStatus = "succeeded"
	RefundFailed    RefundStatus = "failed"
)

func (s RefundStatus) IsTerminal() bool {
	return s == RefundSucceeded || s == RefundFailed
}

type Refund struct {
	ID               string
	TenantID         string
	PaymentID        string
	OrderID          string
	Provider         string
	ProviderRefundID string
	MerchantRefundID string
	AmountMinor      int64
	Currency         string
	Status           RefundStatus
	UTR              string
	Reason           string
	FailureCode      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
