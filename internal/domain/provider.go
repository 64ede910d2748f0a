package domain

import (
	"context"
	"net/http"
	"time"
)

// Adapter wraps one gateway behind the capability set the reconciliation
// engine relies on. Implementations normalize statuses onto PaymentStatus and
// mask VPA/UTR values before returning anything.
type Adapter interface {
	Name() string
	CreatePayment(ctx context.Context, req ProviderPaymentRequest) (*ProviderPaymentResult, error)
	// WebhookDedupeKey extracts the redelivery key without verifying the payload.
	WebhookDedupeKey(headers http.Header, body []byte) (string, error)
	VerifyWebhook(ctx context.Context, headers http.Header, body []byte) (*WebhookVerification, error)
	GetStatus(ctx context.Context, merchantTransactionID string) (*ProviderStatus, error)
	CreateRefund(ctx context.Context, req ProviderRefundRequest) (*ProviderRefundResult, error)
	GetRefundStatus(ctx context.Context, merchantRefundID string) (*ProviderRefundResult, error)
	HealthCheck(ctx context.Context) error
}

// AdapterFactory builds an adapter bound to one tenant's provider configuration.
type AdapterFactory interface {
	Adapter(cfg *ProviderConfig) (Adapter, error)
}

type PaymentFlow string

const (
	FlowRedirect PaymentFlow = "redirect"
	FlowIntent   PaymentFlow = "intent"
	FlowQR       PaymentFlow = "qr"
)

type Customer struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type ProviderPaymentRequest struct {
	MerchantTransactionID string
	OrderID               string
	AmountMinor           int64
	Currency              string
	Customer              Customer
	MethodKind            MethodKind
	Flow                  PaymentFlow
	RedirectURL           string
	CallbackURL           string
}

type ProviderPaymentResult struct {
	ProviderPaymentID   string
	ProviderReferenceID string
	Status              PaymentStatus
	ProviderStatus      string
	RedirectURL         string
	IntentURL           string
	QRData              string
	ExpiresAt           *time.Time
	Raw                 map[string]any
}

// ProviderStatus is the answer to a status query or the payment part of a
// webhook. Definitive is false while the gateway still reports pending.
type ProviderStatus struct {
	Status                PaymentStatus
	Definitive            bool
	ProviderStatus        string
	ResponseCode          string
	ProviderPaymentID     string
	ProviderTransactionID string
	AmountMinor           int64
	MethodKind            MethodKind
	UPI                   UPIDetails
	FailureCode           string
	FailureMessage        string
	Raw                   map[string]any
}

type ProviderRefundRequest struct {
	MerchantRefundID              string
	OriginalMerchantTransactionID string
	ProviderPaymentID             string
	AmountMinor                   int64
	Currency                      string
	CallbackURL                   string
}

type ProviderRefundResult struct {
	MerchantRefundID string
	ProviderRefundID string
	Status           RefundStatus
	Definitive       bool
	ResponseCode     string
	UTR              string
	FailureCode      string
	Raw              map[string]any
}
