package paymentdto

import (
	"encoding/json"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
)

// IdempotentOutput is the stored response of an idempotent operation. Body is
// replayed byte for byte on a repeated request.
type IdempotentOutput struct {
	Body      []byte
	PaymentID string
	Replayed  bool
}

func (o *IdempotentOutput) Decode(v any) error {
	return json.Unmarshal(o.Body, v)
}

type PaymentOutput struct {
	PaymentID             string               `json:"paymentId"`
	OrderID               string               `json:"orderId"`
	Provider              string               `json:"provider"`
	MerchantTransactionID string               `json:"merchantTransactionId"`
	Status                domain.PaymentStatus `json:"status"`
	AmountMinor           int64                `json:"amountMinor"`
	Amount                string               `json:"amount"`
	Currency              string               `json:"currency"`
	RedirectURL           string               `json:"redirectUrl,omitempty"`
	IntentURL             string               `json:"intentUrl,omitempty"`
	QRData                string               `json:"qrData,omitempty"`
	ExpiresAt             *time.Time           `json:"expiresAt,omitempty"`
}

type TokenURLOutput struct {
	PaymentID             string     `json:"paymentId"`
	OrderID               string     `json:"orderId"`
	MerchantTransactionID string     `json:"merchantTransactionId"`
	TokenURL              string     `json:"tokenUrl"`
	IntentURL             string     `json:"intentUrl,omitempty"`
	QRData                string     `json:"qrData,omitempty"`
	ExpiresAt             *time.Time `json:"expiresAt,omitempty"`
}

type CancelOutput struct {
	PaymentID string               `json:"paymentId"`
	Status    domain.PaymentStatus `json:"status"`
	Cancelled bool                 `json:"cancelled"`
}

type RefundOutput struct {
	RefundID         string              `json:"refundId"`
	PaymentID        string              `json:"paymentId"`
	MerchantRefundID string              `json:"merchantRefundId"`
	ProviderRefundID string              `json:"providerRefundId,omitempty"`
	Status           domain.RefundStatus `json:"status"`
	AmountMinor      int64               `json:"amountMinor"`
	Amount           string              `json:"amount"`
	Currency         string              `json:"currency"`
	UTR              string              `json:"utr,omitempty"`
	FailureCode      string              `json:"failureCode,omitempty"`
}

type PaymentStatusOutput struct {
	PaymentID      string               `json:"paymentId"`
	OrderID        string               `json:"orderId"`
	Provider       string               `json:"provider"`
	Status         domain.PaymentStatus `json:"status"`
	ProviderStatus string               `json:"providerStatus,omitempty"`
	MethodKind     domain.MethodKind    `json:"methodKind,omitempty"`
	UPI            *domain.UPIDetails   `json:"upi,omitempty"`
	FailureCode    string               `json:"failureCode,omitempty"`
	FailureMessage string               `json:"failureMessage,omitempty"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

type AmountBreakdown struct {
	Currency      string `json:"currency"`
	SubtotalMinor int64  `json:"subtotalMinor"`
	TaxMinor      int64  `json:"taxMinor"`
	ShippingMinor int64  `json:"shippingMinor"`
	TotalMinor    int64  `json:"totalMinor"`
	PaidMinor     int64  `json:"paidMinor"`
	RefundedMinor int64  `json:"refundedMinor"`
	Subtotal      string `json:"subtotal"`
	Tax           string `json:"tax"`
	Shipping      string `json:"shipping"`
	Total         string `json:"total"`
	Paid          string `json:"paid"`
	Refunded      string `json:"refunded"`
}

type PollProgress struct {
	Status             domain.PollingJobStatus `json:"status"`
	Attempt            int                     `json:"attempt"`
	NextPollAt         time.Time               `json:"nextPollAt"`
	ExpireAt           time.Time               `json:"expireAt"`
	LastProviderStatus string                  `json:"lastProviderStatus,omitempty"`
	LastResponseCode   string                  `json:"lastResponseCode,omitempty"`
	LastError          string                  `json:"lastError,omitempty"`
}

type OrderView struct {
	ID              string                    `json:"id"`
	Status          domain.OrderStatus        `json:"status"`
	PaymentStatus   domain.OrderPaymentStatus `json:"paymentStatus"`
	PaymentMethod   string                    `json:"paymentMethod,omitempty"`
	PaidAt          *time.Time                `json:"paidAt,omitempty"`
	PaymentFailedAt *time.Time                `json:"paymentFailedAt,omitempty"`
}

type OrderInfoOutput struct {
	Order         OrderView            `json:"order"`
	LatestPayment *PaymentStatusOutput `json:"latestPayment,omitempty"`
	Attempts      int                  `json:"attempts"`
	Poll          *PollProgress        `json:"poll,omitempty"`
	Amounts       AmountBreakdown      `json:"amounts"`
}
