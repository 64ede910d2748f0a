package domain

import "time"

type PaymentStatus string

const (
	PaymentCreated        PaymentStatus = "created"
	PaymentRequiresAction PaymentStatus = "requires_action"
	PaymentProcessing     PaymentStatus = "processing"
	PaymentAuthorized     PaymentStatus = "authorized"
	PaymentCaptured       PaymentStatus = "captured"
	PaymentFailed         PaymentStatus = "failed"
	PaymentCancelled      PaymentStatus = "cancelled"
)

var paymentStatusRank = map[PaymentStatus]int{
	PaymentCreated:        0,
	PaymentRequiresAction: 1,
	PaymentProcessing:     2,
	PaymentAuthorized:     3,
	PaymentCaptured:       4,
	PaymentFailed:         4,
	PaymentCancelled:      4,
}

func (s PaymentStatus) Valid() bool {
	_, ok := paymentStatusRank[s]
	return ok
}

// Rank orders the lifecycle. A transition to a lower rank is a regression.
func (s PaymentStatus) Rank() int {
	if r, ok := paymentStatusRank[s]; ok {
		return r
	}
	return -1
}

// IsTerminal reports whether no further transition is permitted.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentCaptured || s == PaymentFailed || s == PaymentCancelled
}

type Environment string

const (
	EnvironmentTest Environment = "test"
	EnvironmentLive Environment = "live"
)

type MethodKind string

const (
	MethodCard       MethodKind = "card"
	MethodUPI        MethodKind = "upi"
	MethodNetBanking MethodKind = "netbanking"
	MethodWallet     MethodKind = "wallet"
)

// UPIDetails always carries masked identifiers.
type UPIDetails struct {
	PayerVPA   string `json:"payerVpa,omitempty"`
	UTR        string `json:"utr,omitempty"`
	Instrument string `json:"instrument,omitempty"`
}

type Payment struct {
	ID                    string
	TenantID              string
	OrderID               string
	Provider              string
	Environment           Environment
	MerchantTransactionID string
	ProviderPaymentID     string
	ProviderTransactionID string
	ProviderReferenceID   string
	Status                PaymentStatus
	ProviderStatus        string
	Currency              string
	AmountMinor           int64
	AmountAuthorizedMinor int64
	AmountCapturedMinor   int64
	AmountRefundedMinor   int64
	MethodKind            MethodKind
	UPI                   UPIDetails
	RedirectURL           string
	SuccessURL            string
	FailureURL            string
	ExpiresAt             *time.Time
	FailureCode           string
	FailureMessage        string
	ProviderData          map[string]any
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// LatestPayment picks the most authoritative attempt: most recent UpdatedAt,
// then CreatedAt, then ID for a stable result.
func LatestPayment(payments []*Payment) *Payment {
	var latest *Payment
	for _, p := range payments {
		if latest == nil || newerThan(p, latest) {
			latest = p
		}
	}
	return latest
}

func newerThan(a, b *Payment) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
