package domain

import "time"

// WebhookInboxEntry is both the dedupe record and the forensic copy of an
// inbound callback. Unique on (provider, dedupe key).
type WebhookInboxEntry struct {
	ID                string
	TenantID          string
	Provider          string
	DedupeKey         string
	Headers           map[string]string
	Body              string
	Verified          bool
	VerificationError string
	// ClaimedAt is set while one delivery is being dispatched.
	ClaimedAt   *time.Time
	ProcessedAt *time.Time
	ReceivedAt  time.Time
}

type WebhookEventKind string

const (
	WebhookPayment WebhookEventKind = "payment"
	WebhookRefund  WebhookEventKind = "refund"
)

// WebhookEvent is the normalized, already-masked content of a verified webhook.
type WebhookEvent struct {
	Kind                  WebhookEventKind
	Type                  string
	MerchantTransactionID string
	MerchantRefundID      string
	Payment               *ProviderStatus
	Refund                *ProviderRefundResult
}

type WebhookVerification struct {
	Verified bool
	// AuthFailure marks a hash or credential mismatch, as opposed to a
	// payload that could not be checked at all.
	AuthFailure bool
	Reason      string
	Event       *WebhookEvent
}
