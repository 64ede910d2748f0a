package domain

import "time"

const (
	EventPaymentCreated          = "payment.created"
	EventPaymentTransitioned     = "payment.transitioned"
	EventPaymentNoTransition     = "payment.no_transition"
	EventPaymentCaptured         = "payment.captured"
	EventPaymentFailed           = "payment.failed"
	EventPaymentCancelled        = "payment.cancelled"
	EventPaymentProcessingMark   = "payment.processing_marker"
	EventPaymentCreateFailed     = "payment.create_failed"
	EventWebhookProcessed        = "webhook.processed"
	EventWebhookReplayed         = "webhook.replayed"
	EventWebhookSignatureFail    = "webhook.signature_failed"
	EventRefundCreated           = "refund.created"
	EventRefundSucceeded         = "refund.succeeded"
	EventRefundFailed            = "refund.failed"
	EventPollRescheduled         = "poll.rescheduled"
	EventPollExpired             = "poll.expired"
	EventIdempotencyInvalidate   = "idempotency.invalidated"
	EventOrderProjected          = "order.projected"
	EventPaymentDuplicateCapture = "payment.duplicate_capture"
	EventRefundNoTransition      = "refund.no_transition"
)

// PaymentEvent is an append-only audit record. It is never read to decide
// current state.
type PaymentEvent struct {
	ID        string
	TenantID  string
	PaymentID string
	OrderID   string
	Provider  string
	Type      string
	Payload   map[string]any
	CreatedAt time.Time
}

const (
	SecurityWebhookAuthFailed = "webhook.authorization_failed"
)

// SecurityEvent goes to a separate channel from audit events.
type SecurityEvent struct {
	TenantID  string
	Provider  string
	Type      string
	Reason    string
	DedupeKey string
	Remote    string
	CreatedAt time.Time
}
