package notifier

import "time"

type CallbackPayload struct {
	EventID               string    `json:"event_id"`
	TenantID              string    `json:"tenant_id"`
	OrderID               string    `json:"order_id"`
	PaymentID             string    `json:"payment_id,omitempty"`
	Status                string    `json:"status"`
	PaymentStatus         string    `json:"payment_status"`
	PreviousStatus        string    `json:"previous_status"`
	PreviousPaymentStatus string    `json:"previous_payment_status"`
	ChangedAt             time.Time `json:"changed_at"`
}
