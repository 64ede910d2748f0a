package publisher

import "time"

type PaymentEventMessage struct {
	EventID   string         `json:"event_id"`
	TenantID  string         `json:"tenant_id"`
	PaymentID string         `json:"payment_id,omitempty"`
	OrderID   string         `json:"order_id,omitempty"`
	Provider  string         `json:"provider,omitempty"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type SecurityEventMessage struct {
	TenantID  string    `json:"tenant_id"`
	Provider  string    `json:"provider"`
	Type      string    `json:"type"`
	Reason    string    `json:"reason"`
	DedupeKey string    `json:"dedupe_key,omitempty"`
	Remote    string    `json:"remote,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
