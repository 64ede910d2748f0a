package models

// All lists every table model for AutoMigrate.
func All() []any {
	return []any{
		&OrderModel{},
		&PaymentModel{},
		&RefundModel{},
		&PaymentEventModel{},
		&WebhookInboxModel{},
		&PollingJobModel{},
		&IdempotencyKeyModel{},
		&ProviderConfigModel{},
	}
}
