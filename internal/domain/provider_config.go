package domain

import "time"

// ProviderConfig is one tenant's credentials for one gateway.
type ProviderConfig struct {
	ID              string
	TenantID        string
	Provider        string
	Environment     Environment
	Enabled         bool
	IsDefault       bool
	MerchantID      string
	SaltKey         string
	SaltIndex       string
	BaseURL         string
	WebhookUsername string
	WebhookPassword string
	CallbackURL     string
	ReturnURL       string
	MaxRetries      int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
