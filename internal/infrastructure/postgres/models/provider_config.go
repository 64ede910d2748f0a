package models

import "time"

type ProviderConfigModel struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	TenantID        string `gorm:"type:varchar(64);not null;uniqueIndex:uq_provider_configs_tenant_provider"`
	Provider        string `gorm:"type:varchar(32);not null;uniqueIndex:uq_provider_configs_tenant_provider"`
	Environment     string `gorm:"type:varchar(8);not null"`
	Enabled         bool   `gorm:"not null;default:true"`
	IsDefault       bool   `gorm:"not null;default:false"`
	MerchantID      string `gorm:"type:varchar(64)"`
	SaltKey         string `gorm:"type:varchar(128)"`
	SaltIndex       string `gorm:"type:varchar(8)"`
	BaseURL         string `gorm:"type:text"`
	WebhookUsername string `gorm:"type:varchar(128)"`
	WebhookPassword string `gorm:"type:varchar(128)"`
	CallbackURL     string `gorm:"type:text"`
	ReturnURL       string `gorm:"type:text"`
	MaxRetries      int    `gorm:"not null;default:3"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ProviderConfigModel) TableName() string {
	return "provider_configs"
}
