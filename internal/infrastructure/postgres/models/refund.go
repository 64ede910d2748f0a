package models

import "time"

type RefundModel struct {
	ID               string    `gorm:"primaryKey;type:uuid"`
	TenantID         string    `gorm:"type:varchar(64);not null;index:idx_refunds_tenant_payment"`
	PaymentID        string    `gorm:"type:uuid;not null;index:idx_refunds_tenant_payment"`
	OrderID          string    `gorm:"type:varchar(64);not null"`
	Provider         string    `gorm:"type:varchar(32);not null;uniqueIndex:uq_refunds_provider_rid,where:provider_refund_id IS NOT NULL;uniqueIndex:uq_refunds_provider_mrid"`
	ProviderRefundID *string   `gorm:"type:varchar(128);uniqueIndex:uq_refunds_provider_rid,where:provider_refund_id IS NOT NULL"`
	MerchantRefundID string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_refunds_provider_mrid"`
	AmountMinor      int64     `gorm:"not null"`
	Currency         string    `gorm:"type:varchar(3);not null"`
	Status           string    `gorm:"type:varchar(16);not null;index:idx_refunds_status_created"`
	UTR              string    `gorm:"column:utr;type:varchar(64)"`
	Reason           string    `gorm:"type:text"`
	FailureCode      string    `gorm:"type:varchar(64)"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime:false;index:idx_refunds_status_created"`
	UpdatedAt        time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (RefundModel) TableName() string {
	return "refunds"
}
