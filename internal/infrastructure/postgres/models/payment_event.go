package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentEventModel struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	TenantID  string `gorm:"type:varchar(64);not null;index:idx_payment_events_tenant_payment"`
	PaymentID string `gorm:"type:varchar(64);index:idx_payment_events_tenant_payment"`
	OrderID   string `gorm:"type:varchar(64)"`
	Provider  string `gorm:"type:varchar(32)"`
	Type      string `gorm:"type:varchar(64);not null"`
	Payload   datatypes.JSON
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
}

func (PaymentEventModel) TableName() string {
	return "payment_events"
}
