package models

import "time"

type OrderModel struct {
	ID              string `gorm:"primaryKey;type:varchar(64)"`
	TenantID        string `gorm:"type:varchar(64);not null;index:idx_orders_tenant"`
	Currency        string `gorm:"type:varchar(3);not null"`
	SubtotalMinor   int64  `gorm:"not null;default:0"`
	TaxMinor        int64  `gorm:"not null;default:0"`
	ShippingMinor   int64  `gorm:"not null;default:0"`
	AmountMinor     int64  `gorm:"not null"`
	Status          string `gorm:"type:varchar(32);not null"`
	PaymentStatus   string `gorm:"type:varchar(32);not null"`
	PaymentMethod   string `gorm:"type:varchar(32)"`
	PaymentFailedAt *time.Time
	PaidAt          *time.Time
	CustomerEmail   string
	CustomerPhone   string
	CreatedAt       time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (OrderModel) TableName() string {
	return "orders"
}
