package models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentModel carries the two money-safety constraints as database indexes:
// one captured UPI payment per order, and unique provider payment ids.
type PaymentModel struct {
	ID                    string  `gorm:"primaryKey;type:uuid"`
	TenantID              string  `gorm:"type:varchar(64);not null;index:idx_payments_tenant_order;uniqueIndex:uq_payments_captured_upi,where:status = 'captured' AND method_kind = 'upi'"`
	OrderID               string  `gorm:"type:varchar(64);not null;index:idx_payments_tenant_order;uniqueIndex:uq_payments_captured_upi,where:status = 'captured' AND method_kind = 'upi'"`
	Provider              string  `gorm:"type:varchar(32);not null;uniqueIndex:uq_payments_provider_pid,where:provider_payment_id IS NOT NULL;uniqueIndex:uq_payments_provider_mtid"`
	Environment           string  `gorm:"type:varchar(8);not null"`
	MerchantTransactionID string  `gorm:"type:varchar(64);not null;uniqueIndex:uq_payments_provider_mtid"`
	ProviderPaymentID     *string `gorm:"type:varchar(128);uniqueIndex:uq_payments_provider_pid,where:provider_payment_id IS NOT NULL"`
	ProviderTransactionID string  `gorm:"type:varchar(128)"`
	ProviderReferenceID   string  `gorm:"type:varchar(128)"`
	Status                string  `gorm:"type:varchar(32);not null;index"`
	ProviderStatus        string  `gorm:"type:varchar(64)"`
	Currency              string  `gorm:"type:varchar(3);not null"`
	AmountMinor           int64   `gorm:"not null"`
	AmountAuthorizedMinor int64   `gorm:"not null;default:0"`
	AmountCapturedMinor   int64   `gorm:"not null;default:0"`
	AmountRefundedMinor   int64   `gorm:"not null;default:0"`
	MethodKind            string  `gorm:"type:varchar(16);not null"`
	UPIPayerVPA           string  `gorm:"column:upi_payer_vpa;type:varchar(128)"`
	UPIUTR                string  `gorm:"column:upi_utr;type:varchar(64)"`
	UPIInstrument         string  `gorm:"column:upi_instrument;type:varchar(32)"`
	RedirectURL           string  `gorm:"type:text"`
	SuccessURL            string  `gorm:"type:text"`
	FailureURL            string  `gorm:"type:text"`
	ExpiresAt             *time.Time
	FailureCode           string `gorm:"type:varchar(64)"`
	FailureMessage        string `gorm:"type:text"`
	ProviderData          datatypes.JSON
	CreatedAt             time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt             time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (PaymentModel) TableName() string {
	return "payments"
}
