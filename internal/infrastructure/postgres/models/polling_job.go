package models

import "time"

type PollingJobModel struct {
	ID                    string    `gorm:"primaryKey;type:uuid"`
	TenantID              string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_polling_jobs_tenant_payment"`
	PaymentID             string    `gorm:"type:uuid;not null;uniqueIndex:uq_polling_jobs_tenant_payment"`
	Provider              string    `gorm:"type:varchar(32);not null"`
	MerchantTransactionID string    `gorm:"type:varchar(64);not null"`
	Status                string    `gorm:"type:varchar(16);not null;index:idx_polling_jobs_due"`
	Attempt               int       `gorm:"not null;default:0"`
	NextPollAt            time.Time `gorm:"not null;index:idx_polling_jobs_due"`
	ExpireAt              time.Time `gorm:"not null"`
	LastProviderStatus    string    `gorm:"type:varchar(64)"`
	LastResponseCode      string    `gorm:"type:varchar(64)"`
	LastError             string    `gorm:"type:text"`
	CreatedAt             time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt             time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (PollingJobModel) TableName() string {
	return "polling_jobs"
}
