package models

import "time"

type IdempotencyKeyModel struct {
	ID           string `gorm:"primaryKey;type:uuid"`
	TenantID     string `gorm:"type:varchar(64);not null;uniqueIndex:uq_idempotency_keys_scope"`
	Scope        string `gorm:"type:varchar(64);not null;uniqueIndex:uq_idempotency_keys_scope"`
	Key          string `gorm:"column:idempotency_key;type:varchar(255);not null;uniqueIndex:uq_idempotency_keys_scope"`
	RequestHash  string `gorm:"type:varchar(64);not null"`
	Status       string `gorm:"type:varchar(16);not null"`
	ResponseBody []byte
	PaymentID    string `gorm:"type:varchar(64)"`
	ExpiresAt    *time.Time
	CreatedAt    time.Time `gorm:"not null;autoCreateTime:false"`
	CompletedAt  *time.Time
}

func (IdempotencyKeyModel) TableName() string {
	return "idempotency_keys"
}
