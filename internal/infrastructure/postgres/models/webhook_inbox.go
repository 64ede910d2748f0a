package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookInboxModel struct {
	ID                string `gorm:"primaryKey;type:uuid"`
	TenantID          string `gorm:"type:varchar(64);not null"`
	Provider          string `gorm:"type:varchar(32);not null;uniqueIndex:uq_webhook_inbox_dedupe"`
	DedupeKey         string `gorm:"type:varchar(255);not null;uniqueIndex:uq_webhook_inbox_dedupe"`
	Headers           datatypes.JSON
	Body              string `gorm:"type:text"`
	Verified          bool   `gorm:"not null;default:false"`
	VerificationError string `gorm:"type:text"`
	ClaimedAt         *time.Time
	ProcessedAt       *time.Time
	ReceivedAt        time.Time `gorm:"not null"`
}

func (WebhookInboxModel) TableName() string {
	return "webhook_inbox"
}
