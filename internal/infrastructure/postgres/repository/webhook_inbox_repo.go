package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultWebhookInboxRepository struct {
	DB *gorm.DB
}

func NewDefaultWebhookInboxRepository(db *gorm.DB) *DefaultWebhookInboxRepository {
	return &DefaultWebhookInboxRepository{DB: db}
}

func (r *DefaultWebhookInboxRepository) FindByDedupeKey(ctx context.Context, provider, dedupeKey string) (*domain.WebhookInboxEntry, error) {
	var model models.WebhookInboxModel
	if err := r.DB.WithContext(ctx).
		First(&model, "provider = ? AND dedupe_key = ?", provider, dedupeKey).Error; err != nil {
		return nil, translate(err, domain.ErrNotFound)
	}
	return mappers.ToDomainWebhookInbox(&model), nil
}

func (r *DefaultWebhookInboxRepository) Insert(ctx context.Context, entry *domain.WebhookInboxEntry) error {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(mappers.ToGORMWebhookInbox(entry))
	if res.Error != nil {
		return translate(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

func (r *DefaultWebhookInboxRepository) Claim(ctx context.Context, id string, at, staleBefore time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.WebhookInboxModel{}).
		Where("id = ? AND processed_at IS NULL AND (claimed_at IS NULL OR claimed_at < ?)", id, staleBefore).
		Update("claimed_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *DefaultWebhookInboxRepository) ReleaseClaim(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).
		Model(&models.WebhookInboxModel{}).
		Where("id = ? AND processed_at IS NULL", id).
		Update("claimed_at", nil).Error
}

func (r *DefaultWebhookInboxRepository) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	return r.DB.WithContext(ctx).
		Model(&models.WebhookInboxModel{}).
		Where("id = ?", id).
		Update("processed_at", at).Error
}
