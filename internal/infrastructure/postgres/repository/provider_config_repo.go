package repository

import (
	"context"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultProviderConfigRepository struct {
	DB *gorm.DB
}

func NewDefaultProviderConfigRepository(db *gorm.DB) *DefaultProviderConfigRepository {
	return &DefaultProviderConfigRepository{DB: db}
}

func (r *DefaultProviderConfigRepository) GetEnabled(ctx context.Context, tenantID, provider string) (*domain.ProviderConfig, error) {
	var model models.ProviderConfigModel
	if err := r.DB.WithContext(ctx).
		First(&model, "tenant_id = ? AND provider = ? AND enabled = ?", tenantID, provider, true).Error; err != nil {
		return nil, translate(err, domain.ErrProviderNotConfigured)
	}
	return mappers.ToDomainProviderConfig(&model), nil
}

// GetDefault prefers the row flagged as default and falls back to the oldest
// enabled provider.
func (r *DefaultProviderConfigRepository) GetDefault(ctx context.Context, tenantID string) (*domain.ProviderConfig, error) {
	var model models.ProviderConfigModel
	if err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND enabled = ?", tenantID, true).
		Order("is_default DESC, created_at ASC").
		First(&model).Error; err != nil {
		return nil, translate(err, domain.ErrProviderNotConfigured)
	}
	return mappers.ToDomainProviderConfig(&model), nil
}

func (r *DefaultProviderConfigRepository) ListEnabled(ctx context.Context) ([]*domain.ProviderConfig, error) {
	var rows []models.ProviderConfigModel
	if err := r.DB.WithContext(ctx).
		Where("enabled = ?", true).
		Order("tenant_id ASC, provider ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	cfgs := make([]*domain.ProviderConfig, 0, len(rows))
	for i := range rows {
		cfgs = append(cfgs, mappers.ToDomainProviderConfig(&rows[i]))
	}
	return cfgs, nil
}

func (r *DefaultProviderConfigRepository) Upsert(ctx context.Context, cfg *domain.ProviderConfig) error {
	return translate(r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"environment", "enabled", "is_default", "merchant_id", "salt_key",
				"salt_index", "base_url", "webhook_username", "webhook_password",
				"callback_url", "return_url", "max_retries", "updated_at",
			}),
		}).
		Create(mappers.ToGORMProviderConfig(cfg)).Error, nil)
}
