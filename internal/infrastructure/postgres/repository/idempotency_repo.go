package repository

import (
	"context"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultIdempotencyRepository struct {
	DB *gorm.DB
}

func NewDefaultIdempotencyRepository(db *gorm.DB) *DefaultIdempotencyRepository {
	return &DefaultIdempotencyRepository{DB: db}
}

func (r *DefaultIdempotencyRepository) Reserve(ctx context.Context, record *domain.IdempotencyRecord) (*domain.IdempotencyRecord, bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(mappers.ToGORMIdempotencyKey(record))
	if res.Error != nil {
		return nil, false, translate(res.Error, nil)
	}
	if res.RowsAffected == 1 {
		return record, true, nil
	}
	existing, err := r.Get(ctx, record.TenantID, record.Scope, record.Key)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *DefaultIdempotencyRepository) Get(ctx context.Context, tenantID, scope, key string) (*domain.IdempotencyRecord, error) {
	var model models.IdempotencyKeyModel
	if err := r.DB.WithContext(ctx).
		First(&model, "tenant_id = ? AND scope = ? AND idempotency_key = ?", tenantID, scope, key).Error; err != nil {
		return nil, translate(err, domain.ErrNotFound)
	}
	return mappers.ToDomainIdempotencyKey(&model), nil
}

func (r *DefaultIdempotencyRepository) Complete(ctx context.Context, record *domain.IdempotencyRecord) error {
	res := r.DB.WithContext(ctx).
		Model(&models.IdempotencyKeyModel{}).
		Where("tenant_id = ? AND scope = ? AND idempotency_key = ?", record.TenantID, record.Scope, record.Key).
		Updates(map[string]any{
			"status":        string(domain.IdempotencyCompleted),
			"response_body": record.ResponseBody,
			"payment_id":    record.PaymentID,
			"expires_at":    record.ExpiresAt,
			"completed_at":  record.CompletedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DefaultIdempotencyRepository) Delete(ctx context.Context, tenantID, scope, key string) error {
	return r.DB.WithContext(ctx).
		Where("tenant_id = ? AND scope = ? AND idempotency_key = ?", tenantID, scope, key).
		Delete(&models.IdempotencyKeyModel{}).Error
}
