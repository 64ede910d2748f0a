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

type DefaultPollingJobRepository struct {
	DB *gorm.DB
}

func NewDefaultPollingJobRepository(db *gorm.DB) *DefaultPollingJobRepository {
	return &DefaultPollingJobRepository{DB: db}
}

func (r *DefaultPollingJobRepository) Upsert(ctx context.Context, job *domain.PollingJob) error {
	model := mappers.ToGORMPollingJob(job)
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "payment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"provider", "merchant_transaction_id", "status", "attempt",
				"next_poll_at", "expire_at", "last_provider_status",
				"last_response_code", "last_error", "updated_at",
			}),
		}).
		Create(model).Error
	if err != nil {
		return translate(err, nil)
	}
	stored, err := r.GetByPayment(ctx, job.TenantID, job.PaymentID)
	if err != nil {
		return err
	}
	job.ID = stored.ID
	job.CreatedAt = stored.CreatedAt
	return nil
}

func (r *DefaultPollingJobRepository) GetByPayment(ctx context.Context, tenantID, paymentID string) (*domain.PollingJob, error) {
	var model models.PollingJobModel
	if err := r.DB.WithContext(ctx).
		First(&model, "tenant_id = ? AND payment_id = ?", tenantID, paymentID).Error; err != nil {
		return nil, translate(err, domain.ErrPollingJobNotFound)
	}
	return mappers.ToDomainPollingJob(&model), nil
}

// ClaimDue runs in its own transaction so concurrent pollers skip rows another
// worker already holds.
func (r *DefaultPollingJobRepository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*domain.PollingJob, error) {
	var claimed []*domain.PollingJob
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.PollingJobModel
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND next_poll_at <= ? AND expire_at > ?", string(domain.PollingActive), now, now).
			Order("next_poll_at ASC").
			Limit(limit).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		ids := make([]string, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		if err := tx.Model(&models.PollingJobModel{}).
			Where("id IN ?", ids).
			Updates(map[string]any{"next_poll_at": now.Add(lease), "updated_at": now}).Error; err != nil {
			return err
		}
		claimed = make([]*domain.PollingJob, 0, len(rows))
		for i := range rows {
			claimed = append(claimed, mappers.ToDomainPollingJob(&rows[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *DefaultPollingJobRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*domain.PollingJob, error) {
	var rows []models.PollingJobModel
	if err := r.DB.WithContext(ctx).
		Where("status = ? AND expire_at <= ?", string(domain.PollingActive), now).
		Order("expire_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	jobs := make([]*domain.PollingJob, 0, len(rows))
	for i := range rows {
		jobs = append(jobs, mappers.ToDomainPollingJob(&rows[i]))
	}
	return jobs, nil
}

func (r *DefaultPollingJobRepository) Update(ctx context.Context, job *domain.PollingJob) error {
	model := mappers.ToGORMPollingJob(job)
	res := r.DB.WithContext(ctx).
		Model(model).
		Select("*").Omit("created_at").
		Updates(model)
	if res.Error != nil {
		return translate(res.Error, domain.ErrPollingJobNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrPollingJobNotFound
	}
	return nil
}
