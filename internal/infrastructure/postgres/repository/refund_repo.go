package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultRefundRepository struct {
	DB *gorm.DB
}

func NewDefaultRefundRepository(db *gorm.DB) *DefaultRefundRepository {
	return &DefaultRefundRepository{DB: db}
}

func (r *DefaultRefundRepository) Create(ctx context.Context, refund *domain.Refund) error {
	return translate(r.DB.WithContext(ctx).Create(mappers.ToGORMRefund(refund)).Error, nil)
}

func (r *DefaultRefundRepository) Get(ctx context.Context, tenantID, refundID string) (*domain.Refund, error) {
	var model models.RefundModel
	if err := r.DB.WithContext(ctx).
		First(&model, "tenant_id = ? AND id = ?", tenantID, refundID).Error; err != nil {
		return nil, translate(err, domain.ErrRefundNotFound)
	}
	return mappers.ToDomainRefund(&model), nil
}

func (r *DefaultRefundRepository) GetByMerchantRefundID(ctx context.Context, tenantID, provider, merchantRefundID string) (*domain.Refund, error) {
	var model models.RefundModel
	query := r.DB.WithContext(ctx).Where("provider = ? AND merchant_refund_id = ?", provider, merchantRefundID)
	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if err := query.First(&model).Error; err != nil {
		return nil, translate(err, domain.ErrRefundNotFound)
	}
	return mappers.ToDomainRefund(&model), nil
}

func (r *DefaultRefundRepository) ListByPayment(ctx context.Context, tenantID, paymentID string) ([]*domain.Refund, error) {
	var rows []models.RefundModel
	if err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND payment_id = ?", tenantID, paymentID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainRefunds(rows), nil
}

func (r *DefaultRefundRepository) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]*domain.Refund, error) {
	var rows []models.RefundModel
	if err := r.DB.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(domain.RefundPending), before).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainRefunds(rows), nil
}

func (r *DefaultRefundRepository) Update(ctx context.Context, refund *domain.Refund) error {
	model := mappers.ToGORMRefund(refund)
	res := r.DB.WithContext(ctx).
		Model(model).
		Where("tenant_id = ?", refund.TenantID).
		Select("*").Omit("created_at").
		Updates(model)
	if res.Error != nil {
		return translate(res.Error, domain.ErrRefundNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRefundNotFound
	}
	return nil
}

func toDomainRefunds(rows []models.RefundModel) []*domain.Refund {
	refunds := make([]*domain.Refund, 0, len(rows))
	for i := range rows {
		refunds = append(refunds, mappers.ToDomainRefund(&rows[i]))
	}
	return refunds
}
