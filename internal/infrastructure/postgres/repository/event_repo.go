package repository

import (
	"context"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultEventRepository struct {
	DB *gorm.DB
}

func NewDefaultEventRepository(db *gorm.DB) *DefaultEventRepository {
	return &DefaultEventRepository{DB: db}
}

func (r *DefaultEventRepository) Append(ctx context.Context, event *domain.PaymentEvent) error {
	return translate(r.DB.WithContext(ctx).Create(mappers.ToGORMPaymentEvent(event)).Error, nil)
}

func (r *DefaultEventRepository) ListByPayment(ctx context.Context, tenantID, paymentID string) ([]*domain.PaymentEvent, error) {
	var rows []models.PaymentEventModel
	if err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND payment_id = ?", tenantID, paymentID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	events := make([]*domain.PaymentEvent, 0, len(rows))
	for i := range rows {
		events = append(events, mappers.ToDomainPaymentEvent(&rows[i]))
	}
	return events, nil
}
