package repository

import (
	"context"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return translate(r.DB.WithContext(ctx).Create(mappers.ToGORMOrder(order)).Error, nil)
}

func (r *DefaultOrderRepository) Get(ctx context.Context, tenantID, orderID string) (*domain.Order, error) {
	var model models.OrderModel
	if err := r.DB.WithContext(ctx).
		First(&model, "tenant_id = ? AND id = ?", tenantID, orderID).Error; err != nil {
		return nil, translate(err, domain.ErrOrderNotFound)
	}
	return mappers.ToDomainOrder(&model), nil
}

func (r *DefaultOrderRepository) GetForUpdate(ctx context.Context, tenantID, orderID string) (*domain.Order, error) {
	var model models.OrderModel
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "tenant_id = ? AND id = ?", tenantID, orderID).Error; err != nil {
		return nil, translate(err, domain.ErrOrderNotFound)
	}
	return mappers.ToDomainOrder(&model), nil
}

func (r *DefaultOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	model := mappers.ToGORMOrder(order)
	res := r.DB.WithContext(ctx).
		Model(model).
		Where("tenant_id = ?", order.TenantID).
		Select("*").Omit("created_at").
		Updates(model)
	if res.Error != nil {
		return translate(res.Error, domain.ErrOrderNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
