package repository

import (
	"context"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultPaymentRepository struct {
	DB *gorm.DB
}

func NewDefaultPaymentRepository(db *gorm.DB) *DefaultPaymentRepository {
	return &DefaultPaymentRepository{DB: db}
}

func (r *DefaultPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return translate(r.DB.WithContext(ctx).Create(mappers.ToGORMPayment(payment)).Error, nil)
}

func (r *DefaultPaymentRepository) Get(ctx context.Context, tenantID, paymentID string) (*domain.Payment, error) {
	var model models.PaymentModel
	if err := r.DB.WithContext(ctx).
		First(&model, "tenant_id = ? AND id = ?", tenantID, paymentID).Error; err != nil {
		return nil, translate(err, domain.ErrPaymentNotFound)
	}
	return mappers.ToDomainPayment(&model), nil
}

func (r *DefaultPaymentRepository) GetForUpdate(ctx context.Context, tenantID, paymentID string) (*domain.Payment, error) {
	var model models.PaymentModel
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "tenant_id = ? AND id = ?", tenantID, paymentID).Error; err != nil {
		return nil, translate(err, domain.ErrPaymentNotFound)
	}
	return mappers.ToDomainPayment(&model), nil
}

func (r *DefaultPaymentRepository) GetByMerchantTransactionID(ctx context.Context, tenantID, provider, merchantTxnID string) (*domain.Payment, error) {
	var model models.PaymentModel
	query := r.DB.WithContext(ctx).Where("provider = ? AND merchant_transaction_id = ?", provider, merchantTxnID)
	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if err := query.First(&model).Error; err != nil {
		return nil, translate(err, domain.ErrPaymentNotFound)
	}
	return mappers.ToDomainPayment(&model), nil
}

func (r *DefaultPaymentRepository) ListByOrder(ctx context.Context, tenantID, orderID string) ([]*domain.Payment, error) {
	var rows []models.PaymentModel
	if err := r.DB.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]*domain.Payment, 0, len(rows))
	for i := range rows {
		payments = append(payments, mappers.ToDomainPayment(&rows[i]))
	}
	return payments, nil
}

func (r *DefaultPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	model := mappers.ToGORMPayment(payment)
	res := r.DB.WithContext(ctx).
		Model(model).
		Where("tenant_id = ?", payment.TenantID).
		Select("*").Omit("created_at").
		Updates(model)
	if res.Error != nil {
		return translate(res.Error, domain.ErrPaymentNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}
