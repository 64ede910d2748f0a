package mappers

import (
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
)

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	return &models.OrderModel{
		ID:              order.ID,
		TenantID:        order.TenantID,
		Currency:        order.Currency,
		SubtotalMinor:   order.SubtotalMinor,
		TaxMinor:        order.TaxMinor,
		ShippingMinor:   order.ShippingMinor,
		AmountMinor:     order.AmountMinor,
		Status:          string(order.Status),
		PaymentStatus:   string(order.PaymentStatus),
		PaymentMethod:   order.PaymentMethod,
		PaymentFailedAt: order.PaymentFailedAt,
		PaidAt:          order.PaidAt,
		CustomerEmail:   order.CustomerEmail,
		CustomerPhone:   order.CustomerPhone,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	return &domain.Order{
		ID:              model.ID,
		TenantID:        model.TenantID,
		Currency:        model.Currency,
		SubtotalMinor:   model.SubtotalMinor,
		TaxMinor:        model.TaxMinor,
		ShippingMinor:   model.ShippingMinor,
		AmountMinor:     model.AmountMinor,
		Status:          domain.OrderStatus(model.Status),
		PaymentStatus:   domain.OrderPaymentStatus(model.PaymentStatus),
		PaymentMethod:   model.PaymentMethod,
		PaymentFailedAt: model.PaymentFailedAt,
		PaidAt:          model.PaidAt,
		CustomerEmail:   model.CustomerEmail,
		CustomerPhone:   model.CustomerPhone,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
