package mappers

import (
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
)

func ToGORMRefund(r *domain.Refund) *models.RefundModel {
	return &models.RefundModel{
		ID:               r.ID,
		TenantID:         r.TenantID,
		PaymentID:        r.PaymentID,
		OrderID:          r.OrderID,
		Provider:         r.Provider,
		ProviderRefundID: nullable(r.ProviderRefundID),
		MerchantRefundID: r.MerchantRefundID,
		AmountMinor:      r.AmountMinor,
		Currency:         r.Currency,
		Status:           string(r.Status),
		UTR:              r.UTR,
		Reason:           r.Reason,
		FailureCode:      r.FailureCode,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func ToDomainRefund(m *models.RefundModel) *domain.Refund {
	return &domain.Refund{
		ID:               m.ID,
		TenantID:         m.TenantID,
		PaymentID:        m.PaymentID,
		OrderID:          m.OrderID,
		Provider:         m.Provider,
		ProviderRefundID: deref(m.ProviderRefundID),
		MerchantRefundID: m.MerchantRefundID,
		AmountMinor:      m.AmountMinor,
		Currency:         m.Currency,
		Status:           domain.RefundStatus(m.Status),
		UTR:              m.UTR,
		Reason:           m.Reason,
		FailureCode:      m.FailureCode,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
