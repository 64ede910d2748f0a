package mappers

import (
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
)

func ToGORMIdempotencyKey(r *domain.IdempotencyRecord) *models.IdempotencyKeyModel {
	return &models.IdempotencyKeyModel{
		ID:           r.ID,
		TenantID:     r.TenantID,
		Scope:        r.Scope,
		Key:          r.Key,
		RequestHash:  r.RequestHash,
		Status:       string(r.Status),
		ResponseBody: r.ResponseBody,
		PaymentID:    r.PaymentID,
		ExpiresAt:    r.ExpiresAt,
		CreatedAt:    r.CreatedAt,
		CompletedAt:  r.CompletedAt,
	}
}

func ToDomainIdempotencyKey(m *models.IdempotencyKeyModel) *domain.IdempotencyRecord {
	return &domain.IdempotencyRecord{
		ID:           m.ID,
		TenantID:     m.TenantID,
		Scope:        m.Scope,
		Key:          m.Key,
		RequestHash:  m.RequestHash,
		Status:       domain.IdempotencyStatus(m.Status),
		ResponseBody: m.ResponseBody,
		PaymentID:    m.PaymentID,
		ExpiresAt:    m.ExpiresAt,
		CreatedAt:    m.CreatedAt,
		CompletedAt:  m.CompletedAt,
	}
}
