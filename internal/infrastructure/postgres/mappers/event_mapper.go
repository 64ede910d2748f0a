package mappers

import (
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
)

func ToGORMPaymentEvent(e *domain.PaymentEvent) *models.PaymentEventModel {
	return &models.PaymentEventModel{
		ID:        e.ID,
		TenantID:  e.TenantID,
		PaymentID: e.PaymentID,
		OrderID:   e.OrderID,
		Provider:  e.Provider,
		Type:      e.Type,
		Payload:   toJSON(e.Payload),
		CreatedAt: e.CreatedAt,
	}
}

func ToDomainPaymentEvent(m *models.PaymentEventModel) *domain.PaymentEvent {
	return &domain.PaymentEvent{
		ID:        m.ID,
		TenantID:  m.TenantID,
		PaymentID: m.PaymentID,
		OrderID:   m.OrderID,
		Provider:  m.Provider,
		Type:      m.Type,
		Payload:   fromJSONMap(m.Payload),
		CreatedAt: m.CreatedAt,
	}
}

func ToGORMWebhookInbox(e *domain.WebhookInboxEntry) *models.WebhookInboxModel {
	return &models.WebhookInboxModel{
		ID:                e.ID,
		TenantID:          e.TenantID,
		Provider:          e.Provider,
		DedupeKey:         e.DedupeKey,
		Headers:           toJSON(e.Headers),
		Body:              e.Body,
		Verified:          e.Verified,
		VerificationError: e.VerificationError,
		ClaimedAt:         e.ClaimedAt,
		ProcessedAt:       e.ProcessedAt,
		ReceivedAt:        e.ReceivedAt,
	}
}

func ToDomainWebhookInbox(m *models.WebhookInboxModel) *domain.WebhookInboxEntry {
	return &domain.WebhookInboxEntry{
		ID:                m.ID,
		TenantID:          m.TenantID,
		Provider:          m.Provider,
		DedupeKey:         m.DedupeKey,
		Headers:           fromJSONStringMap(m.Headers),
		Body:              m.Body,
		Verified:          m.Verified,
		VerificationError: m.VerificationError,
		ClaimedAt:         m.ClaimedAt,
		ProcessedAt:       m.ProcessedAt,
		ReceivedAt:        m.ReceivedAt,
	}
}
