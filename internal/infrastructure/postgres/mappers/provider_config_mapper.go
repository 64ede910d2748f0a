package mappers

import (
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/models"
)

func ToGORMProviderConfig(c *domain.ProviderConfig) *models.ProviderConfigModel {
	return &models.ProviderConfigModel{
		ID:              c.ID,
		TenantID:        c.TenantID,
		Provider:        c.Provider,
		Environment:     string(c.Environment),
		Enabled:         c.Enabled,
		IsDefault:       c.IsDefault,
		MerchantID:      c.MerchantID,
		SaltKey:         c.SaltKey,
		SaltIndex:       c.SaltIndex,
		BaseURL:         c.BaseURL,
		WebhookUsername: c.WebhookUsername,
		WebhookPassword: c.WebhookPassword,
		CallbackURL:     c.CallbackURL,
		ReturnURL:       c.ReturnURL,
		MaxRetries:      c.MaxRetries,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func ToDomainProviderConfig(m *models.ProviderConfigModel) *domain.ProviderConfig {
	return &domain.ProviderConfig{
		ID:              m.ID,
		TenantID:        m.TenantID,
		Provider:        m.Provider,
		Environment:     domain.Environment(m.Environment),
		Enabled:         m.Enabled,
		IsDefault:       m.IsDefault,
		MerchantID:      m.MerchantID,
		SaltKey:         m.SaltKey,
		SaltIndex:       m.SaltIndex,
		BaseURL:         m.BaseURL,
		WebhookUsername: m.WebhookUsername,
		WebhookPassword: m.WebhookPassword,
		CallbackURL:     m.CallbackURL,
		ReturnURL:       m.ReturnURL,
		MaxRetries:      m.MaxRetries,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
