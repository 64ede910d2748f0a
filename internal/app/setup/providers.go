package setup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/config"
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/google/uuid"
)

// SeedProviders upserts the provider configurations listed in the config file.
// Rows created by other means are left untouched.
func SeedProviders(ctx context.Context, store domain.Store, seeds []config.ProviderSeed, logger *slog.Logger) error {
	now := time.Now().UTC()
	for _, s := range seeds {
		cfg := ProviderConfigFromSeed(s, now)
		if err := store.ProviderConfigs().Upsert(ctx, cfg); err != nil {
			return fmt.Errorf("failed to seed %s/%s: %w", s.Tenant, s.Name, err)
		}
		logger.Info("provider configured",
			"tenant", cfg.TenantID, "provider", cfg.Provider,
			"environment", cfg.Environment, "enabled", cfg.Enabled, "default", cfg.IsDefault,
			"merchant_id", domain.Mask(cfg.MerchantID))
	}
	return nil
}

func ProviderConfigFromSeed(s config.ProviderSeed, now time.Time) *domain.ProviderConfig {
	env := domain.EnvironmentTest
	if strings.EqualFold(s.Environment, string(domain.EnvironmentLive)) {
		env = domain.EnvironmentLive
	}
	return &domain.ProviderConfig{
		ID:              uuid.NewString(),
		TenantID:        s.Tenant,
		Provider:        strings.ToLower(s.Name),
		Environment:     env,
		Enabled:         s.Enabled,
		IsDefault:       s.Default,
		MerchantID:      s.MerchantID,
		SaltKey:         s.SaltKey,
		SaltIndex:       s.SaltIndex,
		BaseURL:         s.BaseURL,
		WebhookUsername: s.WebhookUsername,
		WebhookPassword: s.WebhookPassword,
		CallbackURL:     s.CallbackURL,
		ReturnURL:       s.ReturnURL,
		MaxRetries:      s.HTTPRetries,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
