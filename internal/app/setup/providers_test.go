package setup_test

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/app/setup"
	"github.com/LavaJover/shvark-payments-service/internal/config"
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-payments-service/internal/usecase/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderConfigFromSeed(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg := setup.ProviderConfigFromSeed(config.ProviderSeed{
		Tenant: "acme", Name: "PhonePe", Environment: "LIVE", Enabled: true, Default: true,
		MerchantID: "M123", SaltKey: "salt", SaltIndex: "1", HTTPRetries: 3,
	}, now)

	assert.Equal(t, "phonepe", cfg.Provider)
	assert.Equal(t, domain.EnvironmentLive, cfg.Environment)
	assert.True(t, cfg.IsDefault)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, now, cfg.CreatedAt)

	other := setup.ProviderConfigFromSeed(config.ProviderSeed{Tenant: "acme", Name: "phonepe", Environment: "uat"}, now)
	assert.Equal(t, domain.EnvironmentTest, other.Environment)
}

func TestSeedProvidersIsRepeatable(t *testing.T) {
	store := testkit.NewStore(t)
	ctx := context.Background()
	seeds := []config.ProviderSeed{{Tenant: "acme", Name: "phonepe", Enabled: true, Default: true, MerchantID: "M1"}}

	require.NoError(t, setup.SeedProviders(ctx, store, seeds, logger.Discard()))
	seeds[0].MerchantID = "M2"
	require.NoError(t, setup.SeedProviders(ctx, store, seeds, logger.Discard()))

	cfg, err := store.ProviderConfigs().GetDefault(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "M2", cfg.MerchantID)

	enabled, err := store.ProviderConfigs().ListEnabled(ctx)
	require.NoError(t, err)
	assert.Len(t, enabled, 1)
}
