package providers

import (
	"testing"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/providers/phonepe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phonepeConfig(updated time.Time) *domain.ProviderConfig {
	return &domain.ProviderConfig{
		TenantID: "acme", Provider: phonepe.Name, MerchantID: "MID", SaltKey: "salt",
		SaltIndex: "1", BaseURL: "https://api-preprod.phonepe.com/apis/pg-sandbox", UpdatedAt: updated,
	}
}

func TestRegistryBuildsAndCaches(t *testing.T) {
	r := NewDefaultRegistry(nil, logger.Discard(), nil)
	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	a1, err := r.Adapter(phonepeConfig(t0))
	require.NoError(t, err)
	assert.Equal(t, phonepe.Name, a1.Name())

	a2, err := r.Adapter(phonepeConfig(t0))
	require.NoError(t, err)
	assert.Same(t, a1, a2)

	a3, err := r.Adapter(phonepeConfig(t0.Add(time.Minute)))
	require.NoError(t, err)
	assert.NotSame(t, a1, a3)
}

func TestRegistryUnknownProvider(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Adapter(&domain.ProviderConfig{TenantID: "acme", Provider: "stripe"})
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}
