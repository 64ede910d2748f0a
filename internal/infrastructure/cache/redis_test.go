package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/config"
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyHidesClientKey(t *testing.T) {
	k := cacheKey("acme", domain.ScopeCreatePayment, "client-key-123")
	assert.True(t, strings.HasPrefix(k, "payments:idem:acme:payments.create:"))
	assert.NotContains(t, k, "client-key-123")
	assert.Equal(t, k, cacheKey("acme", domain.ScopeCreatePayment, "client-key-123"))
}

func TestNopCacheMisses(t *testing.T) {
	var c domain.ResponseCache = NopResponseCache{}
	require.NoError(t, c.Set(context.Background(), "acme", "s", "k", &domain.CachedResponse{Body: []byte("x")}))
	_, ok, err := c.Get(context.Background(), "acme", "s", "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConnectFailsFast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Connect(ctx, config.RedisCache{Addr: "127.0.0.1:1"})
	require.Error(t, err)
}
