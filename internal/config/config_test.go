package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
env: test
payments_db:
  dsn: "postgres://payments@localhost/payments"
providers:
  - tenant: acme
    name: phonepe
    enabled: true
    default: true
    merchant_id: MID1
    salt_key: salt
    salt_index: "1"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "8080", cfg.HTTPServer.Port)
	assert.Equal(t, 5*time.Second, cfg.Poller.Interval)
	assert.Equal(t, 20*time.Minute, cfg.Poller.ExpireAfter)
	assert.Equal(t, 2.0, cfg.Poller.Multiplier)
	assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
	assert.Equal(t, "payment-events", cfg.KafkaService.EventsTopic)
	assert.Equal(t, "payment-security-events", cfg.KafkaService.SecurityTopic)
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "phonepe", cfg.Providers[0].Name)
	assert.True(t, cfg.Providers[0].Default)
}

func TestLoadRejectsMissingDSN(t *testing.T) {
	path := writeConfig(t, "env: test\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payments_db.dsn")
}

func TestLoadRejectsKafkaWithoutBrokers(t *testing.T) {
	path := writeConfig(t, `
payments_db:
  dsn: "postgres://x"
kafka-service:
  enabled: true
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadOrderCallbacks(t *testing.T) {
	path := writeConfig(t, `
payments_db:
  dsn: "postgres://payments@localhost/payments"
order_callbacks:
  enabled: true
  secret: s3cret
  urls:
    acme: https://merchant.example/callbacks
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.OrderCallbacks.Enabled)
	assert.Equal(t, 5*time.Second, cfg.OrderCallbacks.Timeout)
	assert.Equal(t, 3, cfg.OrderCallbacks.MaxAttempts)
	assert.Equal(t, "https://merchant.example/callbacks", cfg.OrderCallbacks.URLs["acme"])
}
