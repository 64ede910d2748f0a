package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/LavaJover/shvark-payments-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payments.log")
	l, closer, err := New(config.LogConfig{LogLevel: "info", LogFormat: "json", LogOutput: path})
	require.NoError(t, err)

	Security(l).Warn("webhook hash mismatch", "provider", "phonepe")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"channel":"security"`)
	assert.Contains(t, string(b), "webhook hash mismatch")
}
