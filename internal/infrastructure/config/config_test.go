package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "uploads", cfg.Store.Root)
	assert.Equal(t, "state", cfg.Store.StateDir)
	assert.Equal(t, int64(100<<30), cfg.Store.WarnBytes)
	assert.Equal(t, int64(1<<40), cfg.Store.CapacityBytes)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default().Store.WarnBytes, cfg.Store.WarnBytes)
	assert.Equal(t, Default().Session.TTL, cfg.Session.TTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_ROOT", "/srv/files")
	t.Setenv("STORE_EXTRA_EXTENSIONS", "md,log")
	t.Setenv("STORE_WARN_BYTES", "1024")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/srv/files", cfg.Store.Root)
	assert.Equal(t, []string{"md", "log"}, cfg.Store.ExtraExtensions)
	assert.Equal(t, int64(1024), cfg.Store.WarnBytes)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	t.Setenv("STORE_WARN_BYTES", "not-a-number")

	cfg := LoadOrDefault()
	assert.Equal(t, Default().Store.WarnBytes, cfg.Store.WarnBytes)
}
