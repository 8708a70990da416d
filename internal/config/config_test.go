package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerDefaults(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	cfg := manager.GetConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "", cfg.Factors.Path, "default selects the embedded dataset")
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestValidate(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)
	require.NoError(t, manager.Validate())

	t.Run("Invalid port", func(t *testing.T) {
		manager.config.Server.Port = -1
		assert.Error(t, manager.Validate())
		manager.config.Server.Port = 8080
	})

	t.Run("Cache enabled without URL", func(t *testing.T) {
		manager.config.Cache.Enabled = true
		manager.config.Cache.RedisURL = ""
		assert.Error(t, manager.Validate())
		manager.config.Cache.Enabled = false
	})

	t.Run("Invalid log level", func(t *testing.T) {
		manager.config.Logging.Level = "verbose"
		assert.Error(t, manager.Validate())
		manager.config.Logging.Level = "info"
	})

	t.Run("Invalid rate limit", func(t *testing.T) {
		manager.config.RateLimit.RequestsPerSecond = 0
		assert.Error(t, manager.Validate())
		manager.config.RateLimit.RequestsPerSecond = 20
	})
}
