package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"API_BASE_URL", "API_TIMEOUT", "API_MAX_CONNS", "STORAGE_DRIVER", "BOLTDB_PATH",
		"BOLTDB_BUCKET", "STORAGE_PREFIX", "REDIS_URL", "REDIS_DB", "FIRST_ADMIN_TTL",
		"SHUTDOWN_TIMEOUT_SECONDS", "LOG_LEVEL", "LOG_ENCODING",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, StorageBolt, cfg.Storage.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.FirstAdminTTL)
	assert.Equal(t, 5*time.Second, cfg.Context.ShutdownTimeout)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_URL", "https://shop.example.com/api/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "9")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, StorageRedis, cfg.Storage.Driver)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 9*time.Second, cfg.Context.ShutdownTimeout)
}

func TestLoad_RejectsBadSettings(t *testing.T) {
	t.Run("relative base url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("API_BASE_URL", "/api")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("STORAGE_DRIVER", "sqlite")
		_, err := Load()
		assert.ErrorContains(t, err, "sqlite")
	})
}
