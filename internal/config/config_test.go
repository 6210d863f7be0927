package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTP.Addr)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10*time.Second, cfg.Database.QueryTimeout)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 24*time.Hour, cfg.VCFCacheTTL)
	assert.Equal(t, 1000, cfg.MaxPageSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password= dbname=oil_calculator sslmode=disable",
		cfg.Database.DSN())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_PATH", "/tmp/oil.db")
	t.Setenv("DB_QUERY_TIMEOUT", "3s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RATE_LIMIT_REQUESTS", "0")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/oil.db", cfg.Database.DSN())
	assert.Equal(t, 3*time.Second, cfg.Database.QueryTimeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, int64(0), cfg.RateLimitRequests)
	assert.True(t, cfg.Log.Development)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "oracle")
		_, err := Load()
		assert.ErrorContains(t, err, "unsupported DB_DRIVER")
	})

	t.Run("negative rate limit", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_REQUESTS", "-1")
		_, err := Load()
		assert.ErrorContains(t, err, "RATE_LIMIT_REQUESTS")
	})

	t.Run("non-positive page size", func(t *testing.T) {
		t.Setenv("MAX_PAGE_SIZE", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "MAX_PAGE_SIZE")
	})

	t.Run("malformed duration", func(t *testing.T) {
		t.Setenv("DB_QUERY_TIMEOUT", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "failed to parse config")
	})
}
