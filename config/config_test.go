package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "testdata/does-not-exist.env")
	t.Setenv("DB_DSN", "")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.CacheSettingsTTL)
	assert.Equal(t, 1000, cfg.MaxCartQuantity)
	assert.Equal(t, "$", cfg.CurrencySymbol)
	assert.False(t, cfg.AutoMigrate)
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "testdata/does-not-exist.env")
	t.Setenv("DB_DSN", "postgres://localhost/dg")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("CACHE_EVALUATION_TTL", "30s")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("MAX_CART_QUANTITY", "not-a-number")

	cfg := LoadConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, int32(7), cfg.DBMaxConns)
	assert.Equal(t, 30*time.Second, cfg.CacheEvaluationTTL)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 1000, cfg.MaxCartQuantity)
}
