package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, parseOrigins(" https://a.example , ,https://b.example"))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATA_SOURCE", "LMS")
	t.Setenv("LMS_MAX_RETRIES", "not-a-number")
	t.Setenv("STREAK_TIMEZONE", "Asia/Jakarta")

	cfg := Load()

	assert.Equal(t, DataSourceLMS, cfg.DataSource)
	assert.Equal(t, 2, cfg.LMSMaxRetries)
	assert.Equal(t, 300*time.Second, cfg.CatalogCacheTTL)
	assert.Equal(t, "Asia/Jakarta", cfg.StreakLocation.String())
}

func TestGetEnvLocationFallback(t *testing.T) {
	t.Setenv("STREAK_TIMEZONE", "Mars/Olympus")
	assert.Equal(t, time.UTC, getEnvLocation("STREAK_TIMEZONE", time.UTC))
}

func TestCacheKeys(t *testing.T) {
	window := time.Unix(1700000000, 0)
	assert.Equal(t, "catalog:products", CacheKey.CatalogKey())
	assert.Equal(t, "ratelimit:auth:10.0.0.1:1700000000", CacheKey.RateLimitKey("auth", "10.0.0.1", window))
}
