package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STATS_CACHE_TTL", "")
	t.Setenv("DIGEST_HOUR", "")
	t.Setenv("S3_BUCKET", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, 8, cfg.DigestHour)
	assert.False(t, cfg.StorageConfigured())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STATS_CACHE_TTL", "30s")
	t.Setenv("JWT_ACCESS_EXPIRATION", "not-a-duration")
	t.Setenv("DIGEST_HOUR", "21")
	t.Setenv("S3_BUCKET", "gallery")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.StatsCacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiration)
	assert.Equal(t, 21, cfg.DigestHour)
	assert.True(t, cfg.StorageConfigured())
}
