package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		GoEnv:                   "development",
		HTTPPort:                8080,
		DatabaseURL:             "postgres://localhost/immersion",
		DBMaxOpenConns:          10,
		JWTSecret:               strings.Repeat("s", 32),
		LogLevel:                "info",
		LogFormat:               "json",
		DefaultTimezone:         "Asia/Tokyo",
		EpisodeDurationFallback: 24,
		AniListRatePerSec:       1,
		AniListSyncWorkers:      4,
		AniListSyncBatch:        200,
		ImportMaxRows:           100,
		RequestTimeout:          time.Second,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("x", 40))
	t.Setenv("HTTP_PORT", "")
	t.Setenv("EPISODE_DURATION_FALLBACK", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 24.0, cfg.EpisodeDurationFallback)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Hour, cfg.CacheExpiry())
	assert.Equal(t, int64(5<<20), cfg.ImportMaxBytes)
	assert.Equal(t, 4, cfg.AniListSyncWorkers)
	assert.Equal(t, 7*24*time.Hour, cfg.AniListSyncStaleAfter)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("x", 40))
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("EPISODE_DURATION_FALLBACK", "22.5")
	t.Setenv("PROMETHEUS_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, 22.5, cfg.EpisodeDurationFallback)
	assert.True(t, cfg.PrometheusEnabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadConfig_InvalidNumber(t *testing.T) {
	t.Setenv("JWT_SECRET", strings.Repeat("x", 40))
	t.Setenv("HTTP_PORT", "eighty")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "HTTP_PORT")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.HTTPPort = 0
	cfg.DefaultTimezone = "Mars/Olympus"
	cfg.EpisodeDurationFallback = 0
	cfg.JWTSecret = "short"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT")
	assert.Contains(t, err.Error(), "DEFAULT_TIMEZONE")
	assert.Contains(t, err.Error(), "EPISODE_DURATION_FALLBACK")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLocation(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())

	cfg.DefaultTimezone = "nowhere"
	assert.Equal(t, time.UTC, cfg.Location())
}
