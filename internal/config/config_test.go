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
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.EqualValues(t, 50, cfg.WelcomeBonus)
	assert.EqualValues(t, 100, cfg.MaxItemPoints)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("REWEAR_HTTP_PORT", "9090")
	t.Setenv("REWEAR_STORE_DRIVER", "Memory")
	t.Setenv("REWEAR_LISTING_BONUS", "5")
	t.Setenv("REWEAR_JWT_ACCESS_TTL", "5m")
	t.Setenv("REWEAR_ADMIN_EMAILS", "a@rewear.io,b@rewear.io")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.EqualValues(t, 5, cfg.ListingBonus)
	assert.Equal(t, 5*time.Minute, cfg.AccessTTL)
	assert.Equal(t, []string{"a@rewear.io", "b@rewear.io"}, cfg.AdminEmails)
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"REWEAR_STORE_DRIVER": "mongo"}},
		{"default secrets in prod", map[string]string{"REWEAR_APP_ENV": "prod"}},
		{"shared secret", map[string]string{"REWEAR_JWT_ACCESS_SECRET": "same", "REWEAR_JWT_REFRESH_SECRET": "same"}},
		{"negative bonus", map[string]string{"REWEAR_WELCOME_BONUS": "-1"}},
		{"not a number", map[string]string{"REWEAR_RATE_RPS": "lots"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
