package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, "http://localhost:9090", cfg.App.PublicURL)
	assert.Equal(t, 30, cfg.Applications.MinDaysAllowed)
	assert.True(t, cfg.Accounts.EnforceMinAge)
	assert.Equal(t, 18, cfg.Accounts.MinimumAgeAllowed)
	assert.Equal(t, 72*time.Hour, cfg.Auth.VerifyTokenTTL)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.False(t, cfg.Media.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MIN_DAYS_ALLOWED", "7")
	t.Setenv("ENFORCE_MIN_AGE", "false")
	t.Setenv("AUTH_RESET_TOKEN_TTL", "90m")
	t.Setenv("AUTH_TOKEN_BUCKET", "not-a-duration")
	t.Setenv("APP_PUBLIC_URL", "https://jobs.example.com/")
	t.Setenv("MEDIA_S3_BUCKET", "pictures")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Applications.MinDaysAllowed)
	assert.False(t, cfg.Accounts.EnforceMinAge)
	assert.Equal(t, 90*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, time.Minute, cfg.Auth.TokenBucket)
	assert.Equal(t, "https://jobs.example.com", cfg.App.PublicURL)
	assert.True(t, cfg.Media.Enabled())
}

func TestLoadRejectsDevSecretsInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("AUTH_JWT_SECRET", "prod-jwt")
	t.Setenv("AUTH_TOKEN_SECRET", "prod-token")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Session.CookieSecure)
}

func TestLoadRejectsNegativeCooldown(t *testing.T) {
	t.Setenv("MIN_DAYS_ALLOWED", "-1")
	_, err := Load()
	assert.Error(t, err)
}
