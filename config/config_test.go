package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("PLATFORM_API_URL", "https://api.peerlink.test")
	t.Setenv("PLATFORM_USER_ID", "u-1")
}

func TestLoad_DefaultsWithRequiredSet(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 30*time.Second, cfg.Platform.Timeout)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 24*time.Hour, cfg.Redis.ListTTL)
	assert.Equal(t, 2*time.Second, cfg.Engine.HighlightDuration)
	assert.Equal(t, 50, cfg.Engine.InvitePageLimit)
	assert.Equal(t, time.Minute, cfg.Engine.RefreshInterval)
}

func TestLoad_RequiresBaseURLAndUserID(t *testing.T) {
	t.Setenv("PLATFORM_API_URL", "")
	t.Setenv("PLATFORM_USER_ID", "u-1")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PLATFORM_API_URL", "https://api.peerlink.test")
	t.Setenv("PLATFORM_USER_ID", "")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownEnvironment(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "sandbox")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ParsesOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_DEBUG", "yes")
	t.Setenv("PLATFORM_API_TIMEOUT", "10s")
	t.Setenv("ENGINE_INVITE_PAGE_LIMIT", "25")
	t.Setenv("REDIS_DISABLED", "true")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, 10*time.Second, cfg.Platform.Timeout)
	assert.Equal(t, 25, cfg.Engine.InvitePageLimit)
	assert.True(t, cfg.Redis.Disabled)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_PORT", "not-a-port")
	t.Setenv("ENGINE_REFRESH_INTERVAL", "soon")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, time.Minute, cfg.Engine.RefreshInterval)
}
