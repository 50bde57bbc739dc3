package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all session engine configuration.
type Config struct {
	// Application
	App AppConfig

	// Platform API
	Platform PlatformConfig

	// Redis (client-side session cache)
	Redis RedisConfig

	// Engine tunables
	Engine EngineConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string
}

// PlatformConfig holds platform API client settings.
type PlatformConfig struct {
	// BaseURL of the platform API.
	// Example: https://api.peerlink.app
	BaseURL string

	// AuthToken is the current user's bearer token.
	AuthToken string

	// UserID is the authenticated user's platform ID. Cache keys and claim
	// flags are scoped to it.
	UserID string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration
}

// RedisConfig holds Redis connection settings for the session cache.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	PoolSize int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Cache TTLs
	ListTTL  time.Duration
	ClaimTTL time.Duration

	// Enable for development without Redis
	Disabled bool
}

// EngineConfig holds session engine tunables.
type EngineConfig struct {
	// HighlightDuration is how long a freshly joined session stays
	// highlighted in the manage view.
	HighlightDuration time.Duration

	// InvitePageLimit is the inbox page size when fetching pending invites.
	InvitePageLimit int

	// RefreshInterval is how often the sync agent reloads the session lists
	// and the pending invite inbox.
	RefreshInterval time.Duration
}

// Load reads configuration from environment variables with sensible
// defaults, validating the result.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "peerlink-sessions"),
			Environment: Environment(getEnv("APP_ENV", string(EnvDevelopment))),
			Debug:       getEnvBool("APP_DEBUG", false),
			Version:     getEnv("APP_VERSION", "dev"),
		},
		Platform: PlatformConfig{
			BaseURL:   getEnv("PLATFORM_API_URL", ""),
			AuthToken: getEnv("PLATFORM_API_TOKEN", ""),
			UserID:    getEnv("PLATFORM_USER_ID", ""),
			Timeout:   getEnvDuration("PLATFORM_API_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			ListTTL:      getEnvDuration("CACHE_LIST_TTL", 24*time.Hour),
			ClaimTTL:     getEnvDuration("CACHE_CLAIM_TTL", 30*24*time.Hour),
			Disabled:     getEnvBool("REDIS_DISABLED", false),
		},
		Engine: EngineConfig{
			HighlightDuration: getEnvDuration("ENGINE_HIGHLIGHT_DURATION", 2*time.Second),
			InvitePageLimit:   getEnvInt("ENGINE_INVITE_PAGE_LIMIT", 50),
			RefreshInterval:   getEnvDuration("ENGINE_REFRESH_INTERVAL", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Platform.BaseURL == "" {
		return fmt.Errorf("config: PLATFORM_API_URL is required")
	}
	if c.Platform.UserID == "" {
		return fmt.Errorf("config: PLATFORM_USER_ID is required")
	}
	switch c.App.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("config: unknown APP_ENV %q", c.App.Environment)
	}
	if c.Engine.InvitePageLimit <= 0 {
		return fmt.Errorf("config: ENGINE_INVITE_PAGE_LIMIT must be positive")
	}
	if c.Engine.RefreshInterval <= 0 {
		return fmt.Errorf("config: ENGINE_REFRESH_INTERVAL must be positive")
	}
	return nil
}

// IsProduction returns true in the production environment.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// ─────────────────────────────────────────────────────────────────────────────
// Env helpers
// ─────────────────────────────────────────────────────────────────────────────

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}
