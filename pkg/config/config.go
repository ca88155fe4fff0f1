// ABOUTME: Configuration management for the application with environment variable support
// ABOUTME: Reads an optional .env file first, then the process environment

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig

	// Cache contains response cache configuration
	Cache CacheConfig

	// Courier contains FAN Courier client configuration
	Courier CourierConfig

	// Settings selects where the settings table lives
	Settings SettingsConfig

	// Log contains logger configuration
	Log LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string

	// RateLimit is the number of requests allowed per client per window
	RateLimit int

	// RateWindow is the rate limit window
	RateWindow time.Duration

	// AllowedOrigins is the CORS allow list
	AllowedOrigins []string
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Backend selects the storage (memory/sqlite/redis)
	Backend string

	// Prefix namespaces cache keys inside the storage
	Prefix string

	// Version is the cache schema version; changing it flushes the cache
	Version string

	// MaxEntryBytes is the largest serialized entry the cache will write
	MaxEntryBytes int

	// QuotaBytes caps the memory and sqlite storages
	QuotaBytes int64

	// SweepSchedule is the cron spec for removing expired entries
	SweepSchedule string

	// SQLitePath is the database file for the sqlite backend
	SQLitePath string

	// Redis contains Redis-specific configuration
	Redis RedisConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int

	// Namespace prefixes every key written by this service
	Namespace string
}

// CourierConfig holds courier client configuration
type CourierConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Username string
	Password string
	ClientID string

	// TrackingRefreshSchedule is the cron spec for polling tracked AWBs
	TrackingRefreshSchedule string

	// TrackingWorkers bounds concurrent tracking requests
	TrackingWorkers int
}

// SettingsConfig holds settings store configuration
type SettingsConfig struct {
	// Backend selects the store (supabase/sqlite/none)
	Backend string

	SupabaseURL string
	SupabaseKey string

	// Table is the settings table name
	Table string

	// SQLitePath is the database file for the sqlite backend
	SQLitePath string
}

// LogConfig holds logger configuration
type LogConfig struct {
	// Backend selects the logger (logrus/zap)
	Backend string

	// Level is debug, info, warn or error
	Level string

	// Format is json or text
	Format string

	// File enables rotated file output when set
	File string
}

// LoadFromEnv loads configuration from a .env file, when present, and the
// environment. Variables already set in the environment win over the file.
func LoadFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(), nil
}

// LoadFiles loads configuration after reading the given env files
func LoadFiles(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv reads configuration from the process environment only
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnvOrDefault("PORT", "8000"),
			RateLimit:      getEnvAsIntOrDefault("RATE_LIMIT", 100),
			RateWindow:     time.Duration(getEnvAsIntOrDefault("RATE_WINDOW_SECONDS", 60)) * time.Second,
			AllowedOrigins: getEnvAsListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Cache: CacheConfig{
			Backend:       getEnvOrDefault("CACHE_BACKEND", "memory"),
			Prefix:        getEnvOrDefault("CACHE_PREFIX", "bluehand_cache_"),
			Version:       getEnvOrDefault("CACHE_VERSION", "v1"),
			MaxEntryBytes: getEnvAsIntOrDefault("CACHE_MAX_ENTRY_BYTES", 2<<20),
			QuotaBytes:    int64(getEnvAsIntOrDefault("CACHE_QUOTA_BYTES", 5<<20)),
			SweepSchedule: getEnvOrDefault("CACHE_SWEEP_SCHEDULE", "@every 10m"),
			SQLitePath:    getEnvOrDefault("CACHE_SQLITE_PATH", "cache.db"),
			Redis: RedisConfig{
				Address:   getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
				Password:  getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:        getEnvAsIntOrDefault("REDIS_DB", 0),
				Namespace: getEnvOrDefault("REDIS_NAMESPACE", "bluehand:"),
			},
		},
		Courier: CourierConfig{
			BaseURL:                 getEnvOrDefault("FAN_COURIER_BASE_URL", "https://api.fancourier.ro"),
			Timeout:                 time.Duration(getEnvAsIntOrDefault("FAN_COURIER_TIMEOUT_SECONDS", 30)) * time.Second,
			Username:                os.Getenv("FAN_COURIER_USERNAME"),
			Password:                os.Getenv("FAN_COURIER_PASSWORD"),
			ClientID:                os.Getenv("FAN_COURIER_CLIENT_ID"),
			TrackingRefreshSchedule: getEnvOrDefault("TRACKING_REFRESH_SCHEDULE", "@every 1h"),
			TrackingWorkers:         getEnvAsIntOrDefault("TRACKING_WORKERS", 4),
		},
		Settings: SettingsConfig{
			Backend:     getEnvOrDefault("SETTINGS_BACKEND", "none"),
			SupabaseURL: os.Getenv("SUPABASE_URL"),
			SupabaseKey: os.Getenv("SUPABASE_KEY"),
			Table:       getEnvOrDefault("SETTINGS_TABLE", "site_settings"),
			SQLitePath:  getEnvOrDefault("SETTINGS_SQLITE_PATH", "settings.db"),
		},
		Log: LogConfig{
			Backend: getEnvOrDefault("LOG_BACKEND", "logrus"),
			Level:   getEnvOrDefault("LOG_LEVEL", "info"),
			Format:  getEnvOrDefault("LOG_FORMAT", "json"),
			File:    os.Getenv("LOG_FILE"),
		},
	}
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsListOrDefault splits a comma separated variable
func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}

	if c.Server.RateLimit < 0 {
		return errors.New("rate limit cannot be negative")
	}

	switch c.Cache.Backend {
	case "memory", "sqlite":
	case "redis":
		if c.Cache.Redis.Address == "" {
			return errors.New("redis address cannot be empty when using redis cache")
		}
	default:
		return errors.New("cache backend must be 'memory', 'sqlite' or 'redis'")
	}

	if c.Cache.MaxEntryBytes <= 0 {
		return errors.New("cache max entry size must be positive")
	}

	if c.Cache.Version == "" {
		return errors.New("cache version cannot be empty")
	}

	switch c.Settings.Backend {
	case "none", "sqlite":
	case "supabase":
		if c.Settings.SupabaseURL == "" || c.Settings.SupabaseKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_KEY are required for the supabase settings backend")
		}
	default:
		return errors.New("settings backend must be 'supabase', 'sqlite' or 'none'")
	}

	if c.Courier.Timeout <= 0 {
		return errors.New("courier timeout must be positive")
	}

	switch c.Log.Backend {
	case "logrus", "zap":
	default:
		return errors.New("log backend must be 'logrus' or 'zap'")
	}

	return nil
}
