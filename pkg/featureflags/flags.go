// ABOUTME: Feature flag management for toggling optional subsystems at runtime
// ABOUTME: Environment-backed manager with defaults plus a static manager for tests

package featureflags

import (
	"context"
	"os"
	"strings"
	"sync"
)

// FeatureFlag represents a single feature flag
type FeatureFlag string

// Defined feature flags
const (
	// CacheEnabled routes data fetches through the response cache
	CacheEnabled FeatureFlag = "cache_enabled"

	// CourierEnabled exposes the courier endpoints
	CourierEnabled FeatureFlag = "courier_enabled"

	// MetricsEnabled enables the metrics endpoint
	MetricsEnabled FeatureFlag = "metrics_enabled"

	// RateLimitEnabled enables rate limiting
	RateLimitEnabled FeatureFlag = "rate_limit_enabled"

	// TrackingSortByDate orders tracking events by their timestamps
	// instead of trusting the courier's order
	TrackingSortByDate FeatureFlag = "tracking_sort_by_date"
)

// Defaults holds the state of each flag when nothing overrides it
var Defaults = map[FeatureFlag]bool{
	CacheEnabled:       true,
	CourierEnabled:     true,
	MetricsEnabled:     false,
	RateLimitEnabled:   true,
	TrackingSortByDate: true,
}

// Manager defines the interface for feature flag management
type Manager interface {
	// IsEnabled checks if a feature flag is enabled
	IsEnabled(ctx context.Context, flag FeatureFlag) bool

	// SetEnabled sets a feature flag's state
	SetEnabled(flag FeatureFlag, enabled bool)

	// GetAllFlags returns the state of all flags
	GetAllFlags() map[FeatureFlag]bool
}

// EnvManager implements Manager using environment variables
type EnvManager struct {
	mu        sync.RWMutex
	overrides map[FeatureFlag]bool
	prefix    string
}

// NewEnvManager creates a new environment-based feature flag manager
func NewEnvManager(prefix string) *EnvManager {
	if prefix == "" {
		prefix = "FEATURE_"
	}
	return &EnvManager{
		overrides: make(map[FeatureFlag]bool),
		prefix:    prefix,
	}
}

// IsEnabled checks a flag: explicit overrides first, then the environment,
// then the flag's default
func (m *EnvManager) IsEnabled(ctx context.Context, flag FeatureFlag) bool {
	m.mu.RLock()
	if enabled, ok := m.overrides[flag]; ok {
		m.mu.RUnlock()
		return enabled
	}
	m.mu.RUnlock()

	value := strings.ToLower(strings.TrimSpace(os.Getenv(m.prefix + strings.ToUpper(string(flag)))))
	switch value {
	case "true", "1", "enabled", "on":
		return true
	case "false", "0", "disabled", "off":
		return false
	default:
		return Defaults[flag]
	}
}

// SetEnabled sets a feature flag's state
func (m *EnvManager) SetEnabled(flag FeatureFlag, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[flag] = enabled
}

// GetAllFlags returns the state of all defined flags
func (m *EnvManager) GetAllFlags() map[FeatureFlag]bool {
	ctx := context.Background()
	flags := make(map[FeatureFlag]bool, len(Defaults))
	for flag := range Defaults {
		flags[flag] = m.IsEnabled(ctx, flag)
	}
	return flags
}

// StaticManager implements Manager with static configuration
type StaticManager struct {
	flags map[FeatureFlag]bool
	mu    sync.RWMutex
}

// NewStaticManager creates a manager with predefined flag states. Flags
// missing from the map are disabled.
func NewStaticManager(flags map[FeatureFlag]bool) *StaticManager {
	copied := make(map[FeatureFlag]bool, len(flags))
	for k, v := range flags {
		copied[k] = v
	}
	return &StaticManager{flags: copied}
}

// NewDefaultManager creates a static manager holding Defaults
func NewDefaultManager() *StaticManager {
	return NewStaticManager(Defaults)
}

// IsEnabled checks if a feature flag is enabled
func (m *StaticManager) IsEnabled(ctx context.Context, flag FeatureFlag) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags[flag]
}

// SetEnabled sets a feature flag's state
func (m *StaticManager) SetEnabled(flag FeatureFlag, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[flag] = enabled
}

// GetAllFlags returns all flag states
func (m *StaticManager) GetAllFlags() map[FeatureFlag]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[FeatureFlag]bool)
	for k, v := range m.flags {
		result[k] = v
	}
	return result
}
