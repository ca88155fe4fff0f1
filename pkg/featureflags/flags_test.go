package featureflags

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvManager_Defaults(t *testing.T) {
	manager := NewEnvManager("TEST_FEATURE_")
	ctx := context.Background()

	assert.True(t, manager.IsEnabled(ctx, CacheEnabled))
	assert.True(t, manager.IsEnabled(ctx, CourierEnabled))
	assert.True(t, manager.IsEnabled(ctx, TrackingSortByDate))
	assert.False(t, manager.IsEnabled(ctx, MetricsEnabled))
	assert.False(t, manager.IsEnabled(ctx, "unknown_flag"))
}

func TestEnvManager_MultipleValues(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected bool
	}{
		{"true lowercase", "true", true},
		{"TRUE uppercase", "TRUE", true},
		{"1 numeric", "1", true},
		{"enabled", "enabled", true},
		{"on", "on", true},
		{"false", "false", false},
		{"0", "0", false},
		{"disabled", "DISABLED", false},
		{"empty uses default", "", true},
		{"garbage uses default", "yes please", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_CACHE_ENABLED", tt.value)

			manager := NewEnvManager("TEST_")
			assert.Equal(t, tt.expected, manager.IsEnabled(context.Background(), CacheEnabled))
		})
	}
}

func TestEnvManager_DefaultPrefix(t *testing.T) {
	t.Setenv("FEATURE_METRICS_ENABLED", "true")

	manager := NewEnvManager("")
	assert.True(t, manager.IsEnabled(context.Background(), MetricsEnabled))
}

func TestEnvManager_SetEnabledOverridesEnv(t *testing.T) {
	t.Setenv("TEST_FEATURE_COURIER_ENABLED", "true")

	manager := NewEnvManager("TEST_FEATURE_")
	manager.SetEnabled(CourierEnabled, false)

	assert.False(t, manager.IsEnabled(context.Background(), CourierEnabled))
}

func TestEnvManager_GetAllFlags(t *testing.T) {
	t.Setenv("TEST_FEATURE_RATE_LIMIT_ENABLED", "0")

	flags := NewEnvManager("TEST_FEATURE_").GetAllFlags()

	assert.Len(t, flags, len(Defaults))
	assert.False(t, flags[RateLimitEnabled])
	assert.True(t, flags[CacheEnabled])
}

func TestStaticManager(t *testing.T) {
	source := map[FeatureFlag]bool{CacheEnabled: true}
	manager := NewStaticManager(source)
	ctx := context.Background()

	assert.True(t, manager.IsEnabled(ctx, CacheEnabled))
	assert.False(t, manager.IsEnabled(ctx, CourierEnabled))

	manager.SetEnabled(CourierEnabled, true)
	assert.True(t, manager.IsEnabled(ctx, CourierEnabled))
	_, leaked := source[CourierEnabled]
	assert.False(t, leaked, "the source map is copied")

	all := manager.GetAllFlags()
	all[MetricsEnabled] = true
	assert.False(t, manager.IsEnabled(ctx, MetricsEnabled))
}

func TestNewDefaultManager(t *testing.T) {
	manager := NewDefaultManager()
	manager.SetEnabled(CacheEnabled, false)

	assert.False(t, manager.IsEnabled(context.Background(), CacheEnabled))
	assert.True(t, Defaults[CacheEnabled], "defaults are not modified")
}
