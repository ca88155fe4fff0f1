package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	coreerrors "bluehand-admin-api/core/errors"
	"bluehand-admin-api/core/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestCache(t *testing.T, store *mockStorage, clock *fakeClock) *ResponseCache {
	t.Helper()
	return NewResponseCache(context.Background(), interfaces.Dependencies{Storage: store}, Options{
		Now: clock.Now,
	})
}

func TestNewResponseCache_WritesSchemaVersion(t *testing.T) {
	store := newMockStorage()
	newTestCache(t, store, newFakeClock())

	v, ok, err := store.GetItem(context.Background(), DefaultPrefix+schemaVersionKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, DefaultVersion, v)
}

func TestNewResponseCache_VersionChangeClearsNamespace(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	clock := newFakeClock()

	old := NewResponseCache(ctx, interfaces.Dependencies{Storage: store}, Options{Version: "v1", Now: clock.Now})
	old.Set(ctx, KeyClients, []client{{ID: "1", Name: "Ana"}}, 60)
	store.put("unrelated_key", "keep me")
	require.True(t, store.has(DefaultPrefix+KeyClients))

	NewResponseCache(ctx, interfaces.Dependencies{Storage: store}, Options{Version: "v2", Now: clock.Now})

	assert.False(t, store.has(DefaultPrefix+KeyClients))
	assert.True(t, store.has("unrelated_key"))
	v, _, _ := store.GetItem(ctx, DefaultPrefix+schemaVersionKey)
	assert.Equal(t, "v2", v)
}

func TestResponseCache_SetThenGet(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, newMockStorage(), newFakeClock())

	for _, ttl := range []int{1, 5, 60, 1440} {
		t.Run(fmt.Sprintf("ttl=%d", ttl), func(t *testing.T) {
			want := []client{{ID: "1", Name: "Ana"}, {ID: "2", Name: "Mihai"}}
			c.Set(ctx, KeyClients, want, ttl)

			var got []client
			require.True(t, c.Get(ctx, KeyClients, &got))
			assert.Equal(t, want, got)
		})
	}
}

func TestResponseCache_GetExpiredRemovesEntry(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	clock := newFakeClock()
	c := newTestCache(t, store, clock)

	c.Set(ctx, KeyCategories, []string{"abstract", "landscape"}, 10)

	clock.Advance(10 * time.Minute)
	assert.True(t, c.IsValid(ctx, KeyCategories), "entry is still valid exactly at its TTL")

	clock.Advance(time.Millisecond)
	var got []string
	assert.False(t, c.Get(ctx, KeyCategories, &got))
	assert.Nil(t, got)
	assert.False(t, store.has(DefaultPrefix+KeyCategories))
}

func TestResponseCache_GetMissingKey(t *testing.T) {
	c := newTestCache(t, newMockStorage(), newFakeClock())

	var got map[string]interface{}
	assert.False(t, c.Get(context.Background(), "missing", &got))
}

func TestResponseCache_DenylistedKeysAreNeverWritten(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	c := newTestCache(t, store, newFakeClock())

	c.Set(ctx, KeyOrders, []string{"BH-1"}, 60)
	c.Set(ctx, "Paintings", []string{"Sunset"}, 60)

	assert.False(t, store.has(DefaultPrefix+KeyOrders))
	assert.False(t, store.has(DefaultPrefix+"Paintings"))
	assert.True(t, c.IsDenied("ORDERS"))
	assert.False(t, c.Get(ctx, KeyOrders, nil))
}

func TestResponseCache_OversizedEntryIsSkipped(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	c := newTestCache(t, store, newFakeClock())

	big := strings.Repeat("x", DefaultMaxEntryBytes)

	assert.NotPanics(t, func() {
		c.Set(ctx, KeyDashboardStats, big, 60)
	})
	assert.False(t, store.has(DefaultPrefix+KeyDashboardStats))
	assert.False(t, c.IsDenied(KeyDashboardStats), "oversized writes do not denylist the key")
}

func TestResponseCache_CustomMaxEntryBytes(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	c := NewResponseCache(ctx, interfaces.Dependencies{Storage: store}, Options{MaxEntryBytes: 64})

	c.Set(ctx, KeySizes, "small", 60)
	c.Set(ctx, KeySettings, strings.Repeat("y", 100), 60)

	assert.True(t, store.has(DefaultPrefix+KeySizes))
	assert.False(t, store.has(DefaultPrefix+KeySettings))
}

func TestResponseCache_QuotaExceededClearsNamespaceAndDenylists(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	metrics := newRecordingMetrics()
	c := NewResponseCache(ctx, interfaces.Dependencies{Storage: store, Metrics: metrics}, Options{})

	c.Set(ctx, KeyClients, []string{"a"}, 60)
	c.Set(ctx, KeySizes, []string{"30x40"}, 60)
	store.put("other_app_key", "untouched")

	store.setFunc = func(key, value string) error {
		if key == DefaultPrefix+KeyDashboardStats {
			return fmt.Errorf("memory store: %w", coreerrors.ErrQuotaExceeded)
		}
		return nil
	}

	c.Set(ctx, KeyDashboardStats, map[string]int{"orders": 10}, 60)

	assert.False(t, store.has(DefaultPrefix+KeyClients))
	assert.False(t, store.has(DefaultPrefix+KeySizes))
	assert.True(t, store.has("other_app_key"))
	assert.True(t, c.IsDenied(KeyDashboardStats))
	assert.Equal(t, 1, metrics.count("quota_reset"))

	store.setFunc = nil
	c.Set(ctx, KeyDashboardStats, map[string]int{"orders": 11}, 60)
	assert.False(t, store.has(DefaultPrefix+KeyDashboardStats), "denylisted key must not be written again")
}

func TestResponseCache_OtherWriteErrorsAreSwallowed(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	c := newTestCache(t, store, newFakeClock())

	store.setFunc = func(key, value string) error { return errors.New("disk I/O error") }

	assert.NotPanics(t, func() {
		c.Set(ctx, KeyClients, []string{"a"}, 60)
	})
	assert.False(t, c.IsDenied(KeyClients))
}

func TestResponseCache_CorruptEntryReadsAsMiss(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	c := newTestCache(t, store, newFakeClock())

	store.put(DefaultPrefix+KeyClients, "{not json at all")

	var got []client
	assert.NotPanics(t, func() {
		assert.False(t, c.Get(ctx, KeyClients, &got))
	})
	_, ok := c.GetAge(ctx, KeyClients)
	assert.False(t, ok)
}

func TestResponseCache_EntryFromOtherVersionIsEvicted(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	clock := newFakeClock()
	c := newTestCache(t, store, clock)

	store.put(DefaultPrefix+KeyClients, fmt.Sprintf(`{"data":[1],"timestamp":%d,"ttl":600000,"version":"v0"}`, clock.Now().UnixMilli()))

	assert.False(t, c.Get(ctx, KeyClients, nil))
	assert.False(t, store.has(DefaultPrefix+KeyClients))
}

func TestResponseCache_StorageReadErrorIsMiss(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	c := newTestCache(t, store, newFakeClock())
	c.Set(ctx, KeyClients, []string{"a"}, 60)

	store.getErr = errors.New("connection reset")
	assert.False(t, c.Get(ctx, KeyClients, nil))
}

func TestResponseCache_DeleteAndInvalidate(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	c := newTestCache(t, store, newFakeClock())

	c.Set(ctx, KeyClients, 1, 60)
	c.Set(ctx, KeySizes, 2, 60)
	c.Set(ctx, KeyCategories, 3, 60)

	c.Delete(ctx, KeyClients)
	c.Delete(ctx, "never-set")
	assert.False(t, c.IsValid(ctx, KeyClients))

	c.Invalidate(ctx, KeySizes, KeyCategories)
	assert.False(t, c.IsValid(ctx, KeySizes))
	assert.False(t, c.IsValid(ctx, KeyCategories))
}

func TestResponseCache_ClearAllKeepsForeignKeys(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	c := newTestCache(t, store, newFakeClock())

	c.Set(ctx, KeyClients, 1, 60)
	c.Set(ctx, KeySizes, 2, 60)
	store.put("session", "abc")

	c.ClearAll(ctx)

	assert.False(t, store.has(DefaultPrefix+KeyClients))
	assert.False(t, store.has(DefaultPrefix+KeySizes))
	assert.True(t, store.has("session"))
	assert.True(t, store.has(DefaultPrefix+schemaVersionKey))
}

func TestResponseCache_GetAge(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := newTestCache(t, newMockStorage(), clock)

	c.Set(ctx, KeySettings, map[string]string{"currency": "RON"}, 60)
	clock.Advance(7 * time.Minute)

	age, ok := c.GetAge(ctx, KeySettings)
	require.True(t, ok)
	assert.Equal(t, 7*time.Minute, age)

	_, ok = c.GetAge(ctx, "missing")
	assert.False(t, ok)
}

func TestResponseCache_ClearExpired(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	clock := newFakeClock()
	c := newTestCache(t, store, clock)

	c.Set(ctx, KeyClients, 1, 5)
	c.Set(ctx, KeySizes, 2, 60)
	store.put(DefaultPrefix+"broken", "garbage")

	clock.Advance(6 * time.Minute)

	removed := c.ClearExpired(ctx)

	assert.Equal(t, 2, removed)
	assert.False(t, store.has(DefaultPrefix+KeyClients))
	assert.False(t, store.has(DefaultPrefix+"broken"))
	assert.True(t, store.has(DefaultPrefix+KeySizes))
}

func TestResponseCache_KeysErrorIsSwallowed(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	c := newTestCache(t, store, newFakeClock())
	store.keysErr = errors.New("scan failed")

	assert.NotPanics(t, func() {
		c.ClearAll(ctx)
		assert.Equal(t, 0, c.ClearExpired(ctx))
	})
}

func TestResponseCache_Metrics(t *testing.T) {
	ctx := context.Background()
	metrics := newRecordingMetrics()
	c := NewResponseCache(ctx, interfaces.Dependencies{Storage: newMockStorage(), Metrics: metrics}, Options{})

	c.Set(ctx, KeyClients, 1, 60)
	c.Get(ctx, KeyClients, nil)
	c.Get(ctx, "missing", nil)
	c.Set(ctx, KeyOrders, 1, 60)

	assert.Equal(t, 1, metrics.count("hit"))
	assert.Equal(t, 1, metrics.count("miss"))
	assert.Equal(t, 1, metrics.count("denied"))
}

func TestResponseCache_Denylist(t *testing.T) {
	c := NewResponseCache(context.Background(), interfaces.Dependencies{Storage: newMockStorage()}, Options{
		Denylist: []string{"Huge_Report"},
	})

	assert.ElementsMatch(t, []string{"huge_report"}, c.Denylist())
	assert.False(t, c.IsDenied(KeyOrders))
}
