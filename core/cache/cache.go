// ABOUTME: Local response cache over a persistent key/value store with TTL expiry
// ABOUTME: Fail-open by contract: every failure degrades to a miss or a dropped write

// Package cache implements the response cache used by data-fetch helpers to
// avoid refetching semi-static data. Entries are JSON envelopes stored under a
// fixed key prefix. The cache never returns errors: a failed read is a miss and
// a failed write is dropped, because cached data is only ever an optimisation
// over a network fetch.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"bluehand-admin-api/core/errors"
	"bluehand-admin-api/core/interfaces"
)

const (
	// DefaultPrefix namespaces every key written by the cache
	DefaultPrefix = "bluehand_cache_"

	// DefaultVersion is the schema version stamped on every entry
	DefaultVersion = "v1"

	// DefaultMaxEntryBytes is the largest serialized entry that will be stored
	DefaultMaxEntryBytes = 2 * 1024 * 1024

	schemaVersionKey = "__schema_version"
)

// Logical cache keys used by the admin data-fetch helpers
const (
	KeyPaintings      = "paintings"
	KeyOrders         = "orders"
	KeyClients        = "clients"
	KeyCategories     = "categories"
	KeySizes          = "sizes"
	KeySettings       = "settings"
	KeyDashboardStats = "dashboard_stats"
)

// DefaultDenylist holds the tables too large to cache
var DefaultDenylist = []string{KeyOrders, KeyPaintings}

// Entry is the envelope persisted for every cached value
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // epoch millis
	TTL       int64           `json:"ttl"`       // millis
	Version   string          `json:"version,omitempty"`
}

// Age returns the time elapsed since the entry was written
func (e Entry) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-e.Timestamp) * time.Millisecond
}

// Expired reports whether the entry has outlived its TTL
func (e Entry) Expired(now time.Time) bool {
	return now.UnixMilli()-e.Timestamp > e.TTL
}

// Options configures a ResponseCache. Zero values select the defaults.
type Options struct {
	Prefix        string
	Version       string
	MaxEntryBytes int
	Denylist      []string
	Now           func() time.Time
}

// ResponseCache is a size-bounded, TTL-expiring cache backed by interfaces.Storage
type ResponseCache struct {
	store         interfaces.Storage
	logger        interfaces.Logger
	metrics       interfaces.Metrics
	prefix        string
	version       string
	maxEntryBytes int
	now           func() time.Time

	// mu serialises read-modify-write sequences and guards denylist
	mu       sync.Mutex
	denylist map[string]struct{}
}

// NewResponseCache creates a cache over deps.Storage and reconciles the stored
// schema version: when it differs from opts.Version every entry under the
// prefix is removed.
func NewResponseCache(ctx context.Context, deps interfaces.Dependencies, opts Options) *ResponseCache {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.MaxEntryBytes <= 0 {
		opts.MaxEntryBytes = DefaultMaxEntryBytes
	}
	if opts.Denylist == nil {
		opts.Denylist = DefaultDenylist
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &ResponseCache{
		store:         deps.Storage,
		logger:        deps.LoggerOrNop(),
		metrics:       deps.MetricsOrNop(),
		prefix:        opts.Prefix,
		version:       opts.Version,
		maxEntryBytes: opts.MaxEntryBytes,
		now:           opts.Now,
		denylist:      make(map[string]struct{}, len(opts.Denylist)),
	}
	for _, key := range opts.Denylist {
		c.denylist[normalizeKey(key)] = struct{}{}
	}

	c.ensureSchema(ctx)
	return c
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (c *ResponseCache) storageKey(key string) string {
	return c.prefix + key
}

func (c *ResponseCache) ensureSchema(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	schemaKey := c.storageKey(schemaVersionKey)
	stored, found, err := c.store.GetItem(ctx, schemaKey)
	if err != nil {
		c.logger.Warn("Failed to read cache schema version", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if found && stored == c.version {
		return
	}

	if found {
		c.logger.Info("Cache schema version changed, clearing cache", map[string]interface{}{
			"from": stored,
			"to":   c.version,
		})
	}
	c.clearAllLocked(ctx)

	if err := c.store.SetItem(ctx, schemaKey, c.version); err != nil {
		c.logger.Warn("Failed to write cache schema version", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Set stores data under key for ttlMinutes. Denylisted keys and entries larger
// than the size ceiling are skipped. When the store reports its quota is
// exhausted the whole cache namespace is cleared and key is denylisted.
func (c *ResponseCache) Set(ctx context.Context, key string, data interface{}, ttlMinutes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isDeniedLocked(key) {
		c.metrics.CacheEvent("denied")
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		c.logger.Warn("Failed to marshal cache value", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}

	serialized, err := json.Marshal(Entry{
		Data:      payload,
		Timestamp: c.now().UnixMilli(),
		TTL:       int64(ttlMinutes) * int64(time.Minute/time.Millisecond),
		Version:   c.version,
	})
	if err != nil {
		c.logger.Warn("Failed to marshal cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}

	if len(serialized) > c.maxEntryBytes {
		c.metrics.CacheEvent("oversized")
		c.logger.Warn("Cache entry too large, skipping", map[string]interface{}{
			"key":       key,
			"size":      len(serialized),
			"max_bytes": c.maxEntryBytes,
		})
		return
	}

	err = c.store.SetItem(ctx, c.storageKey(key), string(serialized))
	if err == nil {
		return
	}

	if errors.IsQuotaExceeded(err) {
		c.metrics.CacheEvent("quota_reset")
		c.logger.Warn("Cache storage quota exceeded, clearing cache and denylisting key", map[string]interface{}{
			"key": key,
		})
		c.clearAllLocked(ctx)
		c.denylist[normalizeKey(key)] = struct{}{}
		return
	}

	c.metrics.CacheEvent("write_error")
	c.logger.Error("Failed to write cache entry", map[string]interface{}{
		"key":   key,
		"error": err.Error(),
	})
}

// Get decodes the cached value for key into dest and reports whether it was
// found. Expired entries and entries written under another schema version are
// removed. dest may be nil to only test presence.
func (c *ResponseCache) Get(ctx context.Context, key string, dest interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.readLocked(ctx, key)
	if !ok {
		c.metrics.CacheEvent("miss")
		return false
	}

	if dest != nil {
		if err := json.Unmarshal(entry.Data, dest); err != nil {
			c.metrics.CacheEvent("miss")
			c.logger.Warn("Failed to decode cached value", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			return false
		}
	}

	c.metrics.CacheEvent("hit")
	return true
}

// readLocked loads and validates the entry for key. c.mu must be held.
func (c *ResponseCache) readLocked(ctx context.Context, key string) (Entry, bool) {
	raw, found, err := c.store.GetItem(ctx, c.storageKey(key))
	if err != nil {
		c.logger.Warn("Failed to read cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return Entry{}, false
	}
	if !found {
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.metrics.CacheEvent("corrupt")
		c.logger.Warn("Corrupt cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return Entry{}, false
	}

	if entry.Version != c.version {
		c.metrics.CacheEvent("version_evicted")
		c.removeLocked(ctx, key)
		return Entry{}, false
	}

	if entry.Expired(c.now()) {
		c.metrics.CacheEvent("expired")
		c.removeLocked(ctx, key)
		return Entry{}, false
	}

	return entry, true
}

func (c *ResponseCache) removeLocked(ctx context.Context, key string) {
	if err := c.store.RemoveItem(ctx, c.storageKey(key)); err != nil {
		c.logger.Warn("Failed to remove cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// Delete removes the entry for key
func (c *ResponseCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(ctx, key)
}

// Invalidate removes the entries for every key
func (c *ResponseCache) Invalidate(ctx context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		c.removeLocked(ctx, key)
	}
}

// ClearAll removes every entry under the cache prefix
func (c *ResponseCache) ClearAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearAllLocked(ctx)
}

func (c *ResponseCache) clearAllLocked(ctx context.Context) {
	for _, key := range c.entryKeysLocked(ctx) {
		c.removeLocked(ctx, key)
	}
}

// entryKeysLocked lists the logical keys of all entries under the prefix
func (c *ResponseCache) entryKeysLocked(ctx context.Context) []string {
	all, err := c.store.Keys(ctx)
	if err != nil {
		c.logger.Warn("Failed to list cache keys", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	keys := make([]string, 0, len(all))
	for _, k := range all {
		if !strings.HasPrefix(k, c.prefix) {
			continue
		}
		logical := strings.TrimPrefix(k, c.prefix)
		if logical == schemaVersionKey {
			continue
		}
		keys = append(keys, logical)
	}
	return keys
}

// GetAge returns how long ago the entry for key was written.
// It reports false when the entry is absent or unreadable.
func (c *ResponseCache) GetAge(ctx context.Context, key string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, found, err := c.store.GetItem(ctx, c.storageKey(key))
	if err != nil || !found {
		return 0, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return 0, false
	}
	return entry.Age(c.now()), true
}

// IsValid reports whether a live entry exists for key
func (c *ResponseCache) IsValid(ctx context.Context, key string) bool {
	return c.Get(ctx, key, nil)
}

// ClearExpired sweeps the namespace and removes expired, corrupt and
// out-of-version entries. It returns the number of entries removed.
func (c *ResponseCache) ClearExpired(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, key := range c.entryKeysLocked(ctx) {
		raw, found, err := c.store.GetItem(ctx, c.storageKey(key))
		if err != nil || !found {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil ||
			entry.Version != c.version || entry.Expired(now) {
			c.removeLocked(ctx, key)
			removed++
		}
	}

	if removed > 0 {
		c.logger.Debug("Cleared expired cache entries", map[string]interface{}{
			"removed": removed,
		})
	}
	return removed
}

// IsDenied reports whether key is excluded from caching
func (c *ResponseCache) IsDenied(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isDeniedLocked(key)
}

func (c *ResponseCache) isDeniedLocked(key string) bool {
	_, denied := c.denylist[normalizeKey(key)]
	return denied
}

// Denylist returns the keys currently excluded from caching
func (c *ResponseCache) Denylist() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.denylist))
	for k := range c.denylist {
		keys = append(keys, k)
	}
	return keys
}
