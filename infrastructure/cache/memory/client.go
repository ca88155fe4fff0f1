// ABOUTME: In-memory key/value storage backed by patrickmn/go-cache
// ABOUTME: Enforces a byte quota so the response cache sees realistic quota-exceeded failures

package memory

import (
	"context"
	"fmt"
	"sync"

	"bluehand-admin-api/core/errors"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultQuotaBytes mirrors the usual per-origin local storage allowance
const DefaultQuotaBytes = 5 << 20

// Storage implements interfaces.Storage in process memory. Items never
// expire on their own; the response cache tracks TTLs inside its entries.
type Storage struct {
	items *gocache.Cache
	quota int64

	mu   sync.Mutex
	used int64
}

// NewStorage creates a store holding at most quotaBytes of keys and values.
// A quota of zero or less selects DefaultQuotaBytes.
func NewStorage(quotaBytes int64) *Storage {
	if quotaBytes <= 0 {
		quotaBytes = DefaultQuotaBytes
	}
	return &Storage{
		items: gocache.New(gocache.NoExpiration, 0),
		quota: quotaBytes,
	}
}

// GetItem retrieves a value
func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	v, ok := s.items.Get(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

// SetItem stores a value, failing with a quota error when the store is full
func (s *Storage) SetItem(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	size := itemSize(key, value)
	var previous int64
	if old, ok := s.items.Get(key); ok {
		previous = itemSize(key, old.(string))
	}

	if s.used-previous+size > s.quota {
		return fmt.Errorf("memory storage: %d of %d bytes used, %d more requested: %w",
			s.used, s.quota, size-previous, errors.ErrQuotaExceeded)
	}

	s.items.Set(key, value, gocache.NoExpiration)
	s.used += size - previous
	return nil
}

// RemoveItem deletes a key
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.items.Get(key); ok {
		s.used -= itemSize(key, old.(string))
		s.items.Delete(key)
	}
	return nil
}

// Keys lists every stored key
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := s.items.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	return keys, nil
}

// Used returns the number of bytes currently stored
func (s *Storage) Used() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}

// Quota returns the configured capacity in bytes
func (s *Storage) Quota() int64 {
	return s.quota
}

// Stats reports entry count and byte usage for the health endpoint
func (s *Storage) Stats(ctx context.Context) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"backend":       "memory",
		"total_entries": s.items.ItemCount(),
		"used_bytes":    s.Used(),
		"quota_bytes":   s.quota,
	}, nil
}

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

func itemSize(key, value string) int64 {
	return int64(len(key) + len(value))
}
