// ABOUTME: Storage interface for the persistent key/value store behind the response cache
// ABOUTME: Models a synchronous, string-keyed store with a fixed capacity

package interfaces

import "context"

// Storage defines a persistent string key/value store.
// Implementations can be in-memory, SQLite, Redis, or anything else that
// behaves like a small, origin-scoped local store.
//
// Example usage:
//
//	if err := store.SetItem(ctx, "bluehand_cache_clients", payload); err != nil {
//		if errors.IsQuotaExceeded(err) {
//			// the store is full
//		}
//	}
//
//	value, ok, err := store.GetItem(ctx, "bluehand_cache_clients")
type Storage interface {
	// GetItem returns the stored value and true, or "" and false when the key is absent.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem stores value under key, replacing any previous value.
	// When the write would exceed the store's capacity the returned error
	// must satisfy errors.IsQuotaExceeded.
	SetItem(ctx context.Context, key string, value string) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Keys lists every key currently held by the store.
	Keys(ctx context.Context) ([]string, error)
}
