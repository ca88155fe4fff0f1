// ABOUTME: Get-or-load helper on top of the response cache
// ABOUTME: Loader errors propagate; cache failures never do

package cache

import "context"

// Fetch returns the cached value for key, or calls loader and caches its
// result for ttlMinutes. Loader errors are returned and nothing is cached.
// A nil cache always calls loader.
func Fetch[T any](ctx context.Context, c *ResponseCache, key string, ttlMinutes int, loader func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	if c != nil && c.Get(ctx, key, &cached) {
		return cached, nil
	}

	value, err := loader(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if c != nil {
		c.Set(ctx, key, value, ttlMinutes)
	}
	return value, nil
}
