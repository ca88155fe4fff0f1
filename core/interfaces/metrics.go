package interfaces

import "time"

// Metrics receives counters and timings from the cache and courier services.
type Metrics interface {
	// CacheEvent counts a cache event such as "hit", "miss", "expired" or "quota_reset".
	CacheEvent(event string)

	// CourierRequest records one call against the courier API.
	CourierRequest(endpoint string, statusCode int, duration time.Duration)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) CacheEvent(string)                          {}
func (NopMetrics) CourierRequest(string, int, time.Duration) {}
