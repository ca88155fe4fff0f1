// ABOUTME: Cache administration handlers
// ABOUTME: Lets the console inspect, invalidate and sweep response cache entries

package handlers

import (
	"context"
	"net/http"
	"sort"

	"bluehand-admin-api/core/cache"

	"github.com/danielgtaylor/huma/v2"
)

// CacheHandler handles response cache administration
type CacheHandler struct {
	cache *cache.ResponseCache
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(c *cache.ResponseCache) *CacheHandler {
	return &CacheHandler{cache: c}
}

// RegisterRoutes registers the cache routes
func (h *CacheHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getCacheOverview",
		Method:      http.MethodGet,
		Path:        "/cache",
		Summary:     "List keys excluded from caching",
		Tags:        []string{"Cache"},
	}, h.Overview)

	huma.Register(api, huma.Operation{
		OperationID: "getCacheEntry",
		Method:      http.MethodGet,
		Path:        "/cache/{key}",
		Summary:     "Inspect a cache entry",
		Tags:        []string{"Cache"},
	}, h.GetEntry)

	huma.Register(api, huma.Operation{
		OperationID: "deleteCacheEntry",
		Method:      http.MethodDelete,
		Path:        "/cache/{key}",
		Summary:     "Delete a cache entry",
		Tags:        []string{"Cache"},
	}, h.DeleteEntry)

	huma.Register(api, huma.Operation{
		OperationID: "clearCache",
		Method:      http.MethodDelete,
		Path:        "/cache",
		Summary:     "Remove every cache entry",
		Tags:        []string{"Cache"},
	}, h.Clear)

	huma.Register(api, huma.Operation{
		OperationID: "invalidateCache",
		Method:      http.MethodPost,
		Path:        "/cache/invalidate",
		Summary:     "Remove the entries for several keys",
		Tags:        []string{"Cache"},
	}, h.Invalidate)

	huma.Register(api, huma.Operation{
		OperationID: "sweepCache",
		Method:      http.MethodPost,
		Path:        "/cache/sweep",
		Summary:     "Remove expired, corrupt and outdated entries",
		Tags:        []string{"Cache"},
	}, h.Sweep)
}

// CacheOverviewOutput describes the cache configuration
type CacheOverviewOutput struct {
	Body struct {
		Denylist []string `json:"denylist"`
	}
}

// Overview handles GET /cache
func (h *CacheHandler) Overview(ctx context.Context, _ *struct{}) (*CacheOverviewOutput, error) {
	out := &CacheOverviewOutput{}
	out.Body.Denylist = h.cache.Denylist()
	sort.Strings(out.Body.Denylist)
	return out, nil
}

// CacheKeyInput selects one logical cache key
type CacheKeyInput struct {
	Key string `path:"key" minLength:"1" maxLength:"256"`
}

// CacheEntryOutput describes one entry
type CacheEntryOutput struct {
	Body struct {
		Key        string   `json:"key"`
		Exists     bool     `json:"exists"`
		Valid      bool     `json:"valid"`
		Denied     bool     `json:"denied"`
		AgeSeconds *float64 `json:"ageSeconds,omitempty"`
	}
}

// GetEntry handles GET /cache/{key}
func (h *CacheHandler) GetEntry(ctx context.Context, input *CacheKeyInput) (*CacheEntryOutput, error) {
	out := &CacheEntryOutput{}
	out.Body.Key = input.Key
	out.Body.Denied = h.cache.IsDenied(input.Key)

	// read the age first: IsValid evicts expired entries
	if age, ok := h.cache.GetAge(ctx, input.Key); ok {
		seconds := age.Seconds()
		out.Body.Exists = true
		out.Body.AgeSeconds = &seconds
	}
	out.Body.Valid = h.cache.IsValid(ctx, input.Key)
	return out, nil
}

// DeleteEntry handles DELETE /cache/{key}
func (h *CacheHandler) DeleteEntry(ctx context.Context, input *CacheKeyInput) (*struct{}, error) {
	h.cache.Delete(ctx, input.Key)
	return nil, nil
}

// Clear handles DELETE /cache
func (h *CacheHandler) Clear(ctx context.Context, _ *struct{}) (*struct{}, error) {
	h.cache.ClearAll(ctx)
	return nil, nil
}

// InvalidateInput lists the keys to drop
type InvalidateInput struct {
	Body struct {
		Keys []string `json:"keys" minItems:"1" maxItems:"100"`
	}
}

// Invalidate handles POST /cache/invalidate
func (h *CacheHandler) Invalidate(ctx context.Context, input *InvalidateInput) (*struct{}, error) {
	h.cache.Invalidate(ctx, input.Body.Keys...)
	return nil, nil
}

// SweepOutput reports a sweep
type SweepOutput struct {
	Body struct {
		Removed int `json:"removed"`
	}
}

// Sweep handles POST /cache/sweep
func (h *CacheHandler) Sweep(ctx context.Context, _ *struct{}) (*SweepOutput, error) {
	out := &SweepOutput{}
	out.Body.Removed = h.cache.ClearExpired(ctx)
	return out, nil
}
