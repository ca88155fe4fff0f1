// ABOUTME: In-process registry of generated AWBs
// ABOUTME: Feeds pending AWBs to the refresh pool on a schedule

package workers

import (
	"context"
	"sort"
	"sync"

	"bluehand-admin-api/core/domain"
	"bluehand-admin-api/core/interfaces"
)

// Registry keeps the AWBs generated by this process. Callers always receive
// copies so refreshes never race with readers.
type Registry struct {
	mu   sync.RWMutex
	awbs map[string]domain.AWBData
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{awbs: make(map[string]domain.AWBData)}
}

// Track registers an AWB, replacing any previous entry with the same number
func (r *Registry) Track(awb *domain.AWBData) {
	if awb == nil || awb.AWBNumber == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.awbs[awb.AWBNumber] = *awb
}

// Update stores a refreshed copy. Unknown AWBs are ignored.
func (r *Registry) Update(awb *domain.AWBData) {
	if awb == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.awbs[awb.AWBNumber]; ok {
		r.awbs[awb.AWBNumber] = *awb
	}
}

// Get returns a copy of the AWB
func (r *Registry) Get(awbNumber string) (*domain.AWBData, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	awb, ok := r.awbs[awbNumber]
	if !ok {
		return nil, false
	}
	return &awb, true
}

// List returns copies of every AWB, newest first
func (r *Registry) List() []*domain.AWBData {
	return r.filter(func(domain.AWBData) bool { return true })
}

// Pending returns copies of the AWBs that may still change status
func (r *Registry) Pending() []*domain.AWBData {
	return r.filter(func(a domain.AWBData) bool { return !a.Status.IsFinal() })
}

func (r *Registry) filter(keep func(domain.AWBData) bool) []*domain.AWBData {
	r.mu.RLock()
	out := make([]*domain.AWBData, 0, len(r.awbs))
	for _, awb := range r.awbs {
		if keep(awb) {
			a := awb
			out = append(out, &a)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].GeneratedAt.Equal(out[j].GeneratedAt) {
			return out[i].AWBNumber > out[j].AWBNumber
		}
		return out[i].GeneratedAt.After(out[j].GeneratedAt)
	})
	return out
}

// TrackingRefresh refreshes every pending AWB in the registry through the
// worker pool. It is scheduled periodically.
type TrackingRefresh struct {
	registry *Registry
	worker   *RefreshWorker
	logger   interfaces.Logger
}

// NewTrackingRefresh creates the periodic tracking job
func NewTrackingRefresh(registry *Registry, worker *RefreshWorker, logger interfaces.Logger) *TrackingRefresh {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &TrackingRefresh{registry: registry, worker: worker, logger: logger}
}

// Run performs one refresh pass
func (t *TrackingRefresh) Run(ctx context.Context) error {
	pending := t.registry.Pending()
	if len(pending) == 0 {
		return nil
	}

	results, err := t.worker.Refresh(ctx, pending)
	if err != nil {
		return err
	}

	var updated, failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		if !res.Skipped {
			t.registry.Update(res.AWB)
			updated++
		}
	}

	t.logger.Info("Tracking refresh completed", map[string]interface{}{
		"pending": len(pending),
		"updated": updated,
		"failed":  failed,
	})
	return nil
}
