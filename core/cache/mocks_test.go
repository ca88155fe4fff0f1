package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// mockStorage is an in-memory Storage with injectable failures
type mockStorage struct {
	mu       sync.Mutex
	items    map[string]string
	setFunc  func(key, value string) error
	getErr   error
	keysErr  error
	removals []string
}

func newMockStorage() *mockStorage {
	return &mockStorage{items: make(map[string]string)}
}

func (m *mockStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *mockStorage) SetItem(ctx context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setFunc != nil {
		if err := m.setFunc(key, value); err != nil {
			return err
		}
	}
	m.items[key] = value
	return nil
}

func (m *mockStorage) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removals = append(m.removals, key)
	delete(m.items, key)
	return nil
}

func (m *mockStorage) Keys(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keysErr != nil {
		return nil, m.keysErr
	}
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *mockStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

func (m *mockStorage) put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
}

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingMetrics counts cache events
type recordingMetrics struct {
	mu     sync.Mutex
	events map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{events: make(map[string]int)}
}

func (r *recordingMetrics) CacheEvent(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event]++
}

func (r *recordingMetrics) CourierRequest(string, int, time.Duration) {}

func (r *recordingMetrics) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[event]
}
