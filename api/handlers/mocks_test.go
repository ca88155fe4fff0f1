package handlers

import (
	"context"
	"sync"
	"testing"

	"bluehand-admin-api/core/cache"
	"bluehand-admin-api/core/domain"
	"bluehand-admin-api/core/interfaces"
	"bluehand-admin-api/infrastructure/cache/memory"
)

// mockCourier implements interfaces.CourierService
type mockCourier struct {
	GenerateAWBFunc         func(ctx context.Context, info domain.ShipmentInfo) (string, error)
	GenerateAWBForOrderFunc func(ctx context.Context, order domain.Order) (*domain.AWBData, error)
	GetAWBLabelFunc         func(ctx context.Context, awb string, format domain.LabelFormat) (*domain.Label, error)
	TrackAWBFunc            func(ctx context.Context, awb string) (*domain.TrackingResult, error)

	mu         sync.Mutex
	trackCalls int
	resets     int
}

func (m *mockCourier) GenerateAWB(ctx context.Context, info domain.ShipmentInfo) (string, error) {
	return m.GenerateAWBFunc(ctx, info)
}

func (m *mockCourier) GenerateAWBForOrder(ctx context.Context, order domain.Order) (*domain.AWBData, error) {
	return m.GenerateAWBForOrderFunc(ctx, order)
}

func (m *mockCourier) GetAWBLabel(ctx context.Context, awb string, format domain.LabelFormat) (*domain.Label, error) {
	return m.GetAWBLabelFunc(ctx, awb, format)
}

func (m *mockCourier) TrackAWB(ctx context.Context, awb string) (*domain.TrackingResult, error) {
	m.mu.Lock()
	m.trackCalls++
	m.mu.Unlock()
	return m.TrackAWBFunc(ctx, awb)
}

func (m *mockCourier) RefreshAWB(ctx context.Context, awb *domain.AWBData) error {
	return nil
}

func (m *mockCourier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
}

// mockSettings implements CourierSettingsStore
type mockSettings struct {
	current *domain.FanCourierSettings
	loadErr error
	saveErr error
	saved   []domain.FanCourierSettings
}

func (m *mockSettings) CourierSettings(ctx context.Context) (*domain.FanCourierSettings, error) {
	return m.current, m.loadErr
}

func (m *mockSettings) SaveCourierSettings(ctx context.Context, s domain.FanCourierSettings) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, s)
	m.current = &s
	return nil
}

func newMemoryCache(t *testing.T) *cache.ResponseCache {
	t.Helper()
	return cache.NewResponseCache(context.Background(), interfaces.Dependencies{
		Storage: memory.NewStorage(0),
	}, cache.Options{})
}
