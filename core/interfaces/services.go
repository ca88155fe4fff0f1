// ABOUTME: Service interfaces for the core business logic
// ABOUTME: Defines contracts consumed by the API handlers and workers

package interfaces

import (
	"context"

	"bluehand-admin-api/core/domain"
)

// CourierService is the courier integration used by handlers and workers
type CourierService interface {
	GenerateAWB(ctx context.Context, info domain.ShipmentInfo) (string, error)
	GenerateAWBForOrder(ctx context.Context, order domain.Order) (*domain.AWBData, error)
	GetAWBLabel(ctx context.Context, awbNumber string, format domain.LabelFormat) (*domain.Label, error)
	TrackAWB(ctx context.Context, awbNumber string) (*domain.TrackingResult, error)
	RefreshAWB(ctx context.Context, awb *domain.AWBData) error
}

// AWBRefresher updates the tracking state of a single AWB
type AWBRefresher interface {
	RefreshAWB(ctx context.Context, awb *domain.AWBData) error
}
