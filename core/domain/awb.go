// ABOUTME: AWB domain model represents a courier waybill issued for one shipment
// ABOUTME: Tracks status transitions applied by tracking refreshes

package domain

import (
	"fmt"
	"time"
)

// AWBStatus is the lifecycle state of a shipment
type AWBStatus string

const (
	AWBStatusPending   AWBStatus = "pending"
	AWBStatusInTransit AWBStatus = "in_transit"
	AWBStatusDelivered AWBStatus = "delivered"
	AWBStatusReturned  AWBStatus = "returned"
	AWBStatusCancelled AWBStatus = "cancelled"
)

// IsValid reports whether s is one of the known statuses
func (s AWBStatus) IsValid() bool {
	switch s {
	case AWBStatusPending, AWBStatusInTransit, AWBStatusDelivered, AWBStatusReturned, AWBStatusCancelled:
		return true
	}
	return false
}

// IsFinal reports whether no further tracking updates are expected
func (s AWBStatus) IsFinal() bool {
	return s == AWBStatusDelivered || s == AWBStatusReturned || s == AWBStatusCancelled
}

// AWBData is the waybill attached to an order once generation succeeds
type AWBData struct {
	// AWBNumber is the courier-issued identifier
	AWBNumber string `json:"awbNumber"`

	// GeneratedAt is when the AWB was issued
	GeneratedAt time.Time `json:"generatedAt"`

	// TrackingURL is the public tracking page
	TrackingURL string `json:"trackingUrl"`

	// Status is the last known shipment status
	Status AWBStatus `json:"status"`

	// LastUpdate is when Status was last refreshed
	LastUpdate *time.Time `json:"lastUpdate,omitempty"`

	// LabelURL points at a stored copy of the printable label, if any
	LabelURL string `json:"labelUrl,omitempty"`
}

// NewAWBData creates a pending AWB record
func NewAWBData(awbNumber, trackingURLTemplate string, now time.Time) *AWBData {
	return &AWBData{
		AWBNumber:   awbNumber,
		GeneratedAt: now,
		TrackingURL: fmt.Sprintf(trackingURLTemplate, awbNumber),
		Status:      AWBStatusPending,
	}
}

// UpdateStatus applies a tracking refresh
func (a *AWBData) UpdateStatus(status AWBStatus, at time.Time) {
	a.Status = status
	a.LastUpdate = &at
}
