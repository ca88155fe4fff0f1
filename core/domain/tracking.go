// ABOUTME: Tracking events and results returned by the courier
// ABOUTME: Events are normalized before they reach handlers

package domain

// TrackingEvent is one normalized courier scan
type TrackingEvent struct {
	Date        string `json:"date"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// TrackingResult is the normalized response of a tracking query
type TrackingResult struct {
	// Status is the raw status of the most recent event, empty when there are no events
	Status string          `json:"status"`
	Events []TrackingEvent `json:"events"`
}
