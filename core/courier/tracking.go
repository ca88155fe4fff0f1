// ABOUTME: AWB tracking history, event ordering and status mapping
// ABOUTME: Refreshes the stored status of generated AWBs

package courier

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"bluehand-admin-api/core/domain"
	"bluehand-admin-api/core/errors"
	timeutil "bluehand-admin-api/pkg/utils/time"

	"github.com/tidwall/gjson"
)

// TrackAWB fetches the scan history for an AWB. The current status is the
// status of the most recent event.
func (s *Service) TrackAWB(ctx context.Context, awbNumber string) (*domain.TrackingResult, error) {
	awbNumber = strings.TrimSpace(awbNumber)
	if awbNumber == "" {
		return nil, &errors.ValidationError{Field: "awb", Message: "AWB number is required"}
	}

	resp, err := s.call(ctx, "tracking", http.MethodGet, "/reports/awb/tracking?awb="+url.QueryEscape(awbNumber), nil, true)
	if err != nil {
		s.logger.Error("AWB tracking request failed", map[string]interface{}{
			"awb":   awbNumber,
			"error": err.Error(),
		})
		return nil, transportError(err, "tracking")
	}

	if !resp.ok() {
		apiErr := apiError(resp, "tracking failed")
		s.logger.Error("AWB tracking rejected", map[string]interface{}{
			"awb":    awbNumber,
			"status": resp.statusCode,
			"error":  apiErr.Message,
		})
		return nil, apiErr
	}

	events := parseEvents(resp.body)
	if s.sortEventsByDate {
		sortEventsNewestFirst(events)
	}

	result := &domain.TrackingResult{Events: events}
	if len(events) > 0 {
		result.Status = events[0].Status
	}
	return result, nil
}

func parseEvents(body []byte) []domain.TrackingEvent {
	raw := gjson.GetBytes(body, "events")
	if !raw.IsArray() {
		return []domain.TrackingEvent{}
	}

	items := raw.Array()
	events := make([]domain.TrackingEvent, 0, len(items))
	for _, item := range items {
		ev := domain.TrackingEvent{
			Date:        item.Get("date").String(),
			Status:      item.Get("status").String(),
			Location:    item.Get("location").String(),
			Description: item.Get("description").String(),
		}
		if ev.Description == "" {
			ev.Description = ev.Status
		}
		events = append(events, ev)
	}
	return events
}

// sortEventsNewestFirst orders events by date when every date parses and
// leaves the upstream order untouched otherwise.
func sortEventsNewestFirst(events []domain.TrackingEvent) {
	dates := make([]time.Time, len(events))
	for i, ev := range events {
		t, ok := timeutil.Parse(ev.Date)
		if !ok {
			return
		}
		dates[i] = t
	}

	idx := make([]int, len(events))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return dates[idx[a]].After(dates[idx[b]])
	})

	sorted := make([]domain.TrackingEvent, len(events))
	for i, j := range idx {
		sorted[i] = events[j]
	}
	copy(events, sorted)
}

// MapStatus converts a raw courier status into an AWBStatus
func MapStatus(raw string) domain.AWBStatus {
	status := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case status == "":
		return domain.AWBStatusPending
	case strings.Contains(status, "retur") || strings.Contains(status, "return"):
		return domain.AWBStatusReturned
	case strings.Contains(status, "anulat") || strings.Contains(status, "cancel"):
		return domain.AWBStatusCancelled
	case strings.Contains(status, "nelivrat") || strings.Contains(status, "undeliver") || strings.Contains(status, "not delivered"):
		return domain.AWBStatusInTransit
	case strings.Contains(status, "livrat") || strings.Contains(status, "deliver"):
		return domain.AWBStatusDelivered
	default:
		return domain.AWBStatusInTransit
	}
}

// RefreshAWB updates awb from its latest tracking event. AWBs without any
// events keep their current status.
func (s *Service) RefreshAWB(ctx context.Context, awb *domain.AWBData) error {
	if awb == nil {
		return &errors.ValidationError{Field: "awb", Message: "AWB is required"}
	}

	result, err := s.TrackAWB(ctx, awb.AWBNumber)
	if err != nil {
		return err
	}
	if result.Status == "" {
		return nil
	}

	awb.UpdateStatus(MapStatus(result.Status), s.now())
	return nil
}
