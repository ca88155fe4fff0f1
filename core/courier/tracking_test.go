package courier

import (
	"context"
	"net/http"
	"testing"
	"time"

	"bluehand-admin-api/core/domain"
	"bluehand-admin-api/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackAWB_NormalizesEvents(t *testing.T) {
	f := newFakeCourier(t)
	f.set(func(f *fakeCourier) {
		f.trackBody = `{"events":[
			{"date":"2025-03-15 10:30:00","status":"Livrat","location":"Cluj-Napoca","description":"Expeditie livrata"},
			{"date":"2025-03-14 18:00:00","status":"In tranzit","location":"Bucuresti"}
		]}`
	})
	svc := newTestService(f, validCredentials())

	result, err := svc.TrackAWB(context.Background(), "2150000123")
	require.NoError(t, err)

	require.Len(t, result.Events, 2)
	assert.Equal(t, "Livrat", result.Status)
	assert.Equal(t, "Expeditie livrata", result.Events[0].Description)
	assert.Equal(t, "In tranzit", result.Events[1].Description, "description defaults to status")

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []string{"2150000123"}, f.lastQuery["awb"])
}

func TestTrackAWB_MissingOrInvalidEvents(t *testing.T) {
	for _, body := range []string{`{}`, `{"events":null}`, `{"events":"none"}`, `{"events":{"a":1}}`} {
		t.Run(body, func(t *testing.T) {
			f := newFakeCourier(t)
			f.set(func(f *fakeCourier) { f.trackBody = body })
			svc := newTestService(f, validCredentials())

			result, err := svc.TrackAWB(context.Background(), "2150000123")
			require.NoError(t, err)
			assert.NotNil(t, result.Events)
			assert.Empty(t, result.Events)
			assert.Empty(t, result.Status)
		})
	}
}

func TestTrackAWB_SortsNewestFirst(t *testing.T) {
	body := `{"events":[
		{"date":"2025-03-14 08:00:00","status":"Preluat"},
		{"date":"2025-03-15 10:30:00","status":"Livrat"},
		{"date":"2025-03-14 18:00:00","status":"In tranzit"}
	]}`

	t.Run("sorted by date", func(t *testing.T) {
		f := newFakeCourier(t)
		f.set(func(f *fakeCourier) { f.trackBody = body })
		svc := newTestService(f, validCredentials())

		result, err := svc.TrackAWB(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, "Livrat", result.Status)
		assert.Equal(t, []string{"Livrat", "In tranzit", "Preluat"}, statuses(result.Events))
	})

	t.Run("upstream order when disabled", func(t *testing.T) {
		f := newFakeCourier(t)
		f.set(func(f *fakeCourier) { f.trackBody = body })
		svc := newTestService(f, validCredentials(), WithSortEventsByDate(false))

		result, err := svc.TrackAWB(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, "Preluat", result.Status)
	})

	t.Run("upstream order when a date does not parse", func(t *testing.T) {
		f := newFakeCourier(t)
		f.set(func(f *fakeCourier) {
			f.trackBody = `{"events":[
				{"date":"yesterday","status":"Preluat"},
				{"date":"2025-03-15 10:30:00","status":"Livrat"}
			]}`
		})
		svc := newTestService(f, validCredentials())

		result, err := svc.TrackAWB(context.Background(), "1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Preluat", "Livrat"}, statuses(result.Events))
	})
}

func TestTrackAWB_Errors(t *testing.T) {
	f := newFakeCourier(t)
	f.set(func(f *fakeCourier) {
		f.trackStatus = http.StatusInternalServerError
		f.trackBody = `{"error":"upstream down"}`
	})
	svc := newTestService(f, validCredentials())

	_, err := svc.TrackAWB(context.Background(), "2150000123")
	require.Error(t, err)
	assert.True(t, errors.IsExternalAPI(err))
	assert.Contains(t, err.Error(), "upstream down")

	_, err = svc.TrackAWB(context.Background(), "")
	assert.True(t, errors.IsValidation(err))
}

func TestMapStatus(t *testing.T) {
	tests := map[string]domain.AWBStatus{
		"":                    domain.AWBStatusPending,
		"Livrat":              domain.AWBStatusDelivered,
		"Delivered":           domain.AWBStatusDelivered,
		"Nelivrat - adresa":   domain.AWBStatusInTransit,
		"Returnat expeditor":  domain.AWBStatusReturned,
		"Anulat":              domain.AWBStatusCancelled,
		"In tranzit":          domain.AWBStatusInTransit,
		"Preluat de curier":   domain.AWBStatusInTransit,
		"  LIVRAT  ":          domain.AWBStatusDelivered,
		"Shipment cancelled":  domain.AWBStatusCancelled,
		"Return to sender":    domain.AWBStatusReturned,
		"Undelivered, retry":  domain.AWBStatusInTransit,
		"Depozit Bucuresti 2": domain.AWBStatusInTransit,
	}

	for raw, want := range tests {
		assert.Equal(t, want, MapStatus(raw), raw)
	}
}

func TestRefreshAWB(t *testing.T) {
	f := newFakeCourier(t)
	f.set(func(f *fakeCourier) {
		f.trackBody = `{"events":[{"date":"2025-03-15 10:30:00","status":"Livrat"}]}`
	})
	clock := newTestClock()
	svc := newTestService(f, validCredentials(), WithClock(clock.Now))

	awb := domain.NewAWBData("2150000123", DefaultTrackingURLTemplate, clock.Now())
	clock.Advance(2 * time.Hour)

	require.NoError(t, svc.RefreshAWB(context.Background(), awb))
	assert.Equal(t, domain.AWBStatusDelivered, awb.Status)
	require.NotNil(t, awb.LastUpdate)
	assert.Equal(t, clock.Now(), *awb.LastUpdate)
}

func TestRefreshAWB_NoEventsKeepsStatus(t *testing.T) {
	f := newFakeCourier(t)
	svc := newTestService(f, validCredentials())

	awb := domain.NewAWBData("2150000123", DefaultTrackingURLTemplate, time.Now())
	require.NoError(t, svc.RefreshAWB(context.Background(), awb))
	assert.Equal(t, domain.AWBStatusPending, awb.Status)
	assert.Nil(t, awb.LastUpdate)

	assert.True(t, errors.IsValidation(svc.RefreshAWB(context.Background(), nil)))
}

func statuses(events []domain.TrackingEvent) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Status
	}
	return out
}
