package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"bluehand-admin-api/core/domain"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stripSchema drops the $schema link huma adds to JSON bodies
func stripSchema(t *testing.T, body []byte) string {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &m))
	delete(m, "$schema")
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}

func TestShipmentHandler_Estimate(t *testing.T) {
	_, api := humatest.New(t)
	NewShipmentHandler().RegisterRoutes(api)

	resp := api.Post("/shipments/estimate", map[string]interface{}{
		"items": []map[string]interface{}{
			{"size": "60x90", "quantity": 2},
			{"size": "30x40", "quantity": 1},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"dimensions":{"length":100,"height":10,"width":70},"weight":1.5}`, stripSchema(t, resp.Body.Bytes()))
}

func TestShipmentHandler_ParseAddress(t *testing.T) {
	_, api := humatest.New(t)
	NewShipmentHandler().RegisterRoutes(api)

	resp := api.Post("/address/parse", map[string]interface{}{
		"address":    "Strada Lalelelor, nr. 12B, Cluj-Napoca, Cluj",
		"postalCode": "400000",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var addr domain.Address
	decode(t, resp.Body.Bytes(), &addr)
	assert.Equal(t, domain.Address{
		County:   "Cluj",
		Locality: "Cluj-Napoca",
		Street:   "Strada Lalelelor",
		StreetNo: "12B",
		ZipCode:  "400000",
	}, addr)
}
