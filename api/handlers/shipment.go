// ABOUTME: Shipment estimate and address parsing endpoints
// ABOUTME: Expose the parcel heuristics without calling the courier

package handlers

import (
	"context"
	"net/http"

	"bluehand-admin-api/core/courier"
	"bluehand-admin-api/core/domain"

	"github.com/danielgtaylor/huma/v2"
)

// ShipmentHandler exposes the parcel heuristics so the console can preview
// a shipment before requesting an AWB. It needs no courier credentials.
type ShipmentHandler struct{}

// NewShipmentHandler creates a new shipment handler
func NewShipmentHandler() *ShipmentHandler {
	return &ShipmentHandler{}
}

// RegisterRoutes registers the shipment routes
func (h *ShipmentHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "estimateShipment",
		Method:      http.MethodPost,
		Path:        "/shipments/estimate",
		Summary:     "Estimate package size and weight for order items",
		Tags:        []string{"Shipments"},
	}, h.Estimate)

	huma.Register(api, huma.Operation{
		OperationID: "parseAddress",
		Method:      http.MethodPost,
		Path:        "/address/parse",
		Summary:     "Split a free-form address into courier fields",
		Tags:        []string{"Shipments"},
	}, h.ParseAddress)
}

// EstimateItem is one order line used for the estimate
type EstimateItem struct {
	Size     string `json:"size,omitempty" doc:"Canvas size such as 60x90"`
	Quantity int    `json:"quantity,omitempty" minimum:"0"`
}

// EstimateInput is the request for POST /shipments/estimate
type EstimateInput struct {
	Body struct {
		Items []EstimateItem `json:"items" maxItems:"500"`
	}
}

// EstimateOutput is the estimated package
type EstimateOutput struct {
	Body struct {
		Dimensions domain.ShipmentDimensions `json:"dimensions"`
		Weight     float64                   `json:"weight"`
	}
}

// Estimate handles POST /shipments/estimate
func (h *ShipmentHandler) Estimate(ctx context.Context, input *EstimateInput) (*EstimateOutput, error) {
	items := make([]domain.OrderItem, len(input.Body.Items))
	for i, it := range input.Body.Items {
		items[i] = domain.OrderItem{Size: it.Size, Quantity: it.Quantity}
	}

	out := &EstimateOutput{}
	out.Body.Dimensions = courier.CalculateDimensions(items)
	out.Body.Weight = courier.CalculateWeight(items)
	return out, nil
}

// ParseAddressInput is the request for POST /address/parse
type ParseAddressInput struct {
	Body struct {
		Address    string `json:"address" maxLength:"1000"`
		City       string `json:"city,omitempty"`
		County     string `json:"county,omitempty"`
		PostalCode string `json:"postalCode,omitempty"`
	}
}

// ParseAddressOutput is the structured address
type ParseAddressOutput struct {
	Body domain.Address
}

// ParseAddress handles POST /address/parse
func (h *ShipmentHandler) ParseAddress(ctx context.Context, input *ParseAddressInput) (*ParseAddressOutput, error) {
	b := input.Body
	return &ParseAddressOutput{Body: courier.ParseAddress(b.Address, b.City, b.County, b.PostalCode)}, nil
}
