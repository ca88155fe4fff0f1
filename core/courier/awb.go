// ABOUTME: AWB generation and label download against the FAN Courier API
// ABOUTME: Also builds shipment payloads from shop orders

package courier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"bluehand-admin-api/core/domain"
	"bluehand-admin-api/core/errors"

	"github.com/tidwall/gjson"
)

// Shipment defaults used when building a request from an order
const (
	ServiceStandard      = "Standard"
	ServiceCashCollector = "Cont Colector"
	PayerSender          = "sender"
)

type shipmentEnvelope struct {
	Info domain.ShipmentInfo `json:"info"`
}

type createAWBRequest struct {
	ClientID  string             `json:"clientId"`
	Shipments []shipmentEnvelope `json:"shipments"`
}

// awbPaths lists where the AWB number may appear in a creation response.
// Multi-shipment responses nest it, single ones return it at the top level.
var awbPaths = []string{"shipments.0.awb", "awb"}

// GenerateAWB registers a shipment and returns the issued AWB number
func (s *Service) GenerateAWB(ctx context.Context, info domain.ShipmentInfo) (string, error) {
	clientID, err := s.clientID(ctx)
	if err != nil {
		return "", err
	}

	resp, err := s.call(ctx, "intern-awb", http.MethodPost, "/intern-awb", createAWBRequest{
		ClientID:  clientID,
		Shipments: []shipmentEnvelope{{Info: info}},
	}, true)
	if err != nil {
		s.logger.Error("AWB generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return "", transportError(err, "intern-awb")
	}

	if !resp.ok() {
		apiErr := apiError(resp, "AWB generation failed")
		s.logger.Error("AWB generation rejected", map[string]interface{}{
			"status":  resp.statusCode,
			"error":   apiErr.Message,
			"details": apiErr.Details,
		})
		return "", apiErr
	}

	awb := extractAWB(resp.body)
	if awb == "" {
		s.logger.Error("AWB missing from courier response", map[string]interface{}{
			"details": string(resp.body),
		})
		return "", &errors.ExternalAPIError{
			StatusCode: resp.statusCode,
			Message:    "response did not contain an AWB number",
			API:        apiName,
			Details:    string(resp.body),
		}
	}

	s.logger.Info("AWB generated", map[string]interface{}{
		"awb":       awb,
		"recipient": info.Recipient.Name,
	})
	return awb, nil
}

func extractAWB(body []byte) string {
	for _, path := range awbPaths {
		if v := gjson.GetBytes(body, path); v.Exists() {
			if awb := strings.TrimSpace(v.String()); awb != "" {
				return awb
			}
		}
	}
	return ""
}

// GenerateAWBForOrder builds the shipment for order and registers it
func (s *Service) GenerateAWBForOrder(ctx context.Context, order domain.Order) (*domain.AWBData, error) {
	awb, err := s.GenerateAWB(ctx, BuildShipment(order))
	if err != nil {
		return nil, err
	}
	return domain.NewAWBData(awb, s.trackingURLTemplate, s.now()), nil
}

// BuildShipment derives the courier request for an order, estimating
// weight and package size from its line items.
func BuildShipment(order domain.Order) domain.ShipmentInfo {
	info := domain.ShipmentInfo{
		Service:       ServiceStandard,
		Packages:      domain.Packages{Parcel: 1},
		Weight:        CalculateWeight(order.Items),
		DeclaredValue: order.Total,
		Payment:       PayerSender,
		Content:       fmt.Sprintf("Tablouri canvas (%d buc)", order.TotalUnits()),
		Dimensions:    CalculateDimensions(order.Items),
		Recipient: domain.Recipient{
			Name:    order.CustomerName,
			Phone:   order.CustomerPhone,
			Email:   order.CustomerEmail,
			Address: ParseAddress(order.ShippingAddress, order.City, order.County, order.PostalCode),
		},
	}
	if order.OrderNumber != "" {
		info.Observation = "Comanda " + order.OrderNumber
	}
	if order.IsCashOnDelivery() {
		info.Service = ServiceCashCollector
		info.COD = order.Total
	}
	return info
}

// GetAWBLabel downloads the printable label for an AWB
func (s *Service) GetAWBLabel(ctx context.Context, awbNumber string, format domain.LabelFormat) (*domain.Label, error) {
	awbNumber = strings.TrimSpace(awbNumber)
	if awbNumber == "" {
		return nil, &errors.ValidationError{Field: "awb", Message: "AWB number is required"}
	}
	if format == "" {
		format = domain.LabelFormatPDF
	}
	if !format.IsValid() {
		return nil, &errors.ValidationError{Field: "format", Message: "format must be pdf or html"}
	}

	clientID, err := s.clientID(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("clientId", clientID)
	query.Add("awbs[]", awbNumber)
	query.Set("format", string(format))

	resp, err := s.call(ctx, "awb-label", http.MethodGet, "/awb/label?"+query.Encode(), nil, true)
	if err != nil {
		s.logger.Error("AWB label request failed", map[string]interface{}{
			"awb":   awbNumber,
			"error": err.Error(),
		})
		return nil, transportError(err, "awb-label")
	}

	if !resp.ok() {
		apiErr := apiError(resp, "label not available")
		s.logger.Error("AWB label not available", map[string]interface{}{
			"awb":    awbNumber,
			"status": resp.statusCode,
			"error":  apiErr.Message,
		})
		return nil, apiErr
	}

	contentType := resp.contentType
	if contentType == "" {
		contentType = "application/pdf"
		if format == domain.LabelFormatHTML {
			contentType = "text/html; charset=utf-8"
		}
	}

	return &domain.Label{
		AWBNumber:   awbNumber,
		Format:      format,
		ContentType: contentType,
		Data:        resp.body,
	}, nil
}

// clientID resolves the courier client identifier before any network call
func (s *Service) clientID(ctx context.Context) (string, error) {
	creds, err := s.credentials.Credentials(ctx)
	if err != nil {
		return "", err
	}
	if creds.ClientID == "" {
		return "", &errors.ConfigurationError{
			Setting: domain.FanCourierSettingsKey,
			Message: "FAN Courier client id is not configured; enter it under Settings > Courier",
		}
	}
	return creds.ClientID, nil
}
