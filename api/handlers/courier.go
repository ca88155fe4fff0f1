// ABOUTME: Courier handlers for AWB generation, labels and tracking
// ABOUTME: Generation and tracking answer with inline result objects the console renders directly

package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bluehand-admin-api/core/cache"
	"bluehand-admin-api/core/courier"
	"bluehand-admin-api/core/domain"
	"bluehand-admin-api/core/interfaces"
	"bluehand-admin-api/pkg/featureflags"

	"github.com/danielgtaylor/huma/v2"
)

// trackingCacheTTLMinutes bounds how stale a cached tracking answer may be
const trackingCacheTTLMinutes = 5

// AWBRegistry remembers the AWBs issued by this process
type AWBRegistry interface {
	Track(awb *domain.AWBData)
	Update(awb *domain.AWBData)
	Get(awbNumber string) (*domain.AWBData, bool)
	List() []*domain.AWBData
}

// CourierHandler handles courier HTTP requests
type CourierHandler struct {
	courier             interfaces.CourierService
	registry            AWBRegistry
	cache               *cache.ResponseCache
	flags               featureflags.Manager
	logger              interfaces.Logger
	trackingURLTemplate string
	now                 func() time.Time
}

// CourierHandlerConfig holds the collaborators of a CourierHandler.
// Registry and Cache are optional.
type CourierHandlerConfig struct {
	Courier             interfaces.CourierService
	Registry            AWBRegistry
	Cache               *cache.ResponseCache
	Flags               featureflags.Manager
	Logger              interfaces.Logger
	TrackingURLTemplate string
}

// NewCourierHandler creates a new courier handler
func NewCourierHandler(cfg CourierHandlerConfig) *CourierHandler {
	if cfg.Flags == nil {
		cfg.Flags = featureflags.NewDefaultManager()
	}
	if cfg.Logger == nil {
		cfg.Logger = interfaces.NopLogger{}
	}
	if cfg.TrackingURLTemplate == "" {
		cfg.TrackingURLTemplate = courier.DefaultTrackingURLTemplate
	}
	return &CourierHandler{
		courier:             cfg.Courier,
		registry:            cfg.Registry,
		cache:               cfg.Cache,
		flags:               cfg.Flags,
		logger:              cfg.Logger,
		trackingURLTemplate: cfg.TrackingURLTemplate,
		now:                 time.Now,
	}
}

// RegisterRoutes registers all courier routes
func (h *CourierHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:      "generateAWB",
		Method:           http.MethodPost,
		Path:             "/awb",
		Summary:          "Generate an AWB for a shipment",
		Description:      "Registers the shipment with the courier. Courier failures are reported in the result object.",
		Tags:             []string{"Courier"},
		SkipValidateBody: true,
	}, h.GenerateAWB)

	huma.Register(api, huma.Operation{
		OperationID:      "generateOrderAWB",
		Method:           http.MethodPost,
		Path:             "/orders/awb",
		Summary:          "Generate an AWB for an order",
		Description:      "Derives weight, package size and address from the order, then registers the shipment.",
		Tags:             []string{"Courier"},
		SkipValidateBody: true,
	}, h.GenerateOrderAWB)

	huma.Register(api, huma.Operation{
		OperationID: "listAWBs",
		Method:      http.MethodGet,
		Path:        "/awb",
		Summary:     "List AWBs issued by this instance",
		Tags:        []string{"Courier"},
	}, h.ListAWBs)

	huma.Register(api, huma.Operation{
		OperationID: "getAWBLabel",
		Method:      http.MethodGet,
		Path:        "/awb/{awb}/label",
		Summary:     "Download the printable AWB label",
		Tags:        []string{"Courier"},
	}, h.GetLabel)

	huma.Register(api, huma.Operation{
		OperationID: "trackAWB",
		Method:      http.MethodGet,
		Path:        "/awb/{awb}/tracking",
		Summary:     "Get the scan history of an AWB",
		Tags:        []string{"Courier"},
	}, h.TrackAWB)
}

// AWBResult is the outcome of an AWB generation
type AWBResult struct {
	Success bool            `json:"success"`
	AWB     string          `json:"awb,omitempty"`
	AWBData *domain.AWBData `json:"awbData,omitempty"`
	Error   string          `json:"error,omitempty"`
	Details string          `json:"details,omitempty"`
}

// GenerateAWBInput is the request for POST /awb
type GenerateAWBInput struct {
	Body domain.ShipmentInfo
}

// GenerateOrderAWBInput is the request for POST /orders/awb
type GenerateOrderAWBInput struct {
	Body domain.Order
}

// AWBResultOutput wraps an AWBResult
type AWBResultOutput struct {
	Body AWBResult
}

func (h *CourierHandler) enabled(ctx context.Context) error {
	if h.courier == nil || !h.flags.IsEnabled(ctx, featureflags.CourierEnabled) {
		return huma.Error503ServiceUnavailable("Courier integration is disabled")
	}
	return nil
}

func failedResult(err error) *AWBResultOutput {
	msg, details := describeError(err)
	return &AWBResultOutput{Body: AWBResult{Success: false, Error: msg, Details: details}}
}

// GenerateAWB handles POST /awb
func (h *CourierHandler) GenerateAWB(ctx context.Context, input *GenerateAWBInput) (*AWBResultOutput, error) {
	if err := h.enabled(ctx); err != nil {
		return nil, err
	}

	awb, err := h.courier.GenerateAWB(ctx, input.Body)
	if err != nil {
		return failedResult(err), nil
	}

	data := domain.NewAWBData(awb, h.trackingURLTemplate, h.now())
	h.track(data)
	return &AWBResultOutput{Body: AWBResult{Success: true, AWB: awb, AWBData: data}}, nil
}

// GenerateOrderAWB handles POST /orders/awb
func (h *CourierHandler) GenerateOrderAWB(ctx context.Context, input *GenerateOrderAWBInput) (*AWBResultOutput, error) {
	if err := h.enabled(ctx); err != nil {
		return nil, err
	}

	data, err := h.courier.GenerateAWBForOrder(ctx, input.Body)
	if err != nil {
		h.logger.Warn("Order AWB generation failed", map[string]interface{}{
			"order": input.Body.OrderNumber,
			"error": err.Error(),
		})
		return failedResult(err), nil
	}

	h.track(data)
	return &AWBResultOutput{Body: AWBResult{Success: true, AWB: data.AWBNumber, AWBData: data}}, nil
}

func (h *CourierHandler) track(data *domain.AWBData) {
	if h.registry != nil {
		h.registry.Track(data)
	}
}

// ListAWBsOutput lists the tracked AWBs
type ListAWBsOutput struct {
	Body struct {
		AWBs []*domain.AWBData `json:"awbs"`
	}
}

// ListAWBs handles GET /awb
func (h *CourierHandler) ListAWBs(ctx context.Context, _ *struct{}) (*ListAWBsOutput, error) {
	out := &ListAWBsOutput{}
	out.Body.AWBs = []*domain.AWBData{}
	if h.registry != nil {
		out.Body.AWBs = h.registry.List()
	}
	return out, nil
}

// GetLabelInput is the request for GET /awb/{awb}/label
type GetLabelInput struct {
	AWB    string `path:"awb" minLength:"1" doc:"AWB number"`
	Format string `query:"format" enum:"pdf,html" default:"pdf" doc:"Label format"`
}

// GetLabelOutput carries the raw label
type GetLabelOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// GetLabel handles GET /awb/{awb}/label
func (h *CourierHandler) GetLabel(ctx context.Context, input *GetLabelInput) (*GetLabelOutput, error) {
	if err := h.enabled(ctx); err != nil {
		return nil, err
	}

	label, err := h.courier.GetAWBLabel(ctx, input.AWB, domain.LabelFormat(input.Format))
	if err != nil {
		msg, _ := describeError(err)
		switch {
		case isClientSide(err):
			return nil, toHumaError(err)
		default:
			return nil, huma.Error404NotFound("Label not available: " + msg)
		}
	}

	disposition := "inline"
	if label.Format == domain.LabelFormatPDF {
		disposition = `inline; filename="awb-` + label.AWBNumber + `.pdf"`
	}
	return &GetLabelOutput{
		ContentType:        label.ContentType,
		ContentDisposition: disposition,
		Body:               label.Data,
	}, nil
}

// TrackAWBInput is the request for GET /awb/{awb}/tracking
type TrackAWBInput struct {
	AWB string `path:"awb" minLength:"1" doc:"AWB number"`
}

// TrackingResult is the outcome of a tracking query
type TrackingResult struct {
	Success bool                   `json:"success"`
	Status  string                 `json:"status,omitempty"`
	Mapped  domain.AWBStatus       `json:"mappedStatus,omitempty"`
	Events  []domain.TrackingEvent `json:"events,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// TrackAWBOutput wraps a TrackingResult
type TrackAWBOutput struct {
	Body TrackingResult
}

// TrackAWB handles GET /awb/{awb}/tracking
func (h *CourierHandler) TrackAWB(ctx context.Context, input *TrackAWBInput) (*TrackAWBOutput, error) {
	if err := h.enabled(ctx); err != nil {
		return nil, err
	}

	awbNumber := strings.TrimSpace(input.AWB)
	var c *cache.ResponseCache
	if h.flags.IsEnabled(ctx, featureflags.CacheEnabled) {
		c = h.cache
	}

	result, err := cache.Fetch(ctx, c, "tracking_"+awbNumber, trackingCacheTTLMinutes,
		func(ctx context.Context) (*domain.TrackingResult, error) {
			return h.courier.TrackAWB(ctx, awbNumber)
		})
	if err != nil {
		msg, _ := describeError(err)
		return &TrackAWBOutput{Body: TrackingResult{Success: false, Error: msg}}, nil
	}

	mapped := courier.MapStatus(result.Status)
	h.updateTracked(awbNumber, result.Status, mapped)

	return &TrackAWBOutput{Body: TrackingResult{
		Success: true,
		Status:  result.Status,
		Mapped:  mapped,
		Events:  result.Events,
	}}, nil
}

func (h *CourierHandler) updateTracked(awbNumber, raw string, mapped domain.AWBStatus) {
	if h.registry == nil || raw == "" {
		return
	}
	if awb, ok := h.registry.Get(awbNumber); ok && awb.Status != mapped {
		awb.UpdateStatus(mapped, h.now())
		h.registry.Update(awb)
	}
}
