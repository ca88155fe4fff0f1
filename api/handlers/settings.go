// ABOUTME: Courier settings handlers backing the admin Settings > Courier screen
// ABOUTME: Passwords are never returned; an empty password on update keeps the stored one

package handlers

import (
	"context"
	"net/http"
	"strings"

	"bluehand-admin-api/core/domain"
	"bluehand-admin-api/core/interfaces"

	"github.com/danielgtaylor/huma/v2"
)

const passwordMask = "********"

// CourierSettingsStore reads and writes the courier settings record
type CourierSettingsStore interface {
	CourierSettings(ctx context.Context) (*domain.FanCourierSettings, error)
	SaveCourierSettings(ctx context.Context, s domain.FanCourierSettings) error
}

// CourierResetter drops cached courier state after a credentials change
type CourierResetter interface {
	Reset()
}

// SettingsHandler handles settings requests
type SettingsHandler struct {
	store   CourierSettingsStore
	courier CourierResetter
	logger  interfaces.Logger
}

// NewSettingsHandler creates a new settings handler. courier may be nil.
func NewSettingsHandler(store CourierSettingsStore, courier CourierResetter, logger interfaces.Logger) *SettingsHandler {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &SettingsHandler{store: store, courier: courier, logger: logger}
}

// RegisterRoutes registers the settings routes
func (h *SettingsHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getCourierSettings",
		Method:      http.MethodGet,
		Path:        "/settings/courier",
		Summary:     "Get the courier settings",
		Tags:        []string{"Settings"},
	}, h.GetCourierSettings)

	huma.Register(api, huma.Operation{
		OperationID: "putCourierSettings",
		Method:      http.MethodPut,
		Path:        "/settings/courier",
		Summary:     "Update the courier settings",
		Tags:        []string{"Settings"},
	}, h.PutCourierSettings)
}

// CourierSettingsView is the settings record as shown to the console
type CourierSettingsView struct {
	Configured bool   `json:"configured"`
	Enabled    bool   `json:"enabled"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	ClientID   string `json:"clientId"`
}

// CourierSettingsOutput wraps a CourierSettingsView
type CourierSettingsOutput struct {
	Body CourierSettingsView
}

func viewOf(s *domain.FanCourierSettings) CourierSettingsView {
	if s == nil {
		return CourierSettingsView{}
	}
	v := CourierSettingsView{
		Configured: true,
		Enabled:    s.Enabled,
		Username:   s.Username,
		ClientID:   s.ClientID,
	}
	if s.Password != "" {
		v.Password = passwordMask
	}
	return v
}

// GetCourierSettings handles GET /settings/courier
func (h *SettingsHandler) GetCourierSettings(ctx context.Context, _ *struct{}) (*CourierSettingsOutput, error) {
	s, err := h.store.CourierSettings(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &CourierSettingsOutput{Body: viewOf(s)}, nil
}

// PutCourierSettingsInput is the request for PUT /settings/courier
type PutCourierSettingsInput struct {
	Body struct {
		Enabled  bool   `json:"enabled"`
		Username string `json:"username,omitempty" maxLength:"200"`
		Password string `json:"password,omitempty" maxLength:"200" doc:"Leave empty to keep the stored password"`
		ClientID string `json:"clientId,omitempty" maxLength:"50"`
	}
}

// PutCourierSettings handles PUT /settings/courier
func (h *SettingsHandler) PutCourierSettings(ctx context.Context, input *PutCourierSettingsInput) (*CourierSettingsOutput, error) {
	b := input.Body
	next := domain.FanCourierSettings{
		Enabled:  b.Enabled,
		Username: strings.TrimSpace(b.Username),
		Password: b.Password,
		ClientID: strings.TrimSpace(b.ClientID),
	}

	if next.Password == "" || next.Password == passwordMask {
		current, err := h.store.CourierSettings(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		next.Password = ""
		if current != nil {
			next.Password = current.Password
		}
	}

	if next.Enabled && (next.Username == "" || next.Password == "") {
		return nil, huma.Error422UnprocessableEntity("username and password are required to enable the courier")
	}

	if err := h.store.SaveCourierSettings(ctx, next); err != nil {
		h.logger.Error("Failed to save courier settings", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, toHumaError(err)
	}

	if h.courier != nil {
		h.courier.Reset()
	}
	h.logger.Info("Courier settings updated", map[string]interface{}{
		"enabled":  next.Enabled,
		"username": next.Username,
	})
	return &CourierSettingsOutput{Body: viewOf(&next)}, nil
}
