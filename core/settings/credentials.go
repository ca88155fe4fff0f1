// ABOUTME: Courier credential resolution from the settings table with environment fallback
// ABOUTME: Credentials are read fresh on every call so settings edits apply immediately

// Package settings resolves configuration values stored in the generic
// settings table shared with the admin settings screens.
package settings

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"bluehand-admin-api/core/domain"
	"bluehand-admin-api/core/errors"
	"bluehand-admin-api/core/interfaces"
)

// Environment variables used when no enabled settings record exists
const (
	EnvUsername = "FAN_COURIER_USERNAME"
	EnvPassword = "FAN_COURIER_PASSWORD"
	EnvClientID = "FAN_COURIER_CLIENT_ID"
)

// CredentialsProvider resolves courier credentials. A settings record is used
// only when it is explicitly enabled; otherwise the environment is consulted.
type CredentialsProvider struct {
	store  interfaces.SettingsStore
	getenv func(string) string
	logger interfaces.Logger
	now    func() time.Time
}

// NewCredentialsProvider creates a provider reading the process environment.
// store may be nil, in which case only the environment is used.
func NewCredentialsProvider(store interfaces.SettingsStore, logger interfaces.Logger) *CredentialsProvider {
	return NewCredentialsProviderWithEnv(store, logger, os.Getenv)
}

// NewCredentialsProviderWithEnv creates a provider with a custom environment lookup
func NewCredentialsProviderWithEnv(store interfaces.SettingsStore, logger interfaces.Logger, getenv func(string) string) *CredentialsProvider {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	return &CredentialsProvider{
		store:  store,
		getenv: getenv,
		logger: logger,
		now:    time.Now,
	}
}

// Credentials returns the credentials to use for the next courier login
func (p *CredentialsProvider) Credentials(ctx context.Context) (domain.Credentials, error) {
	if s, ok := p.enabledSettings(ctx); ok {
		return domain.Credentials{
			Username: s.Username,
			Password: s.Password,
			ClientID: s.ClientID,
		}, nil
	}

	creds := domain.Credentials{
		Username: p.getenv(EnvUsername),
		Password: p.getenv(EnvPassword),
		ClientID: p.getenv(EnvClientID),
	}
	if !creds.HasLogin() {
		return domain.Credentials{}, &errors.ConfigurationError{
			Setting: domain.FanCourierSettingsKey,
			Message: "FAN Courier credentials are not configured; enter them under Settings > Courier",
		}
	}
	return creds, nil
}

func (p *CredentialsProvider) enabledSettings(ctx context.Context) (*domain.FanCourierSettings, bool) {
	s, err := p.CourierSettings(ctx)
	if err != nil {
		p.logger.Warn("Failed to read courier settings, falling back to environment", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}
	if s == nil || !s.Enabled || s.Username == "" || s.Password == "" {
		return nil, false
	}
	return s, true
}

// CourierSettings returns the stored courier settings record, or nil when
// none exists or no store is configured.
func (p *CredentialsProvider) CourierSettings(ctx context.Context) (*domain.FanCourierSettings, error) {
	if p.store == nil {
		return nil, nil
	}

	record, err := p.store.Get(ctx, domain.FanCourierSettingsKey)
	if err != nil {
		return nil, errors.WrapError(err, "failed to load courier settings")
	}
	if record == nil || len(record.Value) == 0 {
		return nil, nil
	}

	var s domain.FanCourierSettings
	if err := json.Unmarshal(record.Value, &s); err != nil {
		return nil, errors.WrapError(err, "failed to decode courier settings")
	}
	return &s, nil
}

// SaveCourierSettings persists the courier settings record
func (p *CredentialsProvider) SaveCourierSettings(ctx context.Context, s domain.FanCourierSettings) error {
	if p.store == nil {
		return &errors.ConfigurationError{
			Setting: "SETTINGS_BACKEND",
			Message: "no settings store is configured",
		}
	}

	value, err := json.Marshal(s)
	if err != nil {
		return errors.WrapError(err, "failed to encode courier settings")
	}

	return p.store.Put(ctx, &domain.SettingRecord{
		Key:       domain.FanCourierSettingsKey,
		Value:     value,
		UpdatedAt: p.now().UTC(),
	})
}
