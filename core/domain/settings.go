// ABOUTME: Settings domain models for the generic key/value settings table
// ABOUTME: Holds courier credentials as configured from the admin settings screen

package domain

import (
	"encoding/json"
	"time"
)

// FanCourierSettingsKey is the settings record holding courier credentials
const FanCourierSettingsKey = "fan_courier"

// SettingRecord is one row of the settings table
type SettingRecord struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// FanCourierSettings is the value stored under FanCourierSettingsKey
type FanCourierSettings struct {
	Enabled  bool   `json:"enabled"`
	Username string `json:"username"`
	Password string `json:"password"`
	ClientID string `json:"clientId"`
}

// Credentials are the values used for one courier login
type Credentials struct {
	Username string
	Password string
	ClientID string
}

// HasLogin reports whether username and password are both present
func (c Credentials) HasLogin() bool {
	return c.Username != "" && c.Password != ""
}
