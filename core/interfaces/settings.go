package interfaces

import (
	"context"

	"bluehand-admin-api/core/domain"
)

// SettingsStore reads and writes records of the generic key/value settings table
// shared by the courier, email and CDN configuration screens.
type SettingsStore interface {
	// Get returns the record stored under key, or (nil, nil) when there is none.
	Get(ctx context.Context, key string) (*domain.SettingRecord, error)

	// Put creates or replaces the record stored under record.Key.
	Put(ctx context.Context, record *domain.SettingRecord) error
}
