// ABOUTME: Local SQLite settings store for development and single-node deployments
// ABOUTME: Shares the query builder and connection handling of the SQLite cache backend

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bluehand-admin-api/core/domain"
	coreerrors "bluehand-admin-api/core/errors"
	cachesqlite "bluehand-admin-api/infrastructure/cache/sqlite"
)

// DefaultTable mirrors the hosted settings table
const DefaultTable = "site_settings"

// Store implements interfaces.SettingsStore on a SQLite table
type Store struct {
	db    *sql.DB
	table string
	now   func() time.Time
}

// New opens the database at path and creates the settings table if needed
func New(path, table string) (*Store, error) {
	if path == "" {
		path = "settings.db"
	}
	if table == "" {
		table = DefaultTable
	}
	if err := cachesqlite.ValidateName(table); err != nil {
		return nil, fmt.Errorf("invalid table: %w", err)
	}

	db, err := cachesqlite.Open(path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS ` + table + ` (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, table: table, now: time.Now}, nil
}

// Get returns the record stored under key, or nil when there is none
func (s *Store) Get(ctx context.Context, key string) (*domain.SettingRecord, error) {
	query, params, err := cachesqlite.NewQueryBuilder().
		Select("key", "value", "updated_at").
		From(s.table).
		Where("key", "=", key).
		Build()
	if err != nil {
		return nil, err
	}

	var k, value, updated string
	err = s.db.QueryRowContext(ctx, query, params...).Scan(&k, &value, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read setting: %w", err)
	}

	record := &domain.SettingRecord{Key: k, Value: json.RawMessage(value)}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		record.UpdatedAt = t
	}
	return record, nil
}

// Put creates or replaces the record
func (s *Store) Put(ctx context.Context, record *domain.SettingRecord) error {
	if record == nil || record.Key == "" {
		return &coreerrors.ValidationError{Field: "key", Message: "setting key is required"}
	}
	if len(record.Value) > 0 && !json.Valid(record.Value) {
		return &coreerrors.ValidationError{Field: "value", Message: "setting value must be valid JSON"}
	}

	value := string(record.Value)
	if value == "" {
		value = "null"
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now().UTC()
	}

	query, params, err := cachesqlite.NewQueryBuilder().
		Upsert(s.table, []string{"key", "value", "updated_at"},
			[]interface{}{record.Key, value, updatedAt.Format(time.RFC3339Nano)}).
		Build()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("failed to write setting: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
