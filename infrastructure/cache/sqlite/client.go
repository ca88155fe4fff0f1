// ABOUTME: SQLite-backed key/value storage for the response cache
// ABOUTME: Persists across restarts and enforces a byte quota like a browser origin store

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	coreerrors "bluehand-admin-api/core/errors"

	"github.com/mattn/go-sqlite3"
)

const (
	// DefaultTable holds the key/value rows
	DefaultTable = "storage"

	// DefaultQuotaBytes caps the combined size of keys and values
	DefaultQuotaBytes = 5 << 20
)

// Options configures a Storage
type Options struct {
	Path       string
	Table      string
	QuotaBytes int64
	Logger     Logger
}

// Storage implements interfaces.Storage on a SQLite table
type Storage struct {
	db     *sql.DB
	path   string
	table  string
	quota  int64
	logger Logger

	// serialises the quota check with the write that follows it
	mu sync.Mutex
}

// Open opens a SQLite database. In-memory databases are pinned to a single
// connection so every query sees the same data.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}
	return db, nil
}

// NewStorage opens the database at opts.Path and creates the table if needed
func NewStorage(opts Options) (*Storage, error) {
	if opts.Path == "" {
		opts.Path = "cache.db"
	}
	if opts.Table == "" {
		opts.Table = DefaultTable
	}
	if opts.QuotaBytes <= 0 {
		opts.QuotaBytes = DefaultQuotaBytes
	}
	if err := ValidateName(opts.Table); err != nil {
		return nil, fmt.Errorf("invalid table: %w", err)
	}

	db, err := Open(opts.Path)
	if err != nil {
		return nil, err
	}

	s := &Storage{
		db:     db,
		path:   opts.Path,
		table:  opts.Table,
		quota:  opts.QuotaBytes,
		logger: opts.Logger,
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Storage) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS ` + s.table + ` (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	return err
}

// GetItem retrieves a value
func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	query, params, err := NewQueryBuilder().
		Select("value").
		From(s.table).
		Where("key", "=", key).
		Build()
	if err != nil {
		return "", false, err
	}

	var value string
	err = s.db.QueryRowContext(ctx, query, params...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get value: %w", err)
	}
	return value, true, nil
}

// SetItem stores a value. Writes that would push the table past its quota,
// or that SQLite rejects because the disk is full, fail with a quota error.
func (s *Storage) SetItem(ctx context.Context, key string, value string) error {
	if err := ValidateKey(key, s.logger); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	used, err := s.usedExcept(ctx, key)
	if err != nil {
		return err
	}
	if size := int64(len(key) + len(value)); used+size > s.quota {
		return fmt.Errorf("sqlite storage: %d of %d bytes used, %d requested: %w",
			used, s.quota, size, coreerrors.ErrQuotaExceeded)
	}

	query, params, err := NewQueryBuilder().
		Upsert(s.table, []string{"key", "value"}, []interface{}{key, value}).
		Build()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, params...); err != nil {
		if isDiskFull(err) {
			return fmt.Errorf("sqlite storage: %v: %w", err, coreerrors.ErrQuotaExceeded)
		}
		return fmt.Errorf("failed to set value: %w", err)
	}
	return nil
}

// RemoveItem deletes a key
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	query, params, err := NewQueryBuilder().
		Delete(s.table).
		Where("key", "=", key).
		Build()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	return nil
}

// Keys lists every stored key
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	query, params, err := NewQueryBuilder().Select("key").From(s.table).Build()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Used returns the bytes held by all rows
func (s *Storage) Used(ctx context.Context) (int64, error) {
	return s.usedExcept(ctx, "")
}

func (s *Storage) usedExcept(ctx context.Context, key string) (int64, error) {
	query, params, err := NewQueryBuilder().
		SelectExpr("COALESCE(SUM(LENGTH(CAST(key AS BLOB)) + LENGTH(CAST(value AS BLOB))), 0)").
		From(s.table).
		Where("key", "!=", key).
		Build()
	if err != nil {
		return 0, err
	}

	var used int64
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&used); err != nil {
		return 0, fmt.Errorf("failed to measure storage: %w", err)
	}
	return used, nil
}

// Stats returns storage statistics
func (s *Storage) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"backend": "sqlite"}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.table).Scan(&count); err != nil {
		return nil, err
	}
	stats["total_entries"] = count

	used, err := s.Used(ctx)
	if err != nil {
		return nil, err
	}
	stats["used_bytes"] = used
	stats["quota_bytes"] = s.quota
	stats["file_path"] = s.path
	return stats, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

func isDiskFull(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrFull
}
