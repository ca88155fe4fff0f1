// ABOUTME: Redis-backed key/value storage shared across API instances
// ABOUTME: Keys are namespaced so Keys() never reports foreign data

package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	coreerrors "bluehand-admin-api/core/errors"
	"bluehand-admin-api/pkg/config"

	"github.com/redis/go-redis/v9"
)

// DefaultNamespace prefixes every key written by the storage
const DefaultNamespace = "bluehand:"

const scanBatch = 200

// Storage implements interfaces.Storage on Redis
type Storage struct {
	client    redis.UniversalClient
	namespace string
}

// NewStorage connects to Redis and verifies the connection
func NewStorage(cfg config.RedisConfig) (*Storage, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return NewStorageWithClient(client, cfg.Namespace), nil
}

// NewStorageWithClient wraps an existing client
func NewStorageWithClient(client redis.UniversalClient, namespace string) *Storage {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Storage{client: client, namespace: namespace}
}

// GetItem retrieves a value
func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.namespace+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// SetItem stores a value without expiry. A Redis instance at its memory
// limit rejects writes with an OOM error, reported as a quota error.
func (s *Storage) SetItem(ctx context.Context, key string, value string) error {
	err := s.client.Set(ctx, s.namespace+key, value, 0).Err()
	if err != nil && isOutOfMemory(err) {
		return fmt.Errorf("redis storage: %v: %w", err, coreerrors.ErrQuotaExceeded)
	}
	return err
}

// RemoveItem deletes a key
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.namespace+key).Err()
}

// Keys lists the keys in the storage namespace using SCAN
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, escapePattern(s.namespace)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

func isOutOfMemory(err error) bool {
	return strings.HasPrefix(err.Error(), "OOM ")
}

// escapePattern quotes glob metacharacters for MATCH
func escapePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
