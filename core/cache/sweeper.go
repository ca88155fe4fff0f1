// ABOUTME: Scheduled job removing expired response cache entries
// ABOUTME: Runs ClearExpired and logs how many entries were dropped

package cache

import (
	"context"

	"bluehand-admin-api/core/interfaces"
)

// Sweeper periodically removes dead entries from a ResponseCache
type Sweeper struct {
	cache  *ResponseCache
	logger interfaces.Logger
}

// NewSweeper creates a sweep job for c
func NewSweeper(c *ResponseCache, logger interfaces.Logger) *Sweeper {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}
	return &Sweeper{cache: c, logger: logger}
}

// Run performs one sweep. The cache swallows storage failures, so the only
// error reported is a cancelled context.
func (s *Sweeper) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	removed := s.cache.ClearExpired(ctx)
	s.logger.Info("Cache sweep completed", map[string]interface{}{
		"removed": removed,
	})
	return nil
}
