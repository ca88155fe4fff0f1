package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_Run(t *testing.T) {
	ctx := context.Background()
	store := newMockStorage()
	clock := newFakeClock()
	c := newTestCache(t, store, clock)

	c.Set(ctx, KeyClients, 1, 5)
	c.Set(ctx, KeyCategories, 2, 60)
	clock.Advance(10 * time.Minute)

	require.NoError(t, NewSweeper(c, nil).Run(ctx))
	assert.False(t, store.has(DefaultPrefix+KeyClients))
	assert.True(t, store.has(DefaultPrefix+KeyCategories))
}

func TestSweeper_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCache(t, newMockStorage(), newFakeClock())
	assert.ErrorIs(t, NewSweeper(c, nil).Run(ctx), context.Canceled)
}
