package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestInMemory_Allow(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	t.Run("allows up to the limit then rejects", func(t *testing.T) {
		store := NewInMemory().WithClock(clock.Now)
		for i := range 3 {
			res, err := store.Allow(ctx, "10.0.0.1", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, 2-i, res.Remaining)
		}

		res, err := store.Allow(ctx, "10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
		assert.Equal(t, time.Minute, res.RetryAfter)
	})

	t.Run("keys are independent", func(t *testing.T) {
		store := NewInMemory().WithClock(clock.Now)
		_, err := store.Allow(ctx, "a", 1, time.Minute)
		require.NoError(t, err)

		res, err := store.Allow(ctx, "b", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("window slides", func(t *testing.T) {
		store := NewInMemory().WithClock(clock.Now)
		_, err := store.Allow(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		clock.Advance(30 * time.Second)
		_, err = store.Allow(ctx, "k", 2, time.Minute)
		require.NoError(t, err)

		res, err := store.Allow(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		require.False(t, res.Allowed)
		assert.Equal(t, 30*time.Second, res.RetryAfter)

		clock.Advance(31 * time.Second)
		res, err = store.Allow(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
	})

	t.Run("idle keys are evicted", func(t *testing.T) {
		store := NewInMemory().WithClock(clock.Now)
		for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
			_, err := store.Allow(ctx, ip, 5, time.Minute)
			require.NoError(t, err)
		}
		require.Len(t, store.windows, 3)

		clock.Advance(2 * time.Minute)
		res, err := store.Allow(ctx, "10.0.0.4", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Len(t, store.windows, 1)
		assert.Contains(t, store.windows, "10.0.0.4")
	})

	t.Run("keys with a longer window survive the sweep", func(t *testing.T) {
		store := NewInMemory().WithClock(clock.Now)
		_, err := store.Allow(ctx, "daily", 5, 24*time.Hour)
		require.NoError(t, err)

		clock.Advance(2 * time.Minute)
		_, err = store.Allow(ctx, "other", 5, time.Minute)
		require.NoError(t, err)
		assert.Len(t, store.windows, 2)
	})

	t.Run("rejected empty window leaves no entry", func(t *testing.T) {
		store := NewInMemory().WithClock(clock.Now)
		res, err := store.Allow(ctx, "blocked", 0, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Empty(t, store.windows)
	})
}
