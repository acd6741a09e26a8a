package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/zealine/internal/cache/memory"
)

func TestMemoryLimiter_Allow(t *testing.T) {
	l := NewMemoryLimiter(Config{Requests: 3, Window: time.Minute})
	defer l.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "user-a")
		require.NoError(t, err)
		assert.True(t, ok, "hit %d should be within budget", i+1)
	}

	ok, err := l.Allow(ctx, "user-a")
	require.NoError(t, err)
	assert.False(t, ok, "budget exhausted")

	// Other keys have their own budget.
	ok, err = l.Allow(ctx, "user-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLimiter_WindowSlides(t *testing.T) {
	l := NewMemoryLimiter(Config{Requests: 1, Window: 30 * time.Millisecond})
	defer l.Stop()
	ctx := context.Background()

	ok, err := l.Allow(ctx, "user-a")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Allow(ctx, "user-a")
	require.NoError(t, err)
	require.False(t, ok)

	time.Sleep(40 * time.Millisecond)

	ok, err = l.Allow(ctx, "user-a")
	require.NoError(t, err)
	assert.True(t, ok, "hits outside the window no longer count")
}

func TestMemoryLimiter_CancelledContext(t *testing.T) {
	l := NewMemoryLimiter(Config{Requests: 1, Window: time.Minute})
	defer l.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Allow(ctx, "user-a")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCounterLimiter_Allow(t *testing.T) {
	l := NewCounterLimiter(memory.NewCache(), Config{Requests: 2, Window: time.Minute}, "rl:test", true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "budgets are per key")
}

func TestNoOpLimiter_Allow(t *testing.T) {
	l := NewNoOpLimiter()

	for i := 0; i < 100; i++ {
		ok, err := l.Allow(context.Background(), "anything")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
