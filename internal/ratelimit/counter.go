package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prn-tf/zealine/internal/repository"
)

// CounterLimiter implements fixed-window rate limiting on top of a
// repository.Cache. Backed by Redis it is shared across nodes; backed by the
// in-memory cache it is per-process.
type CounterLimiter struct {
	cache  repository.Cache
	cfg    Config
	prefix string
	// failOpen controls behavior when the cache backend is unreachable.
	// When true, requests are allowed rather than rejected on backend errors.
	failOpen bool
}

// NewCounterLimiter creates a cache-backed fixed-window limiter.
func NewCounterLimiter(cache repository.Cache, cfg Config, prefix string, failOpen bool) *CounterLimiter {
	return &CounterLimiter{
		cache:    cache,
		cfg:      cfg,
		prefix:   prefix,
		failOpen: failOpen,
	}
}

// Allow increments the window counter for key and checks the budget.
func (l *CounterLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := time.Now().Unix() / int64(l.cfg.Window.Seconds())
	counterKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, window)

	count, err := l.cache.Increment(ctx, counterKey, 1)
	if err != nil {
		if l.failOpen && errors.Is(err, repository.ErrCacheUnavailable) {
			return true, nil
		}
		return false, err
	}

	// Set expiry on first hit so stale windows don't accumulate.
	if count == 1 {
		if err := l.cache.Expire(ctx, counterKey, l.cfg.Window); err != nil && !l.failOpen {
			return false, err
		}
	}

	return count <= l.cfg.Requests, nil
}

// Ensure CounterLimiter implements Limiter.
var _ Limiter = (*CounterLimiter)(nil)
