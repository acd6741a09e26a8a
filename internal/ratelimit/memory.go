package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter implements sliding-window rate limiting with per-key
// timestamp buckets held in process memory. Not shared across instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	cfg     Config
	hits    map[string][]time.Time
	stopCh  chan struct{}
	stopped bool
}

// NewMemoryLimiter creates an in-memory sliding-window limiter.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	l := &MemoryLimiter{
		cfg:    cfg,
		hits:   make(map[string][]time.Time),
		stopCh: make(chan struct{}),
	}

	// Start cleanup goroutine.
	go l.cleanupLoop()

	return l
}

// cleanupLoop periodically drops keys with no recent hits.
func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.Window)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

// cleanup removes entries fully outside the window.
func (l *MemoryLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.cfg.Window)
	for key, stamps := range l.hits {
		kept := pruneBefore(stamps, cutoff)
		if len(kept) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = kept
		}
	}
}

// Stop stops the cleanup goroutine.
func (l *MemoryLimiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.stopped {
		close(l.stopCh)
		l.stopped = true
	}
}

// Allow records a hit for key and checks it against the sliding window.
func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	stamps := pruneBefore(l.hits[key], now.Add(-l.cfg.Window))

	if int64(len(stamps)) >= l.cfg.Requests {
		l.hits[key] = stamps
		return false, nil
	}

	l.hits[key] = append(stamps, now)
	return true, nil
}

// pruneBefore drops timestamps older than cutoff, preserving order.
func pruneBefore(stamps []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(stamps) && stamps[idx].Before(cutoff) {
		idx++
	}
	return stamps[idx:]
}

// Ensure MemoryLimiter implements Limiter.
var _ Limiter = (*MemoryLimiter)(nil)
