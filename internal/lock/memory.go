package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is a process-local Locker for single-node deployments and
// tests. Leases held here do not survive a restart and are invisible to
// other instances.
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]time.Time
}

// NewMemoryLocker creates an in-memory locker. A janitor goroutine drops
// expired leases so long-lived processes do not accumulate dead keys; expiry
// itself is checked lazily on every operation and never waits for the janitor.
func NewMemoryLocker() *MemoryLocker {
	ml := &MemoryLocker{leases: make(map[string]time.Time)}
	go ml.janitor()
	return ml
}

func (m *MemoryLocker) janitor() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		now := time.Now()
		for key, expiresAt := range m.leases {
			if now.After(expiresAt) {
				delete(m.leases, key)
			}
		}
		m.mu.Unlock()
	}
}

// held reports whether key carries a live lease, dropping it if stale.
// Callers must hold m.mu.
func (m *MemoryLocker) held(key string, now time.Time) bool {
	expiresAt, ok := m.leases[key]
	if !ok {
		return false
	}
	if now.After(expiresAt) {
		delete(m.leases, key)
		return false
	}
	return true
}

// Acquire takes the lease on key if it is free or expired.
func (m *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if m.held(key, now) {
		return false, nil
	}

	m.leases[key] = now.Add(ttl)
	return true, nil
}

// AcquireWithRetry attempts Acquire up to maxRetries additional times,
// sleeping retryDelay between attempts.
func (m *MemoryLocker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (bool, error) {
	for attempt := 0; ; attempt++ {
		acquired, err := m.Acquire(ctx, key, ttl)
		if err != nil || acquired {
			return acquired, err
		}
		if attempt >= maxRetries {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

// Release drops the lease on key. released=false means no lease existed.
func (m *MemoryLocker) Release(ctx context.Context, key string) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.leases[key]; !ok {
		return false, nil
	}
	delete(m.leases, key)
	return true, nil
}

// Extend pushes the expiry of a live lease out by ttl from now. A lease that
// already lapsed cannot be extended.
func (m *MemoryLocker) Extend(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if !m.held(key, now) {
		return false, nil
	}

	m.leases[key] = now.Add(ttl)
	return true, nil
}

// IsHeld reports whether key carries a live lease.
func (m *MemoryLocker) IsHeld(ctx context.Context, key string) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.held(key, time.Now()), nil
}

var _ Locker = (*MemoryLocker)(nil)
