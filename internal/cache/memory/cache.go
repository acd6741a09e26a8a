// Package memory implements repository.Cache in process memory, backing
// status caches and rate-limit counters when no Redis is configured.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prn-tf/zealine/internal/repository"
)

// Cache is a TTL'd key-value store. Single node only: nothing here is visible
// to other instances.
type Cache struct {
	mu      sync.RWMutex
	items   map[string]*cacheItem
	stopCh  chan struct{}
	stopped bool
}

type cacheItem struct {
	value     []byte
	expiresAt time.Time
	noExpiry  bool
}

func (i *cacheItem) isExpired() bool {
	if i.noExpiry {
		return false
	}
	return time.Now().After(i.expiresAt)
}

// newItem copies value so callers cannot mutate cached bytes, and resolves
// ttl<=0 to no expiry.
func newItem(value []byte, ttl time.Duration) *cacheItem {
	buf := make([]byte, len(value))
	copy(buf, value)

	item := &cacheItem{value: buf}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	} else {
		item.noExpiry = true
	}
	return item
}

// NewCache creates the cache and starts its expiry sweep goroutine.
func NewCache() *Cache {
	c := &Cache{
		items:  make(map[string]*cacheItem),
		stopCh: make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			for key, item := range c.items {
				if item.isExpired() {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// Stop terminates the expiry sweep goroutine. Safe to call twice.
func (c *Cache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.stopped {
		close(c.stopCh)
		c.stopped = true
	}
}

// Get retrieves a value by key. Expired entries read as misses.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok || item.isExpired() {
		return nil, repository.ErrCacheMiss
	}

	result := make([]byte, len(item.value))
	copy(result, item.value)
	return result, nil
}

// Set stores a value. ttl<=0 means no expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = newItem(value, ttl)
	return nil
}

// SetNX stores a value only if the key is absent or expired.
func (c *Cache) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.items[key]; ok && !item.isExpired() {
		return false, nil
	}

	c.items[key] = newItem(value, ttl)
	return true, nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

// Exists reports whether key holds a live entry.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	return ok && !item.isExpired(), nil
}

// Increment atomically adds delta to the integer stored at key. A missing or
// expired key starts from zero; a live key keeps its expiry, matching Redis
// INCR semantics so the counter limiter behaves the same on either backend.
func (c *Cache) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var current int64
	item, ok := c.items[key]
	live := ok && !item.isExpired()
	if live {
		parsed, err := strconv.ParseInt(string(item.value), 10, 64)
		if err != nil {
			return 0, err
		}
		current = parsed
	}

	current += delta
	next := &cacheItem{value: []byte(strconv.FormatInt(current, 10))}
	if live {
		next.expiresAt = item.expiresAt
		next.noExpiry = item.noExpiry
	} else {
		next.noExpiry = true
	}

	c.items[key] = next
	return current, nil
}

// Expire sets or updates the TTL for a key. No-op for absent keys.
func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil
	}

	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
		item.noExpiry = false
	} else {
		item.noExpiry = true
	}

	return nil
}

var _ repository.Cache = (*Cache)(nil)
