// Package ratelimit provides request rate limiting abstractions.
// Limiters are injected into services and handlers so the backing strategy
// (in-memory, Redis counter, or none) can be swapped without code changes.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether an action identified by key may proceed.
type Limiter interface {
	// Allow reports whether the action is within its rate budget.
	// Returns false when the caller should be rejected with a rate limit error.
	Allow(ctx context.Context, key string) (bool, error)
}

// Config holds the budget for a fixed or sliding window limiter.
type Config struct {
	// Requests is the number of allowed actions per window.
	Requests int64
	// Window is the measurement period.
	Window time.Duration
}

// NoOpLimiter allows everything. Use when rate limiting is disabled.
type NoOpLimiter struct{}

// NewNoOpLimiter creates a limiter that never rejects.
func NewNoOpLimiter() *NoOpLimiter {
	return &NoOpLimiter{}
}

// Allow always returns true.
func (n *NoOpLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, ctx.Err()
}

// Ensure NoOpLimiter implements Limiter.
var _ Limiter = (*NoOpLimiter)(nil)
