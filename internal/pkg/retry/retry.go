// Package retry wraps exponential backoff retries for transient failures,
// primarily network errors during chunk transfers to object storage.
package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Options controls the retry schedule.
type Options struct {
	// MaxAttempts is the total number of attempts including the first.
	MaxAttempts uint64
	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration
	// Multiplier scales the delay after each failed attempt.
	Multiplier float64
	// MaxInterval caps the delay between attempts.
	MaxInterval time.Duration
}

// DefaultOptions matches the upload pipeline schedule: three attempts,
// one second initial delay, doubling.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:     3,
		InitialInterval: 1 * time.Second,
		Multiplier:      2.0,
		MaxInterval:     30 * time.Second,
	}
}

// Permanent marks err as non-retryable, stopping further attempts.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op with exponential backoff until it succeeds, returns a permanent
// error, the attempt budget runs out, or ctx is cancelled.
func Do(ctx context.Context, opts Options, op func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.InitialInterval
	b.Multiplier = opts.Multiplier
	b.MaxInterval = opts.MaxInterval
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, opts.MaxAttempts-1), ctx)

	return backoff.Retry(func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// IsTransient reports whether err looks like a temporary network failure
// worth retrying. Context cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}

	return false
}
