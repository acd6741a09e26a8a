package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastOptions() Options {
	return Options{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		Multiplier:      1.0,
		MaxInterval:     time.Millisecond,
	}
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastOptions(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return io.ErrUnexpectedEOF
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ExhaustsAttemptBudget(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastOptions(), func(ctx context.Context) error {
		attempts++
		return syscall.ECONNRESET
	})

	require.ErrorIs(t, err, syscall.ECONNRESET)
	assert.Equal(t, 3, attempts)
}

func TestDo_NonTransientStopsImmediately(t *testing.T) {
	attempts := 0
	boom := errors.New("schema violation")
	err := Do(context.Background(), fastOptions(), func(ctx context.Context) error {
		attempts++
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestDo_PermanentShortCircuits(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastOptions(), func(ctx context.Context) error {
		attempts++
		// Transient class, but explicitly marked permanent.
		return Permanent(io.ErrUnexpectedEOF)
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastOptions(), func(ctx context.Context) error {
		return io.ErrUnexpectedEOF
	})

	require.ErrorIs(t, err, context.Canceled)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: false},
		{name: "connection reset", err: syscall.ECONNRESET, want: true},
		{name: "connection refused", err: syscall.ECONNREFUSED, want: true},
		{name: "broken pipe", err: syscall.EPIPE, want: true},
		{name: "unexpected eof", err: io.ErrUnexpectedEOF, want: true},
		{name: "dns failure", err: &net.DNSError{Err: "no such host"}, want: true},
		{name: "http 500", err: NewHTTPStatusError(500, "http://x"), want: true},
		{name: "http 503", err: NewHTTPStatusError(503, "http://x"), want: true},
		{name: "http 429", err: NewHTTPStatusError(429, "http://x"), want: true},
		{name: "http 408", err: NewHTTPStatusError(408, "http://x"), want: true},
		{name: "http 404", err: NewHTTPStatusError(404, "http://x"), want: false},
		{name: "http 403", err: NewHTTPStatusError(403, "http://x"), want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransient_WrappedErrors(t *testing.T) {
	wrapped := &net.OpError{Op: "read", Err: syscall.ECONNRESET}
	assert.True(t, IsTransient(wrapped))
}
