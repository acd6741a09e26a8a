// Package worker provides a bounded background task pool for fire-and-forget
// work such as notification fan-out and post-upload processing.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Task is a unit of background work. The context is cancelled when the pool
// shuts down, after the configured drain timeout.
type Task func(ctx context.Context) error

// Pool runs submitted tasks on a fixed set of worker goroutines.
// Submission never blocks the caller: when the queue is full the task is
// rejected and logged, since fire-and-forget work must not stall requests.
type Pool struct {
	logger zerolog.Logger

	tasks   chan queuedTask
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	stopped sync.Once

	mu     sync.RWMutex
	closed bool

	drainTimeout time.Duration
}

type queuedTask struct {
	name string
	fn   Task
}

// Options configures a Pool.
type Options struct {
	// Workers is the number of concurrent worker goroutines.
	Workers int
	// QueueSize is the task buffer capacity.
	QueueSize int
	// DrainTimeout bounds how long Stop waits for in-flight tasks.
	DrainTimeout time.Duration
}

// NewPool creates and starts a worker pool.
func NewPool(opts Options, logger zerolog.Logger) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		logger:       logger.With().Str("component", "worker_pool").Logger(),
		tasks:        make(chan queuedTask, opts.QueueSize),
		cancel:       cancel,
		drainTimeout: opts.DrainTimeout,
	}

	for i := 0; i < opts.Workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}

	return p
}

// run is the worker loop. It keeps draining the queue after cancellation so
// Stop can flush already accepted tasks.
func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()

	for task := range p.tasks {
		start := time.Now()
		if err := task.fn(ctx); err != nil {
			p.logger.Error().
				Err(err).
				Str("task", task.name).
				Int("worker", id).
				Dur("duration", time.Since(start)).
				Msg("Background task failed")
			continue
		}
		p.logger.Debug().
			Str("task", task.name).
			Int("worker", id).
			Dur("duration", time.Since(start)).
			Msg("Background task completed")
	}
}

// Submit enqueues a task. Returns false if the queue is full or the pool
// is shutting down; the task is dropped in that case.
func (p *Pool) Submit(name string, fn Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn().Str("task", name).Msg("Pool stopped, dropping task")
		return false
	}

	select {
	case p.tasks <- queuedTask{name: name, fn: fn}:
		return true
	default:
		p.logger.Warn().Str("task", name).Msg("Task queue full, dropping task")
		return false
	}
}

// Stop closes the queue and waits for in-flight tasks up to the drain
// timeout, then cancels their context.
func (p *Pool) Stop() {
	p.stopped.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(p.drainTimeout):
			p.logger.Warn().Msg("Drain timeout exceeded, cancelling remaining tasks")
			p.cancel()
			<-done
		}
		p.cancel()
	})
}
