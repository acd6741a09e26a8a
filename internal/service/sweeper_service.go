package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/blobstore"
	"github.com/prn-tf/zealine/internal/lock"
	"github.com/prn-tf/zealine/internal/metrics"
	"github.com/prn-tf/zealine/internal/repository"
)

// Sweeper runs the periodic cleanup jobs: failing expired upload drafts,
// reclaiming interaction rows that point at deleted content, and trimming
// old read notifications. Every job is idempotent and guarded by a
// distributed lock, so overlapping instances and cron invocations are safe.
type Sweeper struct {
	drafts        repository.DraftRepository
	gateway       blobstore.Gateway
	resolver      *ContentResolver
	notifications repository.NotificationRepository
	refStores     map[string]repository.RefSweepStore
	locker        lock.Locker
	metrics       *metrics.Metrics
	logger        zerolog.Logger
	config        SweepConfig

	// Control
	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// SweepConfig contains sweep scheduling configuration.
type SweepConfig struct {
	// Enabled determines if sweeps run automatically.
	Enabled bool

	// Interval is how often to run the sweeps.
	Interval time.Duration

	// BatchSize is the maximum number of rows to process per run and job.
	BatchSize int

	// NotificationRetention is how long read notifications are kept.
	NotificationRetention time.Duration

	// LockTTL is the distributed lock TTL per job run.
	LockTTL time.Duration
}

// DefaultSweepConfig returns sensible defaults.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Enabled:               true,
		Interval:              15 * time.Minute,
		BatchSize:             500,
		NotificationRetention: 30 * 24 * time.Hour,
		LockTTL:               5 * time.Minute,
	}
}

// NewSweeper creates a new sweeper.
func NewSweeper(
	drafts repository.DraftRepository,
	gateway blobstore.Gateway,
	resolver *ContentResolver,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	saves repository.SaveRepository,
	shares repository.ShareRepository,
	reports repository.ReportRepository,
	notifications repository.NotificationRepository,
	locker lock.Locker,
	m *metrics.Metrics,
	logger zerolog.Logger,
	config SweepConfig,
) *Sweeper {
	return &Sweeper{
		drafts:        drafts,
		gateway:       gateway,
		resolver:      resolver,
		notifications: notifications,
		refStores: map[string]repository.RefSweepStore{
			"comments": comments,
			"likes":    likes,
			"saves":    saves,
			"shares":   shares,
			"reports":  reports,
		},
		locker:   locker,
		metrics:  m,
		logger:   logger.With().Str("service", "sweeper").Logger(),
		config:   config,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the sweep scheduler.
func (sw *Sweeper) Start() {
	sw.mu.Lock()
	if sw.running {
		sw.mu.Unlock()
		return
	}
	sw.running = true
	sw.mu.Unlock()

	sw.logger.Info().
		Dur("interval", sw.config.Interval).
		Int("batch_size", sw.config.BatchSize).
		Dur("notification_retention", sw.config.NotificationRetention).
		Msg("Starting sweeper")

	go sw.runLoop()
}

// Stop stops the sweep scheduler.
func (sw *Sweeper) Stop() {
	sw.mu.Lock()
	if !sw.running {
		sw.mu.Unlock()
		return
	}
	sw.running = false
	sw.mu.Unlock()

	close(sw.stopChan)
	<-sw.doneChan

	sw.logger.Info().Msg("Sweeper stopped")
}

func (sw *Sweeper) runLoop() {
	defer close(sw.doneChan)

	// Run immediately on start
	sw.RunAll(context.Background())

	ticker := time.NewTicker(sw.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.RunAll(context.Background())
		case <-sw.stopChan:
			return
		}
	}
}

// SweepResult contains the result of one sweep job run.
type SweepResult struct {
	// Job names the sweep job.
	Job string

	// Deleted is the number of rows or drafts changed or removed.
	Deleted int64

	// Errors is the number of errors encountered.
	Errors int

	// Skipped indicates the run was skipped because the lock was held.
	Skipped bool

	// Duration is how long the run took.
	Duration time.Duration
}

// RunAll executes all sweep jobs once and returns their results.
// Callable manually, from the scheduler, or from a cron binary.
func (sw *Sweeper) RunAll(ctx context.Context) []SweepResult {
	return []SweepResult{
		sw.SweepExpiredDrafts(ctx),
		sw.SweepStaleRefs(ctx),
		sw.SweepNotifications(ctx),
	}
}

// SweepExpiredDrafts fails drafts whose claim window elapsed while still in
// draft status, aborting their multipart sessions so the gateway reclaims
// part storage.
func (sw *Sweeper) SweepExpiredDrafts(ctx context.Context) SweepResult {
	return sw.runJob(ctx, "drafts", lock.Keys.DraftSweep(), func(ctx context.Context, result *SweepResult) {
		drafts, err := sw.drafts.ListExpiredPending(ctx, time.Now().UTC(), sw.config.BatchSize)
		if err != nil {
			sw.logger.Error().Err(err).Msg("Failed to list expired drafts")
			result.Errors++
			return
		}

		for _, draft := range drafts {
			if draft.IsMultipart && draft.SessionID != "" {
				if err := sw.gateway.AbortMultipart(ctx, draft.StorageKey, draft.SessionID); err != nil && !errors.Is(err, blobstore.ErrSessionNotFound) {
					sw.logger.Warn().
						Err(err).
						Str("draft_id", draft.ID.String()).
						Msg("Failed to abort expired multipart session")
				}
			}

			if err := sw.drafts.MarkFailed(ctx, draft.ID, "upload draft expired"); err != nil {
				sw.logger.Error().Err(err).Str("draft_id", draft.ID.String()).Msg("Failed to fail expired draft")
				result.Errors++
				continue
			}
			result.Deleted++
		}
	})
}

// SweepStaleRefs removes interaction rows whose content reference no longer
// resolves. References are weak, so rows left behind by a content deletion
// are expected and reclaimed here rather than at delete time.
func (sw *Sweeper) SweepStaleRefs(ctx context.Context) SweepResult {
	return sw.runJob(ctx, "refs", lock.Keys.RefSweep(), func(ctx context.Context, result *SweepResult) {
		for name, store := range sw.refStores {
			deleted, errs := sw.sweepStoreRefs(ctx, name, store)
			result.Deleted += deleted
			result.Errors += errs
		}
	})
}

func (sw *Sweeper) sweepStoreRefs(ctx context.Context, name string, store repository.RefSweepStore) (int64, int) {
	var (
		deleted int64
		errs    int
		offset  int
	)

	for {
		refs, err := store.DistinctRefs(ctx, sw.config.BatchSize, offset)
		if err != nil {
			sw.logger.Error().Err(err).Str("store", name).Msg("Failed to page distinct refs")
			return deleted, errs + 1
		}
		if len(refs) == 0 {
			return deleted, errs
		}

		var pageDeleted int
		for _, ref := range refs {
			exists, err := sw.resolver.Exists(ctx, ref)
			if err != nil {
				errs++
				continue
			}
			if exists {
				continue
			}

			n, err := store.DeleteByRef(ctx, ref)
			if err != nil {
				sw.logger.Error().
					Err(err).
					Str("store", name).
					Str("content_type", string(ref.Type)).
					Str("content_id", ref.ID.String()).
					Msg("Failed to delete stale references")
				errs++
				continue
			}
			deleted += n
			pageDeleted++

			// Notifications pointing at the same dead item go with it.
			if nn, err := sw.notifications.DeleteByRef(ctx, ref); err == nil {
				deleted += nn
			}
		}

		if len(refs) < sw.config.BatchSize {
			return deleted, errs
		}
		// Deletions shrink the distinct set, so advancing the offset would
		// skip rows; re-page from the start until a full page comes back
		// clean. Clean pages advance, so the loop terminates.
		if pageDeleted > 0 {
			offset = 0
			continue
		}
		offset += sw.config.BatchSize
	}
}

// SweepNotifications removes read notifications older than the retention
// window.
func (sw *Sweeper) SweepNotifications(ctx context.Context) SweepResult {
	return sw.runJob(ctx, "notifications", lock.Keys.NotificationSweep(), func(ctx context.Context, result *SweepResult) {
		cutoff := time.Now().UTC().Add(-sw.config.NotificationRetention)
		deleted, err := sw.notifications.DeleteReadBefore(ctx, cutoff)
		if err != nil {
			sw.logger.Error().Err(err).Msg("Failed to trim notifications")
			result.Errors++
			return
		}
		result.Deleted = deleted
	})
}

// runJob wraps one sweep job with the distributed lock, timing, logging, and
// metrics.
func (sw *Sweeper) runJob(ctx context.Context, job, lockKey string, fn func(ctx context.Context, result *SweepResult)) SweepResult {
	start := time.Now()
	result := SweepResult{Job: job}

	acquired, err := sw.locker.Acquire(ctx, lockKey, sw.config.LockTTL)
	if err != nil {
		sw.logger.Error().Err(err).Str("job", job).Msg("Failed to acquire sweep lock")
		result.Errors++
		result.Duration = time.Since(start)
		return result
	}
	if !acquired {
		sw.logger.Debug().Str("job", job).Msg("Sweep lock held by another process, skipping run")
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	}
	defer func() {
		if _, err := sw.locker.Release(ctx, lockKey); err != nil {
			sw.logger.Error().Err(err).Str("job", job).Msg("Failed to release sweep lock")
		}
	}()

	fn(ctx, &result)
	result.Duration = time.Since(start)

	if sw.metrics != nil {
		sw.metrics.RecordSweepRun(job, result.Duration.Seconds(), result.Deleted)
	}

	sw.logger.Info().
		Str("job", job).
		Int64("deleted", result.Deleted).
		Int("errors", result.Errors).
		Dur("duration", result.Duration).
		Msg("Sweep run completed")

	return result
}
