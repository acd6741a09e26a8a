// Package main is the entry point for the Zealine maintenance job runner.
// It executes the background sweeps once and exits, for cron-style
// deployments where sweeps run outside the API server process.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/blobstore"
	"github.com/prn-tf/zealine/internal/config"
	"github.com/prn-tf/zealine/internal/lock"
	"github.com/prn-tf/zealine/internal/metrics"
	"github.com/prn-tf/zealine/internal/repository"
	"github.com/prn-tf/zealine/internal/repository/postgres"
	"github.com/prn-tf/zealine/internal/repository/redisrepo"
	"github.com/prn-tf/zealine/internal/repository/sqlite"
	"github.com/prn-tf/zealine/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Zealine Jobs\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "sweep", "drafts", "refs", "notifications":
		if err := runSweep(command); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runSweep(command string) error {
	cfg := config.MustLoad(os.Getenv("ZEALINE_CONFIG"))

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	sweeper, cleanup, err := buildSweeper(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	var results []service.SweepResult
	switch command {
	case "sweep":
		results = sweeper.RunAll(ctx)
	case "drafts":
		results = []service.SweepResult{sweeper.SweepExpiredDrafts(ctx)}
	case "refs":
		results = []service.SweepResult{sweeper.SweepStaleRefs(ctx)}
	case "notifications":
		results = []service.SweepResult{sweeper.SweepNotifications(ctx)}
	}

	failed := false
	for _, result := range results {
		if result.Skipped {
			fmt.Printf("%-14s skipped (lock held)\n", result.Job)
			continue
		}
		fmt.Printf("%-14s deleted=%d errors=%d duration=%s\n",
			result.Job, result.Deleted, result.Errors, result.Duration)
		if result.Errors > 0 {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("one or more sweep jobs reported errors")
	}
	return nil
}

// buildSweeper wires a sweeper with the minimal dependency set: the store
// layer, the blobstore gateway, and the distributed lock.
func buildSweeper(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*service.Sweeper, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var (
		drafts        repository.DraftRepository
		posts         repository.PostRepository
		writePosts    repository.WritePostRepository
		zeals         repository.ZealPostRepository
		polls         repository.PollRepository
		comments      repository.CommentRepository
		likes         repository.LikeRepository
		saves         repository.SaveRepository
		shares        repository.ShareRepository
		reports       repository.ReportRepository
		notifications repository.NotificationRepository
	)

	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanups = append(cleanups, func() { db.Close() })
		drafts = postgres.NewDraftRepository(db)
		posts = postgres.NewPostRepository(db)
		writePosts = postgres.NewWritePostRepository(db)
		zeals = postgres.NewZealPostRepository(db)
		polls = postgres.NewPollRepository(db)
		comments = postgres.NewCommentRepository(db)
		likes = postgres.NewLikeRepository(db)
		saves = postgres.NewSaveRepository(db)
		shares = postgres.NewShareRepository(db)
		reports = postgres.NewReportRepository(db)
		notifications = postgres.NewNotificationRepository(db)

	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return nil, nil, err
		}
		cleanups = append(cleanups, func() { db.Close() })
		drafts = sqlite.NewDraftRepository(db)
		posts = sqlite.NewPostRepository(db)
		writePosts = sqlite.NewWritePostRepository(db)
		zeals = sqlite.NewZealPostRepository(db)
		polls = sqlite.NewPollRepository(db)
		comments = sqlite.NewCommentRepository(db)
		likes = sqlite.NewLikeRepository(db)
		saves = sqlite.NewSaveRepository(db)
		shares = sqlite.NewShareRepository(db)
		reports = sqlite.NewReportRepository(db)
		notifications = sqlite.NewNotificationRepository(db)

	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	// The lock keeps a cron run from overlapping the in-server scheduler.
	var locker lock.Locker
	if cfg.Redis.Enabled {
		client, err := redisrepo.NewClient(ctx, redisrepo.Config{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		cleanups = append(cleanups, func() { client.Close() })
		locker = lock.NewRedisLocker(redisrepo.NewDistributedLock(client))
	} else {
		locker = lock.NewNoOpLocker()
	}

	var gateway blobstore.Gateway
	switch cfg.Blobstore.Backend {
	case "s3":
		gw, err := blobstore.NewS3Gateway(ctx, blobstore.S3Config{
			Endpoint:        cfg.Blobstore.Endpoint,
			Region:          cfg.Blobstore.Region,
			Bucket:          cfg.Blobstore.Bucket,
			AccessKeyID:     cfg.Blobstore.AccessKeyID,
			SecretAccessKey: cfg.Blobstore.SecretAccessKey,
			UsePathStyle:    cfg.Blobstore.UsePathStyle,
			PublicBaseURL:   cfg.Blobstore.PublicBaseURL,
		}, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		gateway = gw
	case "memory":
		gateway = blobstore.NewMemoryGateway(cfg.Blobstore.PublicBaseURL)
	default:
		cleanup()
		return nil, nil, fmt.Errorf("unsupported blobstore backend: %s", cfg.Blobstore.Backend)
	}

	resolver := service.NewContentResolver(posts, writePosts, zeals, polls, logger)

	sweepCfg := service.DefaultSweepConfig()
	if cfg.Sweeper.BatchSize > 0 {
		sweepCfg.BatchSize = cfg.Sweeper.BatchSize
	}
	if cfg.Sweeper.NotificationRetention > 0 {
		sweepCfg.NotificationRetention = cfg.Sweeper.NotificationRetention
	}
	if cfg.Sweeper.LockTTL > 0 {
		sweepCfg.LockTTL = cfg.Sweeper.LockTTL
	}

	sweeper := service.NewSweeper(
		drafts, gateway, resolver,
		comments, likes, saves, shares, reports,
		notifications, locker, metrics.New(), logger, sweepCfg,
	)

	return sweeper, cleanup, nil
}

func printUsage() {
	fmt.Println(`Zealine Jobs

Usage:
  zealine-jobs <command>

Commands:
  sweep          Run all sweep jobs once
  drafts         Expire stale upload drafts
  refs           Remove interactions referencing deleted content
  notifications  Delete old read notifications
  version        Print version information
  help           Show this help message

Configuration is read from the ZEALINE_CONFIG file path, ./config.yaml,
or ZEALINE_* environment variables.`)
}
