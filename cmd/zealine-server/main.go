// Package main is the entry point for the Zealine server.
// Zealine is a social media backend: media uploads, content, the follow
// graph, and interactions.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/blobstore"
	"github.com/prn-tf/zealine/internal/cache/memory"
	"github.com/prn-tf/zealine/internal/config"
	"github.com/prn-tf/zealine/internal/handler"
	"github.com/prn-tf/zealine/internal/lock"
	"github.com/prn-tf/zealine/internal/metrics"
	"github.com/prn-tf/zealine/internal/ratelimit"
	"github.com/prn-tf/zealine/internal/repository"
	"github.com/prn-tf/zealine/internal/repository/postgres"
	"github.com/prn-tf/zealine/internal/repository/redisrepo"
	"github.com/prn-tf/zealine/internal/repository/sqlite"
	"github.com/prn-tf/zealine/internal/service"
	"github.com/prn-tf/zealine/internal/worker"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// repositories bundles one database driver's stores plus its lifecycle.
type repositories struct {
	users         repository.UserRepository
	drafts        repository.DraftRepository
	posts         repository.PostRepository
	writePosts    repository.WritePostRepository
	zeals         repository.ZealPostRepository
	polls         repository.PollRepository
	follows       repository.FollowRepository
	comments      repository.CommentRepository
	likes         repository.LikeRepository
	saves         repository.SaveRepository
	shares        repository.ShareRepository
	reports       repository.ReportRepository
	notifications repository.NotificationRepository

	health func(ctx context.Context) error
	close  func() error
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting zealine server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repos.close()

	// Redis backs the cache, distributed locks, and rate limit counters.
	// Without it, in-process fallbacks keep a single node fully functional.
	var cache repository.Cache
	var locker lock.Locker
	if cfg.Redis.Enabled {
		client, err := redisrepo.NewClient(ctx, redisrepo.Config{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()

		cache = redisrepo.NewCache(client)
		locker = lock.NewRedisLocker(redisrepo.NewDistributedLock(client))
		logger.Info().Str("addr", cfg.Redis.Addr()).Msg("connected to redis")
	} else {
		cache = memory.NewCache()
		locker = lock.NewMemoryLocker()
		logger.Info().Msg("redis disabled, using in-process cache and locks")
	}

	gateway, mounts, err := openGateway(ctx, cfg.Blobstore, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize blobstore: %w", err)
	}

	m := metrics.New()

	pool := worker.NewPool(worker.Options{
		Workers:      cfg.Worker.Workers,
		QueueSize:    cfg.Worker.QueueSize,
		DrainTimeout: cfg.Worker.DrainTimeout,
	}, logger)
	defer pool.Stop()

	var apiLimiter, uploadLimiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		apiLimiter = ratelimit.NewCounterLimiter(cache, ratelimit.Config{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		}, "rl:api", true)
		uploadLimiter = ratelimit.NewCounterLimiter(cache, ratelimit.Config{
			Requests: cfg.RateLimit.UploadRequests,
			Window:   cfg.RateLimit.Window,
		}, "rl:upload", true)
	}

	resolver := service.NewContentResolver(repos.posts, repos.writePosts, repos.zeals, repos.polls, logger)

	uploads := service.NewUploadService(
		repos.drafts, repos.posts, repos.writePosts, repos.zeals,
		gateway, locker, pool, m, nil, logger, cfg.Upload,
	)
	content := service.NewContentService(
		repos.posts, repos.writePosts, repos.zeals, repos.polls,
		resolver, cache, m, logger,
	)
	users := service.NewUserService(repos.users, logger)
	follows := service.NewFollowService(repos.follows, repos.users, repos.notifications, pool, logger)
	engagement := service.NewEngagementService(
		repos.likes, repos.saves, repos.shares, repos.notifications,
		resolver, pool, m, logger,
	)
	comments := service.NewCommentService(repos.comments, repos.notifications, resolver, pool, m, logger)
	reports := service.NewReportService(repos.reports, resolver, m, logger)
	notifications := service.NewNotificationService(repos.notifications, logger)

	sweeper := service.NewSweeper(
		repos.drafts, gateway, resolver,
		repos.comments, repos.likes, repos.saves, repos.shares, repos.reports,
		repos.notifications, locker, m, logger,
		service.SweepConfig{
			Enabled:               cfg.Sweeper.Enabled,
			Interval:              cfg.Sweeper.Interval,
			BatchSize:             cfg.Sweeper.BatchSize,
			NotificationRetention: cfg.Sweeper.NotificationRetention,
			LockTTL:               cfg.Sweeper.LockTTL,
		},
	)
	if cfg.Sweeper.Enabled {
		sweeper.Start()
		defer sweeper.Stop()
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	router := handler.NewRouter(handler.RouterConfig{
		UploadHandler:      handler.NewUploadHandler(uploads, uploadLimiter, logger),
		ContentHandler:     handler.NewContentHandler(content, logger),
		InteractionHandler: handler.NewInteractionHandler(engagement, comments, reports, logger),
		UserHandler:        handler.NewUserHandler(users, follows, notifications, logger),
		Limiter:            apiLimiter,
		Metrics:            m,
		MetricsPath:        metricsPath,
		Health: func(r *http.Request) error {
			return repos.health(r.Context())
		},
		Mounts:      mounts,
		MaxBodySize: cfg.Server.MaxBodySize,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}

	return nil
}

// openRepositories selects the database driver and builds the full store set.
func openRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repositories, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &repositories{
			users:         postgres.NewUserRepository(db),
			drafts:        postgres.NewDraftRepository(db),
			posts:         postgres.NewPostRepository(db),
			writePosts:    postgres.NewWritePostRepository(db),
			zeals:         postgres.NewZealPostRepository(db),
			polls:         postgres.NewPollRepository(db),
			follows:       postgres.NewFollowRepository(db),
			comments:      postgres.NewCommentRepository(db),
			likes:         postgres.NewLikeRepository(db),
			saves:         postgres.NewSaveRepository(db),
			shares:        postgres.NewShareRepository(db),
			reports:       postgres.NewReportRepository(db),
			notifications: postgres.NewNotificationRepository(db),
			health:        db.Health,
			close:         db.Close,
		}, nil

	case "sqlite":
		sqliteCfg := sqlite.DefaultConfig(cfg.Database.Path)
		db, err := sqlite.NewDB(ctx, sqliteCfg, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &repositories{
			users:         sqlite.NewUserRepository(db),
			drafts:        sqlite.NewDraftRepository(db),
			posts:         sqlite.NewPostRepository(db),
			writePosts:    sqlite.NewWritePostRepository(db),
			zeals:         sqlite.NewZealPostRepository(db),
			polls:         sqlite.NewPollRepository(db),
			follows:       sqlite.NewFollowRepository(db),
			comments:      sqlite.NewCommentRepository(db),
			likes:         sqlite.NewLikeRepository(db),
			saves:         sqlite.NewSaveRepository(db),
			shares:        sqlite.NewShareRepository(db),
			reports:       sqlite.NewReportRepository(db),
			notifications: sqlite.NewNotificationRepository(db),
			health:        db.Health,
			close:         db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// openGateway selects the blobstore backend. The memory backend also returns
// an HTTP mount serving the stored objects, for development and testing.
func openGateway(ctx context.Context, cfg config.BlobstoreConfig, logger zerolog.Logger) (blobstore.Gateway, map[string]http.Handler, error) {
	switch cfg.Backend {
	case "s3":
		gw, err := blobstore.NewS3Gateway(ctx, blobstore.S3Config{
			Endpoint:        cfg.Endpoint,
			Region:          cfg.Region,
			Bucket:          cfg.Bucket,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			UsePathStyle:    cfg.UsePathStyle,
			PublicBaseURL:   cfg.PublicBaseURL,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return gw, nil, nil

	case "memory":
		gw := blobstore.NewMemoryGateway(cfg.PublicBaseURL)
		return gw, map[string]http.Handler{"/blob": gw.Handler()}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported blobstore backend: %s", cfg.Backend)
	}
}

// newLogger builds the root logger from configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stderr
	if cfg.Output == "stdout" {
		out = os.Stdout
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(out)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
