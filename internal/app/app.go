package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rpggio/folio/internal/cache"
	"github.com/rpggio/folio/internal/config"
	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/domain/discovery"
	"github.com/rpggio/folio/internal/domain/reconcile"
	"github.com/rpggio/folio/internal/domain/retention"
	"github.com/rpggio/folio/internal/metrics"
	"github.com/rpggio/folio/internal/sqlite"
)

// App is an opened activity log: storage, services and the background
// retention worker. Obtain one with Open and release it with Close.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	DB       *sqlite.DB
	Live     *sqlite.ActivityRepository
	Archive  *sqlite.ArchiveRepository
	History  *sqlite.HistoryRepository
	Metadata *sqlite.MetadataRepository

	Activities *activity.Service
	Retention  *retention.Service
	Worker     *retention.Worker
	Importer   *reconcile.Service
	Discovery  *discovery.Service

	cache *cache.Client
}

// Open opens the database, applies migrations, resolves the installation
// actor and starts the retention worker. The worker stops when ctx is
// cancelled or Close is called.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	scope, err := discovery.ParseScope(cfg.Discovery.Scope)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(ctx, cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
		DB:       db,
		Live:     sqlite.NewActivityRepository(db),
		Archive:  sqlite.NewArchiveRepository(db),
		History:  sqlite.NewHistoryRepository(db),
		Metadata: sqlite.NewMetadataRepository(db),
	}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.New(a.Registry)

	actor, err := activity.ResolveActor(ctx, a.Metadata, cfg.Activity.ActorName, time.Now())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("resolve actor: %w", err)
	}

	policy := cfg.RetentionPolicy()
	a.Retention = retention.NewService(a.Live, sqlite.NewRotator(db), policy, logger, a.Metrics)
	a.Worker = retention.NewWorker(a.Retention, logger, a.Metrics)

	a.Activities = activity.NewService(a.Live, a.Archive, a.History, logger,
		activity.WithActor(actor),
		activity.WithRetention(a.Worker),
		activity.WithThresholds(policy.MaxEntries, policy.RetentionCount),
		activity.WithMetrics(a.Metrics),
	)
	a.Importer = reconcile.NewService(a.Live, a.Worker, logger, a.Metrics)

	discoveryOpts := []discovery.Option{
		discovery.WithPageSize(cfg.Discovery.PageSize),
		discovery.WithScope(scope),
		discovery.WithLogger(logger),
	}
	if cfg.Cache.RedisURL != "" {
		client, err := cache.New(ctx, cfg.Cache.RedisURL)
		if err != nil {
			// The feed works without its cache.
			logger.Warn("page cache unavailable", slog.Any("error", err))
		} else {
			a.cache = client
			discoveryOpts = append(discoveryOpts, discovery.WithCache(cache.NewPageCache(client.Client), cfg.Cache.TTL))
		}
	}
	a.Discovery = discovery.NewService(a.Live, a.History, discoveryOpts...)

	a.Worker.Start(ctx)

	logger.Info("activity log opened",
		slog.String("db", cfg.DB.Path),
		slog.String("actor", actor.ID),
		slog.Int("max_entries", policy.MaxEntries),
		slog.Int("retention_count", policy.RetentionCount),
		slog.String("discovery_scope", string(scope)),
	)
	return a, nil
}

// Close waits for pending retention work, then releases the cache and the
// database.
func (a *App) Close() error {
	a.Worker.Close()

	var errs []error
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if err := a.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

// Health checks the database and, when configured, the cache.
func (a *App) Health(ctx context.Context) error {
	if err := a.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if a.cache != nil {
		if err := a.cache.Health(ctx); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}
