// Package app initializes and holds long-lived application services, acting
// as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/JakeFAU/topic-classifier/internal/artifacts"
	"github.com/JakeFAU/topic-classifier/internal/classify"
	"github.com/JakeFAU/topic-classifier/internal/clock/system"
	"github.com/JakeFAU/topic-classifier/internal/config"
	collyfetcher "github.com/JakeFAU/topic-classifier/internal/fetcher/colly"
	"github.com/JakeFAU/topic-classifier/internal/fetcher/headless"
	"github.com/JakeFAU/topic-classifier/internal/id/uuid"
	"github.com/JakeFAU/topic-classifier/internal/publisher"
	"github.com/JakeFAU/topic-classifier/internal/storage"
	"github.com/JakeFAU/topic-classifier/internal/storage/gcs"
	"github.com/JakeFAU/topic-classifier/internal/storage/local"
	"github.com/JakeFAU/topic-classifier/internal/storage/postgres"
	"github.com/JakeFAU/topic-classifier/internal/store"
	storememory "github.com/JakeFAU/topic-classifier/internal/store/memory"
)

// App holds the shared, long-lived services for the application. It is
// initialized once at startup and passed to the HTTP layer.
type App struct {
	Engine    *classify.Engine
	Batch     *classify.BatchCoordinator
	Retrainer *classify.Retrainer
	Saver     *classify.ContentSaver
	History   store.HistoryStore

	logger   *zap.Logger
	pool     *pgxpool.Pool
	pub      publisher.Provider
	renderer *headless.Renderer
}

// New builds the full service graph from configuration. It fails fast when a
// critical dependency cannot be initialized.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{logger: logger}

	cacheStore, historyStore, err := a.initStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := a.initBlobStorage(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	pub, err := a.initPublisher(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.pub = pub

	source := a.initFetcher(cfg)

	artifactStore, err := artifacts.Open(cfg.Models.Dir, cfg.Models.BackupDir, logger.Named("artifacts"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open model artifacts: %w", err)
	}

	clock := system.New()
	cache := classify.NewCache(cacheStore, clock, cfg.CacheTTL())

	a.Engine = classify.NewEngine(cache, historyStore, source, artifactStore, logger.Named("engine"))
	a.Batch = classify.NewBatchCoordinator(a.Engine, uuid.NewUUIDGenerator(), pub, logger.Named("batch"))
	a.Retrainer = classify.NewRetrainer(cache, historyStore, source, artifactStore, pub, logger.Named("retrain"))
	a.Saver = classify.NewContentSaver(cache, source, blobs, logger.Named("content"))
	a.History = historyStore

	logger.Info("application services initialized")
	return a, nil
}

func (a *App) initStores(ctx context.Context, cfg config.Config) (store.CacheStore, store.HistoryStore, error) {
	switch cfg.DB.Driver {
	case "postgres":
		a.logger.Info("connecting to postgres")
		pool, err := postgres.NewPool(ctx, postgres.Config{
			DSN:             cfg.DB.DSN,
			CacheTable:      cfg.DB.CacheTable,
			HistoryTable:    cfg.DB.HistoryTable,
			MaxConns:        int32(cfg.DB.MaxConns),
			MinConns:        int32(cfg.DB.MinConns),
			MaxConnLifetime: time.Hour,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("initialize postgres: %w", err)
		}
		a.pool = pool
		cacheStore, err := postgres.NewCacheStore(pool, cfg.DB.CacheTable)
		if err != nil {
			return nil, nil, err
		}
		historyStore, err := postgres.NewHistoryStore(pool, cfg.DB.HistoryTable)
		if err != nil {
			return nil, nil, err
		}
		return cacheStore, historyStore, nil
	case "memory":
		a.logger.Info("using in-memory stores, data will not survive restarts")
		return storememory.NewCacheStore(), storememory.NewHistoryStore(nil), nil
	default:
		return nil, nil, fmt.Errorf("unknown db driver: %s", cfg.DB.Driver)
	}
}

func (a *App) initBlobStorage(ctx context.Context, cfg config.Config) (storage.Provider, error) {
	switch cfg.Storage.Backend {
	case "gcs":
		a.logger.Info("using GCS blob storage", zap.String("bucket", cfg.Storage.GCSBucket))
		provider, err := gcs.New(ctx, cfg.Storage.GCSBucket, a.logger.Named("gcs"))
		if err != nil {
			return nil, fmt.Errorf("initialize GCS storage: %w", err)
		}
		return provider, nil
	case "local":
		a.logger.Info("using local blob storage", zap.String("dir", cfg.Storage.LocalDir))
		provider, err := local.New(cfg.Storage.LocalDir)
		if err != nil {
			return nil, fmt.Errorf("initialize local storage: %w", err)
		}
		return provider, nil
	case "none":
		a.logger.Info("blob storage disabled, saved content will be discarded")
		return &storage.NoOpProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

func (a *App) initPublisher(ctx context.Context, cfg config.Config) (publisher.Provider, error) {
	if cfg.PubSub.ProjectID == "" || cfg.PubSub.TopicName == "" {
		a.logger.Info("pubsub not configured, notifications disabled")
		return &publisher.NoOpProvider{}, nil
	}
	a.logger.Info("connecting to GCP Pub/Sub", zap.String("topic", cfg.PubSub.TopicName))
	pub, err := publisher.NewPubSubProvider(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName, a.logger.Named("pubsub"))
	if err != nil {
		return nil, fmt.Errorf("initialize pubsub: %w", err)
	}
	return pub, nil
}

func (a *App) initFetcher(cfg config.Config) classify.ContentSource {
	var renderer collyfetcher.Renderer
	if cfg.Headless.Enabled {
		r, err := headless.NewChromedp(headless.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Fetch.UserAgent,
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		})
		if err != nil {
			a.logger.Warn("headless renderer init failed, continuing without fallback", zap.Error(err))
		} else {
			a.renderer = r
			renderer = r
		}
	}
	return collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	}, renderer, a.logger.Named("fetcher"))
}

// Close gracefully shuts down all services held by the container.
func (a *App) Close() {
	if a.pub != nil {
		if err := a.pub.Close(); err != nil {
			a.logger.Warn("error closing publisher", zap.Error(err))
		}
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
