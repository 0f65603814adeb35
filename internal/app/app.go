// Package app assembles the service's components from configuration.
package app

import (
	"context"
	"fmt"

	gcpubsub "cloud.google.com/go/pubsub"
	gcstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/cache"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/catalog"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/config"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/fetch"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/job"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/logging"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/orchestrator"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/publisher"
	pubsubpub "github.com/ProgrammingPerson/wikipedizer-9000/internal/publisher/pubsub"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/source"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/storage"
	gcsstore "github.com/ProgrammingPerson/wikipedizer-9000/internal/storage/gcs"
	localstore "github.com/ProgrammingPerson/wikipedizer-9000/internal/storage/local"
)

// App holds every wired component plus the resources they own.
type App struct {
	Config       config.Config
	Logger       *zap.Logger
	Registry     *job.Registry
	Sources      source.Registry
	Catalog      catalog.Catalog
	Cache        cache.Store
	Blobs        storage.BlobStore
	Orchestrator *orchestrator.Orchestrator

	closers []func()
}

// New builds an App from configuration. Callers must Close it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, Registry: job.NewRegistry()}

	client := fetch.New(fetch.Config{
		UserAgent:     cfg.Fetch.UserAgent,
		Timeout:       cfg.FetchTimeout(),
		RespectRobots: cfg.Fetch.RespectRobots,
	})
	a.Sources = source.NewRegistry(client, source.Config{
		MinParagraphChars: cfg.Scrape.MinParagraphChars,
		ExcludedHeadings:  cfg.Scrape.ExcludedHeadings,
	})

	if cfg.Scrape.CatalogFile != "" {
		a.Catalog, err = catalog.LoadFile(cfg.Scrape.CatalogFile)
		if err != nil {
			return nil, err
		}
	} else {
		a.Catalog = catalog.Default()
	}

	if a.Cache, err = a.buildCache(ctx); err != nil {
		return nil, err
	}
	if a.Blobs, err = a.buildBlobs(ctx); err != nil {
		return nil, err
	}
	pub, err := a.buildPublisher(ctx)
	if err != nil {
		return nil, err
	}

	a.Orchestrator = orchestrator.New(
		a.Registry,
		a.Sources,
		a.Cache,
		a.Blobs,
		pub,
		nil,
		orchestrator.Config{
			OutputBaseDir: cfg.Output.Dir,
			RequestDelay:  cfg.RequestDelay(),
			FetchTimeout:  cfg.FetchTimeout(),
			PublishTopic:  cfg.PubSub.TopicName,
		},
		logger,
	)
	return a, nil
}

// Close releases owned clients in reverse construction order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.Logger.Sync()
}

func (a *App) buildCache(ctx context.Context) (cache.Store, error) {
	cfg := a.Config.Cache
	switch cfg.Backend {
	case "fs":
		return cache.NewFS(cfg.Dir, a.Config.CacheTTL(), nil, a.Logger)
	case "redis":
		store, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
			TTL:  a.Config.CacheTTL(),
		}, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := store.Close(); err != nil {
				a.Logger.Warn("close redis cache", zap.Error(err))
			}
		})
		return store, nil
	case "postgres":
		store, err := cache.NewPostgres(ctx, cfg.PostgresDSN, a.Config.CacheTTL(), a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func (a *App) buildBlobs(ctx context.Context) (storage.BlobStore, error) {
	cfg := a.Config.Output
	switch cfg.Backend {
	case "local":
		return localstore.New(cfg.Dir)
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := client.Close(); err != nil {
				a.Logger.Warn("close gcs client", zap.Error(err))
			}
		})
		return gcsstore.New(client, cfg.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown output backend %q", cfg.Backend)
	}
}

func (a *App) buildPublisher(ctx context.Context) (publisher.Publisher, error) {
	cfg := a.Config.PubSub
	if cfg.TopicName == "" {
		return nil, nil
	}
	client, err := gcpubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := client.Close(); err != nil {
			a.Logger.Warn("close pubsub client", zap.Error(err))
		}
	})
	return pubsubpub.New(client)
}
