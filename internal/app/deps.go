package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cricketreels/backend/internal/catalog"
	"github.com/cricketreels/backend/internal/config"
	"github.com/cricketreels/backend/internal/db"
	"github.com/cricketreels/backend/internal/embeds"
	"github.com/cricketreels/backend/internal/handlers"
	"github.com/cricketreels/backend/internal/middleware"
	"github.com/cricketreels/backend/internal/repositories"
	"github.com/cricketreels/backend/internal/storage"
	"github.com/cricketreels/backend/internal/videos"
)

const (
	breakerThreshold = 3
	breakerOpenFor   = 5 * time.Minute
)

type cleanupFunc func(ctx context.Context) error

// services holds the wired collaborators shared by the subcommands.
type services struct {
	Catalog  *catalog.Catalog
	Resolver *embeds.Resolver
	Videos   *videos.Service
	Limiter  *middleware.IPRateLimiter
}

func (s services) handlerDependencies() handlers.Dependencies {
	return handlers.Dependencies{
		Videos:  s.Videos,
		Limiter: s.Limiter,
	}
}

// buildDependencies wires together the concrete implementations selected by cfg.
func buildDependencies(ctx context.Context, cfg config.Config, logger *slog.Logger) (services, cleanupFunc, error) {
	var cleanups []func()
	cleanup := func(context.Context) error {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		return nil
	}

	source, closeSource, err := catalogSource(ctx, cfg)
	if err != nil {
		return services{}, nil, err
	}
	cleanups = append(cleanups, closeSource)

	cat, err := catalog.Load(ctx, source)
	if err != nil {
		_ = cleanup(ctx)
		return services{}, nil, err
	}

	cache, closeCache, err := embedCache(ctx, cfg)
	if err != nil {
		_ = cleanup(ctx)
		return services{}, nil, err
	}
	cleanups = append(cleanups, closeCache)

	resolver := embeds.NewResolver(cache, embedProvider(cfg),
		embeds.WithCacheTTL(cfg.EmbedCacheTTL),
		embeds.WithCircuitBreaker(breakerThreshold, breakerOpenFor, logger),
		embeds.WithSingleFlight(),
	)

	logger.Info("catalog loaded", "source", cfg.CatalogSource, "videos", cat.Count(),
		"embedStrategy", cfg.EmbedStrategy, "embedCache", cfg.EmbedCacheBackend)

	return services{
		Catalog:  cat,
		Resolver: resolver,
		Videos:   videos.NewService(cat, resolver),
		Limiter:  middleware.NewIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
	}, cleanup, nil
}

func catalogSource(ctx context.Context, cfg config.Config) (catalog.Source, func(), error) {
	noop := func() {}

	switch cfg.CatalogSource {
	case config.CatalogBuiltin, "":
		return catalog.BuiltinSource, noop, nil
	case config.CatalogFile:
		return catalog.FileSource{Path: cfg.CatalogFile}, noop, nil
	case config.CatalogPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewPostgresVideoRepository(pool), pool.Close, nil
	case config.CatalogS3:
		store, err := storage.NewS3CatalogStore(ctx, s3Config(cfg))
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}
}

func embedCache(ctx context.Context, cfg config.Config) (embeds.Cache, func(), error) {
	switch cfg.EmbedCacheBackend {
	case config.CacheMemory, "":
		return embeds.NewMemoryCache(cfg.EmbedCacheTTL, cfg.EmbedCacheCleanup), func() {}, nil
	case config.CacheRedis:
		client, err := embeds.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return embeds.NewRedisCache(client, cfg.EmbedCacheTTL), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown embed cache backend %q", cfg.EmbedCacheBackend)
	}
}

func embedProvider(cfg config.Config) embeds.Provider {
	if cfg.EmbedStrategy == config.EmbedLocal {
		return embeds.LocalProvider{}
	}
	return embeds.NewOEmbedProvider(cfg.OEmbedEndpoint, cfg.OEmbedMaxWidth, cfg.OEmbedTimeout)
}

func s3Config(cfg config.Config) storage.S3Config {
	return storage.S3Config{
		Bucket:   cfg.S3Bucket,
		Key:      cfg.S3Key,
		Region:   cfg.S3Region,
		Endpoint: cfg.S3Endpoint,
	}
}

// warmCatalog resolves every catalog URL once through a worker pool. With
// refresh set, cached records are evicted first so every URL is refetched.
func warmCatalog(ctx context.Context, cat *catalog.Catalog, resolver *embeds.Resolver, workers int, refresh bool, logger *slog.Logger) (embeds.WarmStats, error) {
	warmer := embeds.NewWarmer(resolver, embeds.WarmerConfig{Workers: workers}, logger)

	for _, video := range cat.All() {
		if refresh {
			if err := resolver.Invalidate(ctx, video.URL); err != nil {
				logger.Warn("embed cache eviction failed", "url", video.URL, "error", err)
			}
		}
		if err := warmer.Enqueue(ctx, video.URL); err != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			_ = warmer.Shutdown(shutdownCtx)
			cancel()
			return warmer.Stats(), fmt.Errorf("enqueue %s: %w", video.URL, err)
		}
	}
	warmer.Close()

	if err := warmer.Wait(ctx); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return warmer.Stats(), errors.Join(err, warmer.Shutdown(shutdownCtx))
	}
	return warmer.Stats(), nil
}
