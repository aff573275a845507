package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/cricketreels/backend/internal/catalog"
	"github.com/cricketreels/backend/internal/config"
	"github.com/cricketreels/backend/internal/db"
	"github.com/cricketreels/backend/internal/handlers"
	"github.com/cricketreels/backend/internal/httpserver"
	"github.com/cricketreels/backend/internal/logging"
	"github.com/cricketreels/backend/internal/middleware"
	"github.com/cricketreels/backend/internal/repositories"
	"github.com/cricketreels/backend/internal/storage"
)

// stdout is where subcommands print human-readable results.
var stdout io.Writer = os.Stdout

// Run bootstraps the Cricket Reels backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve, migrate, seed, or warm")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrations(ctx, args[1:])
	case "seed":
		return runSeed(ctx, args[1:])
	case "warm":
		return runWarm(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serve(ctx context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup(context.Background()) }()

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps.handlerDependencies())

	handler := middleware.RequestLogger(logger)(mux)

	srv := httpserver.New(cfg.AppPort, handler, httpserver.WithWriteTimeout(cfg.OEmbedTimeout+httpserver.ShutdownTimeout))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "port", cfg.AppPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.WarmCache {
		g.Go(func() error {
			stats, err := warmCatalog(gctx, deps.Catalog, deps.Resolver, cfg.WarmWorkers, false, logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("embed cache warm-up incomplete", "error", err)
			}
			logger.Info("embed cache warmed", "full", stats.Full, "degraded", stats.Degraded)
			return nil
		})
	}

	return g.Wait()
}

func runMigrations(ctx context.Context, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	migrator := db.Migrator{Dir: cfg.MigrationDir, Logger: logger}

	switch command {
	case "up", "status":
	case "down":
		return errors.New("down migrations are not supported yet")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if command == "status" {
		statuses, err := migrator.Status(ctx, pool)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			mark := " "
			if s.Applied {
				mark = "x"
			}
			fmt.Fprintf(stdout, "[%s] %s\n", mark, s.Name)
		}
		return nil
	}

	applied, err := migrator.Up(ctx, pool)
	for _, name := range applied {
		fmt.Fprintf(stdout, "applied migration %s\n", name)
	}
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(stdout, "no migrations to apply")
	}
	return nil
}

// runSeed writes the catalog (CATALOG_FILE when set, otherwise the builtin
// list) to postgres or to the configured S3 object.
func runSeed(ctx context.Context, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	target := config.CatalogPostgres
	if len(args) > 0 {
		target = args[0]
	}

	var source catalog.Source = catalog.BuiltinSource
	if cfg.CatalogFile != "" {
		source = catalog.FileSource{Path: cfg.CatalogFile}
	}

	// Validates ids before anything is written.
	cat, err := catalog.Load(ctx, source)
	if err != nil {
		return err
	}
	entries := cat.All()

	switch target {
	case config.CatalogPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		n, err := repositories.NewPostgresVideoRepository(pool).Seed(ctx, entries)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "seeded %d videos into postgres\n", n)
		return nil
	case config.CatalogS3:
		store, err := storage.NewS3CatalogStore(ctx, s3Config(cfg))
		if err != nil {
			return err
		}
		if err := store.Publish(ctx, entries); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "published %d videos to s3://%s/%s\n", len(entries), cfg.S3Bucket, cfg.S3Key)
		return nil
	default:
		return fmt.Errorf("unknown seed target %q (expected postgres or s3)", target)
	}
}

func runWarm(ctx context.Context, args []string) error {
	refresh := false
	for _, arg := range args {
		switch arg {
		case "--refresh", "-refresh":
			refresh = true
		default:
			return fmt.Errorf("unknown warm option %q (expected --refresh)", arg)
		}
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup(context.Background()) }()

	stats, err := warmCatalog(ctx, deps.Catalog, deps.Resolver, cfg.WarmWorkers, refresh, logger)
	fmt.Fprintf(stdout, "warmed %d videos: %d full, %d degraded\n", deps.Catalog.Count(), stats.Full, stats.Degraded)
	return err
}
