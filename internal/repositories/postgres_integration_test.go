//go:build integration

package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cricketreels/backend/internal/catalog"
	"github.com/cricketreels/backend/internal/db"
	"github.com/cricketreels/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	migrator := db.Migrator{Dir: filepath.Join("..", "..", "migrations")}
	if _, err := migrator.Up(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresVideoRepository_SeedListAndFind(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresVideoRepository(testPool)

	n, err := repo.Seed(ctx, catalog.Builtin())
	if err != nil {
		t.Fatalf("seed videos: %v", err)
	}
	if n != 37 {
		t.Fatalf("expected 37 seeded videos got %d", n)
	}

	videos, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list videos: %v", err)
	}
	if len(videos) != 37 || videos[0].ID != 1 || videos[36].ID != 37 {
		t.Fatalf("unexpected list result: %d entries", len(videos))
	}

	found, err := repo.FindByID(ctx, 10)
	if err != nil {
		t.Fatalf("find video: %v", err)
	}
	if found != catalog.Builtin()[9] {
		t.Fatalf("unexpected video %+v", found)
	}

	if _, err := repo.FindByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestPostgresVideoRepository_SeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresVideoRepository(testPool)
	first := []models.Video{{ID: 1, URL: "https://www.instagram.com/reel/A/", Platform: models.PlatformInstagram}}
	if _, err := repo.Seed(ctx, first); err != nil {
		t.Fatalf("seed: %v", err)
	}

	updated := []models.Video{{ID: 1, URL: "https://www.instagram.com/reel/B/", Platform: models.PlatformInstagram}}
	if _, err := repo.Seed(ctx, updated); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	videos, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(videos) != 1 || videos[0].URL != updated[0].URL {
		t.Fatalf("expected upserted row got %+v", videos)
	}
}

func TestPostgresVideoRepository_SeedRejectsInvalid(t *testing.T) {
	resetDatabase(t)

	repo := NewPostgresVideoRepository(testPool)
	_, err := repo.Seed(context.Background(), []models.Video{{ID: 2, URL: " ", Platform: models.PlatformInstagram}})
	if !errors.Is(err, ErrInvalidVideo) {
		t.Fatalf("expected ErrInvalidVideo got %v", err)
	}
}

func TestPostgresVideoRepository_CatalogSource(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresVideoRepository(testPool)
	if _, err := repo.Seed(ctx, catalog.Builtin()[:5]); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, err := catalog.Load(ctx, repo)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if c.Count() != 5 {
		t.Fatalf("expected 5 entries got %d", c.Count())
	}
}

func TestMigratorStatus(t *testing.T) {
	statuses, err := db.Migrator{Dir: filepath.Join("..", "..", "migrations")}.Status(context.Background(), testPool)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, s := range statuses {
		if !s.Applied {
			t.Fatalf("expected %s to be applied", s.Name)
		}
	}
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE videos"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
