package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/cricketreels/backend/internal/catalog"
	"github.com/cricketreels/backend/internal/config"
	"github.com/cricketreels/backend/internal/embeds"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func baseConfig() config.Config {
	return config.Config{
		AppPort:           5002,
		CatalogSource:     config.CatalogBuiltin,
		EmbedStrategy:     config.EmbedLocal,
		EmbedCacheBackend: config.CacheMemory,
		EmbedCacheTTL:     time.Hour,
		EmbedCacheCleanup: time.Minute,
		RateLimitRequests: 100,
		RateLimitWindow:   15 * time.Minute,
		WarmWorkers:       4,
	}
}

func TestBuildDependencies(t *testing.T) {
	deps, cleanup, err := buildDependencies(context.Background(), baseConfig(), discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer func() { _ = cleanup(context.Background()) }()

	if deps.Catalog == nil || deps.Catalog.Count() != 37 {
		t.Fatal("expected builtin catalog to be loaded")
	}
	if deps.Resolver == nil {
		t.Fatal("expected resolver to be configured")
	}
	if deps.Videos == nil {
		t.Fatal("expected video service to be configured")
	}
	if deps.Limiter == nil {
		t.Fatal("expected rate limiter to be configured")
	}

	handlerDeps := deps.handlerDependencies()
	if handlerDeps.Videos == nil || handlerDeps.Limiter == nil {
		t.Fatalf("unexpected handler dependencies: %+v", handlerDeps)
	}
}

func TestBuildDependenciesFileCatalogWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(`[{"id":4,"url":"https://www.instagram.com/reel/C81FkbaoAyr/","platform":"instagram"}]`), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cfg := baseConfig()
	cfg.CatalogSource = config.CatalogFile
	cfg.CatalogFile = path
	cfg.EmbedCacheBackend = config.CacheRedis
	cfg.RedisURL = "redis://" + mr.Addr()

	deps, cleanup, err := buildDependencies(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = cleanup(context.Background()) }()

	if deps.Catalog.Count() != 1 {
		t.Fatalf("expected one video got %d", deps.Catalog.Count())
	}

	url := "https://www.instagram.com/reel/C81FkbaoAyr/"
	if _, ok := deps.Resolver.Resolve(context.Background(), url).(embeds.Full); !ok {
		t.Fatal("expected local provider to produce a full record")
	}
	if !mr.Exists(embeds.CacheKey(url)) {
		t.Fatal("expected resolution to be cached in redis")
	}
}

func TestBuildDependenciesErrors(t *testing.T) {
	cases := map[string]func(*config.Config){
		"missing catalog file": func(c *config.Config) {
			c.CatalogSource = config.CatalogFile
			c.CatalogFile = filepath.Join(t.TempDir(), "missing.json")
		},
		"unknown source": func(c *config.Config) {
			c.CatalogSource = "ftp"
		},
		"bad redis url": func(c *config.Config) {
			c.EmbedCacheBackend = config.CacheRedis
			c.RedisURL = "not-a-url"
		},
		"unknown cache": func(c *config.Config) {
			c.EmbedCacheBackend = "memcached"
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := baseConfig()
			mutate(&cfg)

			if _, _, err := buildDependencies(context.Background(), cfg, discardLogger()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEmbedProviderSelection(t *testing.T) {
	cfg := baseConfig()
	if _, ok := embedProvider(cfg).(embeds.LocalProvider); !ok {
		t.Fatal("expected local provider")
	}

	cfg.EmbedStrategy = config.EmbedOEmbed
	cfg.OEmbedMaxWidth = 658
	provider, ok := embedProvider(cfg).(*embeds.OEmbedProvider)
	if !ok {
		t.Fatal("expected oEmbed provider")
	}
	if provider.MaxWidth != 658 || provider.Endpoint != embeds.DefaultOEmbedEndpoint {
		t.Fatalf("unexpected provider %+v", provider)
	}
}

func TestWarmCatalog(t *testing.T) {
	cat, err := catalog.New(catalog.Builtin())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cache := embeds.NewMemoryCache(time.Hour, time.Hour)
	resolver := embeds.NewResolver(cache, embeds.LocalProvider{})

	stats, err := warmCatalog(context.Background(), cat, resolver, 4, false, discardLogger())
	if err != nil {
		t.Fatalf("warmCatalog() error = %v", err)
	}
	if stats.Full != 37 || stats.Degraded != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	for _, video := range cat.All() {
		if _, ok, _ := cache.Get(context.Background(), embeds.CacheKey(video.URL)); !ok {
			t.Fatalf("expected %s to be cached", video.URL)
		}
	}
}

func TestWarmCatalogRefresh(t *testing.T) {
	cat, err := catalog.New(catalog.Builtin())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	ctx := context.Background()
	cache := embeds.NewMemoryCache(time.Hour, time.Hour)
	resolver := embeds.NewResolver(cache, embeds.LocalProvider{})

	first := cat.All()[0]
	key := embeds.CacheKey(first.URL)
	stale := embeds.Full{Shortcode: "stale", HTML: "<p>stale</p>"}

	if err := cache.Set(ctx, key, stale, time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := warmCatalog(ctx, cat, resolver, 2, false, discardLogger()); err != nil {
		t.Fatalf("warmCatalog() error = %v", err)
	}
	if got, _, _ := cache.Get(ctx, key); got != stale {
		t.Fatalf("expected cached record to survive a plain warm got %+v", got)
	}

	if _, err := warmCatalog(ctx, cat, resolver, 2, true, discardLogger()); err != nil {
		t.Fatalf("warmCatalog(refresh) error = %v", err)
	}
	got, ok, _ := cache.Get(ctx, key)
	if !ok || got == stale || !strings.Contains(got.HTML, "/embed/") {
		t.Fatalf("expected refetched record got %+v", got)
	}
}

// isolate keeps a developer's .env and CRICKETREELS_ variables out of Run.
func isolate(t *testing.T) *bytes.Buffer {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, "CRICKETREELS_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
	t.Setenv("CRICKETREELS_EMBED_STRATEGY", "local")
	t.Setenv("CRICKETREELS_LOG_LEVEL", "error")

	var out bytes.Buffer
	prev := stdout
	stdout = &out
	t.Cleanup(func() { stdout = prev })
	return &out
}

func TestRunRejectsUnknownCommands(t *testing.T) {
	isolate(t)
	ctx := context.Background()

	if err := Run(ctx, nil); err == nil {
		t.Fatal("expected error without command")
	}
	if err := Run(ctx, []string{"explode"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
	if err := Run(ctx, []string{"migrate", "down"}); err == nil {
		t.Fatal("expected error for down migrations")
	}
	if err := Run(ctx, []string{"migrate", "sideways"}); err == nil {
		t.Fatal("expected error for unknown migrate command")
	}
	if err := Run(ctx, []string{"seed", "mongo"}); err == nil {
		t.Fatal("expected error for unknown seed target")
	}
	if err := Run(ctx, []string{"warm", "--force"}); err == nil {
		t.Fatal("expected error for unknown warm option")
	}
}

func TestRunWarm(t *testing.T) {
	out := isolate(t)

	if err := Run(context.Background(), []string{"warm"}); err != nil {
		t.Fatalf("warm: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "warmed 37 videos: 37 full, 0 degraded" {
		t.Fatalf("unexpected output %q", got)
	}

	out.Reset()
	if err := Run(context.Background(), []string{"warm", "--refresh"}); err != nil {
		t.Fatalf("warm --refresh: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "warmed 37 videos: 37 full, 0 degraded" {
		t.Fatalf("unexpected refresh output %q", got)
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestServe(t *testing.T) {
	isolate(t)
	port := freePort(t)
	t.Setenv("CRICKETREELS_PORT", strconv.Itoa(port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Run(ctx, []string{"serve"}) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not become healthy: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	resp, err := http.Get(base + "/api/video-count")
	if err != nil {
		t.Fatalf("video-count: %v", err)
	}
	var count struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	resp.Body.Close()
	if count.Count != 37 {
		t.Fatalf("expected 37 got %d", count.Count)
	}

	resp, err = http.Get(base + "/api/video?videoId=1")
	if err != nil {
		t.Fatalf("video: %v", err)
	}
	var video struct {
		ID    int `json:"id"`
		Embed struct {
			Status    string `json:"status"`
			Shortcode string `json:"shortcode"`
		} `json:"embed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		t.Fatalf("decode video: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || video.ID != 1 || video.Embed.Status != "full" || video.Embed.Shortcode != "C84bjTnRXgI" {
		t.Fatalf("unexpected video response %d %+v", resp.StatusCode, video)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
