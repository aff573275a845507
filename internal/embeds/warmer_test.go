package embeds

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestWarmerPopulatesCache(t *testing.T) {
	cache := NewMemoryCache(time.Hour, time.Hour)
	provider := &stubProvider{markup: Markup{HTML: "<blockquote/>"}}
	resolver := NewResolver(cache, provider)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	warmer := NewWarmer(resolver, WarmerConfig{QueueSize: 1, Workers: 2}, logger)

	urls := []string{"https://x/reel/A/", "https://x/reel/B/", "https://x/reel/C/"}
	for _, u := range urls {
		if err := warmer.Enqueue(context.Background(), u); err != nil {
			t.Fatalf("enqueue %s: %v", u, err)
		}
	}

	warmer.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := warmer.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if stats := warmer.Stats(); stats.Full != 3 || stats.Degraded != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	for _, u := range urls {
		if _, ok, _ := cache.Get(context.Background(), CacheKey(u)); !ok {
			t.Fatalf("expected %s to be cached", u)
		}
	}
}

func TestWarmerCountsDegraded(t *testing.T) {
	resolver := NewResolver(NewMemoryCache(time.Hour, time.Hour), &stubProvider{err: errors.New("boom")})
	warmer := NewWarmer(resolver, WarmerConfig{}, nil)

	if err := warmer.Enqueue(context.Background(), "https://x/reel/A/"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	warmer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := warmer.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if stats := warmer.Stats(); stats.Degraded != 1 || stats.Full != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestWarmerRejectsAfterShutdown(t *testing.T) {
	warmer := NewWarmer(NewResolver(nil, nil), WarmerConfig{Workers: 1}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := warmer.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if err := warmer.Enqueue(context.Background(), "https://x/reel/A/"); !errors.Is(err, errWarmerClosed) {
		t.Fatalf("expected errWarmerClosed got %v", err)
	}

	// idempotent
	warmer.Close()
}
