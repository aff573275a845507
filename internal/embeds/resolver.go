package embeds

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cricketreels/backend/internal/logging"
)

// Resolver turns video URLs into embed records. It never fails: provider
// errors produce a Degraded record, which is not cached so the next request
// retries the provider.
type Resolver struct {
	cache    Cache
	provider Provider
	ttl      time.Duration
	breaker  *circuitBreaker
	flights  *singleflight.Group
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCacheTTL sets the TTL applied to successful resolutions.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithCircuitBreaker skips a provider host for openFor after threshold
// consecutive failures.
func WithCircuitBreaker(threshold int, openFor time.Duration, logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.breaker = newCircuitBreaker(threshold, openFor, logger)
	}
}

// WithSingleFlight coalesces concurrent misses for the same URL into one
// provider call. Waiters share the leader's result, including its failure.
// The shared call outlives any single caller's context; the provider's own
// timeout bounds it.
func WithSingleFlight() ResolverOption {
	return func(r *Resolver) {
		r.flights = &singleflight.Group{}
	}
}

// NewResolver builds a resolver over cache and provider.
func NewResolver(cache Cache, provider Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		cache:    cache,
		provider: provider,
		ttl:      DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the embed record for videoURL.
func (r *Resolver) Resolve(ctx context.Context, videoURL string) Record {
	ctx, span := logging.StartSpan(ctx, "embeds.resolve")
	defer span.End()

	logger := logging.FromContext(ctx).With("url", videoURL)
	key := CacheKey(videoURL)
	shortcode := Shortcode(videoURL)

	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			logger.Warn("embed cache read failed", "error", err)
		} else if ok {
			logger.Debug("embed cache hit")
			return cached
		}
	}

	logger.Debug("embed cache miss, fetching")

	markup, err := r.fetchShared(ctx, key, videoURL)
	if err != nil {
		logger.Warn("embed fetch failed, returning degraded record", "shortcode", shortcode, "error", err)
		return Degraded{Shortcode: shortcode}
	}

	full := Full{Shortcode: shortcode, HTML: markup.HTML, ThumbnailURL: markup.ThumbnailURL}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, full, r.ttl); err != nil {
			logger.Warn("embed cache write failed", "error", err)
		}
	}

	logger.Info("embed fetched and cached", "shortcode", shortcode)
	return full
}

// Invalidate evicts the cached record for videoURL.
func (r *Resolver) Invalidate(ctx context.Context, videoURL string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Delete(ctx, CacheKey(videoURL))
}

func (r *Resolver) fetchShared(ctx context.Context, key, videoURL string) (Markup, error) {
	if r.flights == nil {
		return r.fetch(ctx, videoURL)
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := r.flights.DoChan(key, func() (any, error) {
		return r.fetch(flightCtx, videoURL)
	})

	select {
	case res := <-ch:
		if res.Shared {
			logging.FromContext(ctx).Debug("embed fetch shared with concurrent request", "url", videoURL)
		}
		markup, _ := res.Val.(Markup)
		return markup, res.Err
	case <-ctx.Done():
		return Markup{}, ctx.Err()
	}
}

func (r *Resolver) fetch(ctx context.Context, videoURL string) (Markup, error) {
	if r.provider == nil {
		return Markup{}, ErrProviderUnavailable
	}

	host := hostOf(videoURL)
	if r.breaker != nil {
		if err := r.breaker.allow(host); err != nil {
			return Markup{}, err
		}
	}

	markup, err := r.provider.Fetch(ctx, videoURL)
	if err == nil && strings.TrimSpace(markup.HTML) == "" {
		err = ErrEmptyMarkup
	}

	if r.breaker != nil {
		switch {
		case err == nil:
			r.breaker.success(host)
		case callerGone(ctx, err):
			// the provider was not at fault
			r.breaker.release(host)
		default:
			r.breaker.failure(host, err)
		}
	}

	return markup, err
}

// callerGone reports whether err stems from the caller's own context ending
// rather than from the provider.
func callerGone(ctx context.Context, err error) bool {
	if ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
}
