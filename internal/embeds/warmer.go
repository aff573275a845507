package embeds

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// WarmerConfig controls the concurrency characteristics of the warmer.
type WarmerConfig struct {
	QueueSize int
	Workers   int
	// Timeout bounds a single resolution.
	Timeout time.Duration
}

// WarmStats counts warm-up outcomes.
type WarmStats struct {
	Full     int64
	Degraded int64
}

// Warmer resolves URLs in the background so the first visitor of each video
// is served from cache.
type Warmer struct {
	resolver *Resolver
	logger   *slog.Logger
	timeout  time.Duration

	mu     sync.RWMutex
	closed bool
	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	full     atomic.Int64
	degraded atomic.Int64
}

var errWarmerClosed = errors.New("embed warmer closed")

// NewWarmer starts cfg.Workers goroutines draining a queue of URLs.
func NewWarmer(resolver *Resolver, cfg WarmerConfig, logger *slog.Logger) *Warmer {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &Warmer{
		resolver: resolver,
		logger:   logger,
		timeout:  cfg.Timeout,
		jobs:     make(chan string, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	w.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go w.worker()
	}

	return w
}

// Enqueue schedules videoURL for resolution, blocking while the queue is full.
func (w *Warmer) Enqueue(ctx context.Context, videoURL string) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return errWarmerClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.ctx.Done():
		return errWarmerClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.ctx.Done():
		return errWarmerClosed
	case w.jobs <- videoURL:
		return nil
	}
}

// Close stops accepting work. URLs already queued are still resolved.
func (w *Warmer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
}

// Wait blocks until every queued URL has been processed or ctx ends.
func (w *Warmer) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Shutdown abandons queued work and waits for in-flight resolutions.
func (w *Warmer) Shutdown(ctx context.Context) error {
	w.cancel()
	w.Close()
	return w.Wait(ctx)
}

// Stats returns the outcome counts so far.
func (w *Warmer) Stats() WarmStats {
	return WarmStats{Full: w.full.Load(), Degraded: w.degraded.Load()}
}

func (w *Warmer) worker() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case videoURL, ok := <-w.jobs:
			if !ok {
				return
			}
			w.handle(videoURL)
		}
	}
}

func (w *Warmer) handle(videoURL string) {
	if w.resolver == nil {
		w.logger.Error("embed warmer missing resolver")
		w.degraded.Add(1)
		return
	}

	ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
	defer cancel()

	switch w.resolver.Resolve(ctx, videoURL).(type) {
	case Full:
		w.full.Add(1)
	default:
		w.degraded.Add(1)
		w.logger.Warn("embed warm-up degraded", "url", videoURL)
	}
}
