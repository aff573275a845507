package embeds

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while a host is skipped after repeated failures.
var ErrCircuitOpen = errors.New("embed provider circuit open")

type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
	stateHalfOpen
)

func (s circuitState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

type hostCircuit struct {
	state       circuitState
	failures    int
	lastFailure time.Time
}

// circuitBreaker stops calling a provider host after consecutive failures and
// lets a single trial request through once openFor has elapsed.
type circuitBreaker struct {
	mu        sync.Mutex
	hosts     map[string]*hostCircuit
	threshold int
	openFor   time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func newCircuitBreaker(threshold int, openFor time.Duration, logger *slog.Logger) *circuitBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if openFor <= 0 {
		openFor = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &circuitBreaker{
		hosts:     make(map[string]*hostCircuit),
		threshold: threshold,
		openFor:   openFor,
		now:       time.Now,
		logger:    logger,
	}
}

func (cb *circuitBreaker) allow(host string) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	hc, ok := cb.hosts[host]
	if !ok {
		return nil
	}

	switch hc.state {
	case stateOpen:
		retryAt := hc.lastFailure.Add(cb.openFor)
		if cb.now().Before(retryAt) {
			return fmt.Errorf("%w for %s (failures: %d, next retry: %s)", ErrCircuitOpen, host, hc.failures, retryAt.Format(time.TimeOnly))
		}
		hc.state = stateHalfOpen
		cb.logger.Info("embed provider circuit half-open", "host", host)
		return nil
	case stateHalfOpen:
		// one trial request is already in flight
		return fmt.Errorf("%w for %s (trial request in flight)", ErrCircuitOpen, host)
	default:
		return nil
	}
}

func (cb *circuitBreaker) success(host string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	hc, ok := cb.hosts[host]
	if !ok {
		return
	}
	if hc.state != stateClosed {
		cb.logger.Info("embed provider circuit closed", "host", host)
	}
	delete(cb.hosts, host)
}

// release gives back a half-open trial slot without counting a failure.
func (cb *circuitBreaker) release(host string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if hc, ok := cb.hosts[host]; ok && hc.state == stateHalfOpen {
		hc.state = stateOpen
	}
}

func (cb *circuitBreaker) failure(host string, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	hc, ok := cb.hosts[host]
	if !ok {
		hc = &hostCircuit{}
		cb.hosts[host] = hc
	}

	hc.failures++
	hc.lastFailure = cb.now()

	if hc.state == stateHalfOpen || hc.failures >= cb.threshold {
		if hc.state != stateOpen {
			cb.logger.Warn("embed provider circuit opened", "host", host, "failures", hc.failures, "error", err)
		}
		hc.state = stateOpen
		return
	}

	cb.logger.Debug("embed provider failure recorded", "host", host, "failures", hc.failures, "threshold", cb.threshold, "error", err)
}

func (cb *circuitBreaker) state(host string) circuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if hc, ok := cb.hosts[host]; ok {
		return hc.state
	}
	return stateClosed
}
