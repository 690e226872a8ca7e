package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type State uint8

const (
	Closed State = iota + 1
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	// Window is the number of latest calls the failure ratio is computed over.
	Window int
	// FailureRatio in (0,1] opens the breaker once reached inside Window.
	FailureRatio float64
	// Cooldown is how long an open breaker rejects calls before probing.
	Cooldown time.Duration
	// Probes is the number of consecutive successes a half-open breaker needs to close.
	Probes int
}

type CircuitBreaker interface {
	Call(fn func() error) error
	State() State
	Reset()
}

type circuitBreaker struct {
	mu  sync.Mutex
	cfg Config
	now func() time.Time

	state    State
	openedAt time.Time
	results  []bool // true marks a failed call
	pos      int
	probes   int
}

func New(cfg Config) CircuitBreaker {
	return newBreaker(cfg, time.Now)
}

func newBreaker(cfg Config, now func() time.Time) *circuitBreaker {
	if cfg.Window <= 0 {
		cfg.Window = 1
	}
	return &circuitBreaker{
		cfg:     cfg,
		now:     now,
		state:   Closed,
		results: make([]bool, cfg.Window),
	}
}

// Call runs fn unless the breaker is open. fn runs without the lock held.
func (cb *circuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == Open {
		if cb.now().Sub(cb.openedAt) < cb.cfg.Cooldown {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.state = HalfOpen
		cb.probes = 0
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.results[cb.pos] = err != nil
	cb.pos = (cb.pos + 1) % len(cb.results)

	if cb.state == HalfOpen {
		if err != nil {
			cb.trip()
			return err
		}
		cb.probes++
		if cb.probes >= cb.cfg.Probes {
			cb.reset()
		}
		return err
	}

	var fails int
	for _, failed := range cb.results {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(cb.results)) >= cb.cfg.FailureRatio {
		cb.trip()
	}
	return err
}

func (cb *circuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.reset()
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.probes = 0
	cb.openedAt = cb.now()
}

func (cb *circuitBreaker) reset() {
	for i := range cb.results {
		cb.results[i] = false
	}
	cb.pos = 0
	cb.probes = 0
	cb.state = Closed
}
