// Package circuitbreaker implements a fail-fast gate in front of the HTTP
// transport. It is not retry logic: it only refuses to dispatch while the
// upstream is known to be failing.
package circuitbreaker

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrOpen is returned when the breaker refuses a request.
var ErrOpen = errors.New("circuit breaker is open")

// State is the breaker's current mode.
type State int32

const (
	// StateClosed passes all requests through.
	StateClosed State = iota
	// StateOpen refuses requests until the cooldown expires.
	StateOpen
	// StateHalfOpen passes probe requests to test recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config holds the breaker thresholds.
type Config struct {
	// FailThreshold is the consecutive-failure count that opens the breaker.
	FailThreshold int
	// SuccessThreshold is the consecutive-success count that closes it again.
	SuccessThreshold int
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
}

// Breaker tracks request outcomes and gates dispatch accordingly.
type Breaker struct {
	state        atomic.Int32
	failures     atomic.Int32
	successes    atomic.Int32
	lastFailTime atomic.Int64
	config       Config
	mu           sync.Mutex
}

// New creates a Breaker in the closed state.
func New(config Config) *Breaker {
	b := &Breaker{config: config}
	b.state.Store(int32(StateClosed))
	return b
}

// Allow reports whether a request may be dispatched now.
func (b *Breaker) Allow() bool {
	switch State(b.state.Load()) {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		lastFail := time.Unix(0, b.lastFailTime.Load())
		if time.Since(lastFail) >= b.config.Cooldown {
			b.transition(StateOpen, StateHalfOpen)
			return true
		}
		return false
	default:
		return true
	}
}

// Record feeds one request outcome into the breaker.
func (b *Breaker) Record(success bool) {
	if success {
		b.recordSuccess()
	} else {
		b.recordFailure()
	}
}

// State returns the breaker's current mode.
func (b *Breaker) State() State {
	return State(b.state.Load())
}

func (b *Breaker) recordSuccess() {
	b.failures.Store(0)

	if State(b.state.Load()) == StateHalfOpen {
		if int(b.successes.Add(1)) >= b.config.SuccessThreshold {
			b.transition(StateHalfOpen, StateClosed)
		}
	}
}

func (b *Breaker) recordFailure() {
	b.successes.Store(0)
	b.lastFailTime.Store(time.Now().UnixNano())

	switch State(b.state.Load()) {
	case StateHalfOpen:
		b.transition(StateHalfOpen, StateOpen)
	case StateClosed:
		if int(b.failures.Add(1)) >= b.config.FailThreshold {
			b.transition(StateClosed, StateOpen)
		}
	}
}

func (b *Breaker) transition(from, to State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.CompareAndSwap(int32(from), int32(to)) {
		b.failures.Store(0)
		b.successes.Store(0)
	}
}
