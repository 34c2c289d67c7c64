package clients

import (
	"sync"
	"time"
)

// State is the circuit breaker state.
type State int

const (
	// StateClosed lets every request through.
	StateClosed State = iota

	// StateOpen blocks requests until the cool-down elapses.
	StateOpen

	// StateHalfOpen lets a limited number of trial requests through.
	StateHalfOpen
)

var stateNames = [...]string{
	StateClosed:   "closed",
	StateOpen:     "open",
	StateHalfOpen: "half-open",
}

// String returns a human-readable name for the state.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

// CircuitBreakerConfig configures the circuit breaker behavior.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures int

	// Timeout is the open-state cool-down before probing.
	Timeout time.Duration

	// HalfOpenLimit is both the concurrent trial limit and the number of
	// consecutive trial successes needed to close the circuit.
	HalfOpenLimit int
}

// CircuitBreaker guards the quotes API.
//
//	closed    -> open       after MaxFailures consecutive failures
//	open      -> half-open  once Timeout has passed since the last failure
//	half-open -> closed     after HalfOpenLimit consecutive successes
//	half-open -> open       on any failure
//
// Every Allow that returns true must be followed by exactly one of
// RecordSuccess, RecordFailure or Release.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	trials      int
	lastFailure time.Time

	onStateChange func(from, to State)

	// now is overridable in tests.
	now func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// OnStateChange registers fn to be called asynchronously on every transition.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.onStateChange = fn
}

// Allow reports whether a request may proceed. It moves an open circuit to
// half-open once the cool-down has elapsed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.remaining() > 0 {
			return false
		}

		cb.setState(StateHalfOpen)
	}

	if cb.trials >= cb.cfg.HalfOpenLimit {
		return false
	}

	cb.trials++

	return true
}

// RecordSuccess records a request the quotes API answered.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.releaseTrial()

		cb.successes++
		if cb.successes >= cb.cfg.HalfOpenLimit {
			cb.setState(StateClosed)
		}
	}
}

// RecordFailure records a request the quotes API failed to answer.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.MaxFailures {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.releaseTrial()
		cb.setState(StateOpen)
	}
}

// Release gives back an allowed request without an outcome, as when the
// caller abandons it. A half-open trial slot is freed for the next caller.
func (cb *CircuitBreaker) Release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.releaseTrial()
	}
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// RetryIn returns how long an open circuit keeps blocking requests.
// It is zero unless the circuit is open.
func (cb *CircuitBreaker) RetryIn() time.Duration {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateOpen {
		return 0
	}

	return max(cb.remaining(), 0)
}

// remaining must be called with mu held.
func (cb *CircuitBreaker) remaining() time.Duration {
	return cb.cfg.Timeout - cb.now().Sub(cb.lastFailure)
}

// releaseTrial must be called with mu held.
func (cb *CircuitBreaker) releaseTrial() {
	if cb.trials > 0 {
		cb.trials--
	}
}

// setState must be called with mu held.
func (cb *CircuitBreaker) setState(to State) {
	from := cb.state
	if from == to {
		return
	}

	cb.state = to
	cb.failures, cb.successes, cb.trials = 0, 0, 0

	if cb.onStateChange != nil {
		go cb.onStateChange(from, to)
	}
}
