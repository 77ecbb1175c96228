package clients

import (
	"sync"
	"time"
)

// State is the circuit breaker position.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota

	// StateOpen rejects calls until the cool-down has passed.
	StateOpen

	// StateHalfOpen lets a limited number of probe calls through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Zero or negative CircuitBreakerConfig fields fall back to these.
const (
	defaultMaxFailures   = 5
	defaultOpenTimeout   = 30 * time.Second
	defaultHalfOpenLimit = 1
)

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	// MaxFailures consecutive failures open the circuit.
	MaxFailures int

	// Timeout is the cool-down before an open circuit admits probes.
	Timeout time.Duration

	// HalfOpenLimit is both the number of concurrent probes and the
	// number of probe successes needed to close again.
	HalfOpenLimit int
}

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.MaxFailures <= 0 {
		c.MaxFailures = defaultMaxFailures
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultOpenTimeout
	}
	if c.HalfOpenLimit <= 0 {
		c.HalfOpenLimit = defaultHalfOpenLimit
	}

	return c
}

// CircuitBreaker fails readings fast while the model provider is down, so
// an outage does not hold worker slots for the full client timeout.
//
// Closed opens after MaxFailures consecutive failures. Open turns half-open
// once Timeout has elapsed since it opened; this is evaluated lazily, so
// State reports half-open without a call having been made. Half-open closes
// after HalfOpenLimit successes and reopens on any failure.
type CircuitBreaker struct {
	mu        sync.Mutex
	cfg       CircuitBreakerConfig
	state     State
	failures  int
	successes int
	probes    int
	openedAt  time.Time
	onChange  func(from, to State)
	now       func() time.Time
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg.withDefaults(), now: time.Now}
}

// OnStateChange registers fn to run after each transition, outside the
// breaker's lock.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.onChange = fn
}

// transition is a pending state change notification.
type transition struct {
	from, to State
	fn       func(from, to State)
}

func (t transition) notify() {
	if t.fn != nil && t.from != t.to {
		t.fn(t.from, t.to)
	}
}

// Allow reports whether a call may proceed. A true result must be followed
// by RecordSuccess or RecordFailure.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	tr := cb.advance()

	allowed := false
	switch cb.state {
	case StateClosed:
		allowed = true
	case StateHalfOpen:
		if cb.probes < cb.cfg.HalfOpenLimit {
			cb.probes++
			allowed = true
		}
	}
	cb.mu.Unlock()

	tr.notify()

	return allowed
}

// RecordSuccess closes a half-open circuit once enough probes succeed and
// resets the failure streak of a closed one.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	var tr transition

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.probes = max(cb.probes-1, 0)
		cb.successes++
		if cb.successes >= cb.cfg.HalfOpenLimit {
			tr = cb.moveTo(StateClosed)
		}
	}
	cb.mu.Unlock()

	tr.notify()
}

// RecordFailure opens the circuit when the streak reaches MaxFailures, or
// immediately when half-open.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	var tr transition

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.MaxFailures {
			tr = cb.moveTo(StateOpen)
		}
	case StateHalfOpen:
		cb.probes = max(cb.probes-1, 0)
		tr = cb.moveTo(StateOpen)
	}
	cb.mu.Unlock()

	tr.notify()
}

// State returns the current state, applying an elapsed cool-down.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	tr := cb.advance()
	state := cb.state
	cb.mu.Unlock()

	tr.notify()

	return state
}

// OpenFor is how long an open circuit keeps rejecting calls; zero otherwise.
func (cb *CircuitBreaker) OpenFor() time.Duration {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateOpen {
		return 0
	}

	return max(cb.cfg.Timeout-cb.now().Sub(cb.openedAt), 0)
}

// advance moves open to half-open when the cool-down is over. Lock held.
func (cb *CircuitBreaker) advance() transition {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.Timeout {
		return cb.moveTo(StateHalfOpen)
	}

	return transition{}
}

// moveTo switches state and resets the counters. Lock held.
func (cb *CircuitBreaker) moveTo(to State) transition {
	from := cb.state
	cb.state = to
	cb.failures, cb.successes, cb.probes = 0, 0, 0

	if to == StateOpen {
		cb.openedAt = cb.now()
	}

	return transition{from: from, to: to, fn: cb.onChange}
}
