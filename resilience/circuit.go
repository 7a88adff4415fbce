package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is blocking all requests.
	StateOpen
	// StateHalfOpen means the circuit is testing if the service recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
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

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive counted failures
	// before opening the circuit.
	// Default: 5
	FailureThreshold int

	// SuccessThreshold is the number of consecutive successes in
	// half-open required to close the circuit.
	// Default: 1
	SuccessThreshold int

	// RecoveryTimeout is how long the circuit stays open before the
	// next call attempt is allowed through as a half-open probe. The
	// transition is evaluated lazily at that attempt, never by a timer.
	// Default: 30 seconds
	RecoveryTimeout time.Duration

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)

	// IsFailure determines if an error counts toward the failure
	// threshold. Default: all non-nil errors count.
	IsFailure func(err error) bool

	// IsExcluded marks errors that never count as failures, even when
	// IsFailure also matches them. Excluded errors are treated as
	// successes for state accounting.
	IsExcluded func(err error) bool
}

// CircuitBreaker implements the circuit breaker pattern.
//
// Contract:
// - Concurrency: safe for concurrent use; state transitions are
//   serialized under one mutex, so racing callers observe a single
//   consistent state history.
// - Half-open admits one probe call at a time; concurrent calls are
//   rejected with ErrCircuitOpen until the probe completes.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu               sync.Mutex
	state            State
	failures         int
	successes        int
	lastFailure      time.Time
	openedAt         time.Time
	halfOpenInflight bool
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 30 * time.Second
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs the operation through the circuit breaker.
//
// It returns the operation's error unchanged after updating breaker
// state, or ErrCircuitOpen without invoking the operation when the
// circuit is rejecting calls.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	// afterRequest must run even if op panics, or a half-open probe
	// slot would never be released. A panic is recorded as a failure
	// before it propagates.
	err := errOpPanicked
	defer func() { cb.afterRequest(err) }()

	err = op(ctx)
	return err
}

// State returns the current circuit state without side effects. An
// open circuit whose recovery timeout has elapsed still reports open
// until the next call attempt transitions it.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Trip forces the circuit open, bypassing failure accounting.
func (cb *CircuitBreaker) Trip() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = StateOpen
	cb.openedAt = time.Now()
	cb.successes = 0
	cb.halfOpenInflight = false

	cb.notify(oldState, cb.state)
}

// Reset forces the circuit closed and zeroes all counters, bypassing
// success accounting.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenInflight = false

	cb.notify(oldState, cb.state)
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	// Lazy open -> half-open transition at the call attempt.
	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.config.RecoveryTimeout {
		cb.state = StateHalfOpen
		cb.successes = 0
		cb.halfOpenInflight = false
		cb.notify(StateOpen, StateHalfOpen)
	}

	switch cb.state {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.halfOpenInflight {
			return ErrCircuitOpen
		}
		cb.halfOpenInflight = true
	}

	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	isFailure := err != nil && cb.config.IsFailure(err)
	if err != nil && cb.config.IsExcluded != nil && cb.config.IsExcluded(err) {
		// Excluded always wins over counted.
		isFailure = false
	}

	oldState := cb.state

	switch cb.state {
	case StateClosed:
		if isFailure {
			cb.failures++
			cb.lastFailure = time.Now()
			if cb.failures >= cb.config.FailureThreshold {
				cb.state = StateOpen
				cb.openedAt = time.Now()
			}
		} else {
			// Success resets the consecutive-failure count.
			cb.failures = 0
		}

	case StateHalfOpen:
		cb.halfOpenInflight = false
		if isFailure {
			// Failed probe: back to open with a fresh timeout window.
			cb.lastFailure = time.Now()
			cb.openedAt = time.Now()
			cb.successes = 0
			cb.state = StateOpen
		} else {
			cb.successes++
			if cb.successes >= cb.config.SuccessThreshold {
				cb.state = StateClosed
				cb.failures = 0
				cb.successes = 0
			}
		}
	}

	cb.notify(oldState, cb.state)
}

func (cb *CircuitBreaker) notify(from, to State) {
	if from != to && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

// Snapshot returns current circuit breaker statistics.
func (cb *CircuitBreaker) Snapshot() CircuitBreakerSnapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerSnapshot{
		State:                cb.state,
		ConsecutiveFailures:  cb.failures,
		ConsecutiveSuccesses: cb.successes,
		LastFailure:          cb.lastFailure,
		OpenedAt:             cb.openedAt,
	}
}

// CircuitBreakerSnapshot contains circuit breaker statistics.
// OpenedAt is the zero time if the circuit has never opened;
// an open state always carries a nonzero OpenedAt.
type CircuitBreakerSnapshot struct {
	State                State
	ConsecutiveFailures  int
	ConsecutiveSuccesses int
	LastFailure          time.Time
	OpenedAt             time.Time
}
