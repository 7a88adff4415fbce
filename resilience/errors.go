package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a
	// call without invoking the wrapped function. It is synthesized by
	// the breaker and never originates from a backend.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrBudgetExceeded is returned when a call's estimated cost would
	// push cumulative spend past the configured ceiling. Raised before
	// the wrapped call executes; accumulated cost is left unchanged.
	ErrBudgetExceeded = errors.New("resilience: cost budget exceeded")

	// ErrNilProvider is returned when wrapping a nil provider.
	ErrNilProvider = errors.New("resilience: provider is nil")
)

// errOpPanicked stands in for the operation's error when the operation
// panics and never returns one. The breaker counts it as a failure; the
// panic itself propagates to the caller.
var errOpPanicked = errors.New("resilience: operation panicked")
