package health

import "errors"

// Sentinel errors for health probes.
var (
	// ErrCheckFailed marks a component that is rejecting work: an open
	// circuit, an exhausted budget, a cache over its byte budget.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is set on a result when a probe did not return
	// within the aggregator's timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound is returned when asking the aggregator for a
	// probe it does not know.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
