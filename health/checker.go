package health

import (
	"context"
	"time"
)

// Status grades a piece of generation infrastructure.
type Status int

const (
	// StatusHealthy means the component is fully operational.
	StatusHealthy Status = iota
	// StatusDegraded means the component works but needs attention,
	// such as a cache near its byte budget or a budget nearly spent.
	StatusDegraded
	// StatusUnhealthy means the component cannot serve requests, such
	// as an open circuit or an exhausted budget.
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Checker probes one component of the generation stack.
//
// Contract:
//   - Name is stable and unique within an aggregator.
//   - Check must honor ctx cancellation and never block indefinitely.
//   - Check reports, it never repairs; fixing a tripped breaker or an
//     exhausted budget is the operator's call.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// Result is the outcome of a single probe.
type Result struct {
	// Status grades the component.
	Status Status

	// Message is a short human-readable summary, such as
	// "circuit closed" or "cost budget exhausted".
	Message string

	// Details carries component figures: occupancy, remaining budget,
	// consecutive failures.
	Details map[string]any

	// Duration is how long the probe took. Filled by the aggregator.
	Duration time.Duration

	// Timestamp is when the probe ran.
	Timestamp time.Time

	// Error is set when the probe itself failed or the component is
	// rejecting work.
	Error error
}

// Healthy builds a passing result.
func Healthy(message string) Result {
	return Result{
		Status:    StatusHealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Degraded builds a result for a component that works but needs
// attention.
func Degraded(message string) Result {
	return Result{
		Status:    StatusDegraded,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Unhealthy builds a failing result carrying the causing error.
func Unhealthy(message string, err error) Result {
	return Result{
		Status:    StatusUnhealthy,
		Message:   message,
		Error:     err,
		Timestamp: time.Now(),
	}
}

// WithDetails attaches component figures to the result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// CheckerFunc adapts a plain function into a Checker, for probes too
// small to deserve a type: queue depths, free disk, feature flags.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

// NewCheckerFunc wraps fn as a named checker.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

func (f *CheckerFunc) Name() string { return f.name }

func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }
