// Package resilience protects generation calls from cascading failure
// and runaway spend.
//
// It provides a three-state circuit breaker with configurable failure
// classification and manual operator overrides, a cumulative cost
// budget with pre-call enforcement, and a ResilientProvider wrapper
// composing breaker, budget, and metrics tracking around any provider.
package resilience
