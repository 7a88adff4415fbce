// Package health provides health checking primitives for generation
// infrastructure.
//
// This package implements a generic health checking framework with
// domain checkers for the pieces of a generation stack: the response
// cache, circuit breakers, cost budgets, and the providers themselves.
// It provides interfaces for defining health checks, aggregating
// results from multiple checkers, and exposing health status via HTTP
// endpoints.
//
// # Core Concepts
//
// A Checker is any component that can report its health status. The
// Status type represents the health state: Healthy, Degraded, or
// Unhealthy.
//
// # Basic Usage
//
//	// Watch a response cache's occupancy
//	cacheCheck := health.NewCacheChecker(responseCache, health.CacheCheckerConfig{
//	    WarningOccupancy:  0.80,
//	    CriticalOccupancy: 0.95,
//	})
//
//	result := cacheCheck.Check(ctx)
//	if result.Status == health.StatusUnhealthy {
//	    log.Printf("cache critical: %s", result.Message)
//	}
//
// # Aggregating Health Checks
//
// Use Aggregator to combine multiple health checks into a single
// composite check:
//
//	agg := health.NewAggregator()
//	agg.Register("cache", cacheCheck)
//	agg.Register("anthropic-breaker", health.NewBreakerChecker("anthropic-breaker", breaker))
//	agg.Register("cost-budget", budgetCheck)
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// # HTTP Endpoints
//
// The package provides HTTP handlers for common health check patterns:
//
//	// Liveness probe (for Kubernetes)
//	http.Handle("/healthz", health.LivenessHandler())
//
//	// Readiness probe with component checks
//	http.Handle("/readyz", health.ReadinessHandler(aggregator))
//
//	// Detailed health status
//	http.Handle("/health", health.DetailedHandler(aggregator))
package health
