package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/genops/cache"
	"github.com/jonwraymond/genops/provider"
	"github.com/jonwraymond/genops/resilience"
)

// CacheCheckerConfig configures the cache health checker.
type CacheCheckerConfig struct {
	// WarningOccupancy is the fragmentation ratio that triggers
	// degraded status. Value should be between 0 and 1. Default: 0.80
	WarningOccupancy float64

	// CriticalOccupancy is the fragmentation ratio that triggers
	// unhealthy status. Value should be between 0 and 1. Default: 0.95
	CriticalOccupancy float64
}

// CacheChecker reports on a response cache: whether its directory is
// readable and how close it is to its byte budget.
type CacheChecker struct {
	cache  *cache.ResponseCache
	config CacheCheckerConfig
}

// NewCacheChecker creates a cache health checker.
func NewCacheChecker(rc *cache.ResponseCache, config CacheCheckerConfig) *CacheChecker {
	if config.WarningOccupancy <= 0 || config.WarningOccupancy >= 1 {
		config.WarningOccupancy = 0.80
	}
	if config.CriticalOccupancy <= 0 || config.CriticalOccupancy >= 1 {
		config.CriticalOccupancy = 0.95
	}
	if config.CriticalOccupancy < config.WarningOccupancy {
		config.CriticalOccupancy = config.WarningOccupancy
	}
	return &CacheChecker{cache: rc, config: config}
}

// Name returns the name of this checker.
func (c *CacheChecker) Name() string {
	return "cache"
}

// Check reads the cache statistics and grades occupancy against the
// configured thresholds. A cache without a byte budget is healthy as
// long as its directory is readable.
func (c *CacheChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	stats, err := c.cache.Stats(ctx)
	if err != nil {
		return Unhealthy("cache directory unreadable", err)
	}

	details := map[string]any{
		"dir":            c.cache.Dir(),
		"entries":        stats.Entries,
		"total_bytes":    stats.TotalBytes,
		"max_bytes":      stats.MaxBytes,
		"hits":           stats.Hits,
		"misses":         stats.Misses,
		"hit_rate":       stats.HitRate,
		"total_requests": stats.TotalRequests,
	}

	frag, bounded := stats.Fragmentation()
	if !bounded {
		return Healthy(fmt.Sprintf("%d entries, no byte budget", stats.Entries)).
			WithDetails(details)
	}
	details["occupancy_percent"] = frag * 100

	switch {
	case frag >= c.config.CriticalOccupancy:
		return Unhealthy(
			fmt.Sprintf("cache occupancy critical: %.1f%%", frag*100),
			ErrCheckFailed,
		).WithDetails(details)
	case frag >= c.config.WarningOccupancy:
		return Degraded(
			fmt.Sprintf("cache occupancy high: %.1f%%", frag*100),
		).WithDetails(details)
	default:
		return Healthy(
			fmt.Sprintf("cache occupancy normal: %.1f%%", frag*100),
		).WithDetails(details)
	}
}

// BreakerChecker maps a circuit breaker's state onto health status:
// closed is healthy, half-open is degraded, open is unhealthy.
type BreakerChecker struct {
	name    string
	breaker *resilience.CircuitBreaker
}

// NewBreakerChecker creates a breaker health checker. The name
// identifies the guarded backend in aggregated reports.
func NewBreakerChecker(name string, cb *resilience.CircuitBreaker) *BreakerChecker {
	if name == "" {
		name = "breaker"
	}
	return &BreakerChecker{name: name, breaker: cb}
}

// Name returns the name of this checker.
func (c *BreakerChecker) Name() string {
	return c.name
}

// Check reads the breaker snapshot without influencing its state.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	snap := c.breaker.Snapshot()
	details := map[string]any{
		"state":                 snap.State.String(),
		"consecutive_failures":  snap.ConsecutiveFailures,
		"consecutive_successes": snap.ConsecutiveSuccesses,
	}
	if !snap.LastFailure.IsZero() {
		details["last_failure"] = snap.LastFailure
	}
	if !snap.OpenedAt.IsZero() {
		details["opened_at"] = snap.OpenedAt
	}

	switch snap.State {
	case resilience.StateOpen:
		return Unhealthy("circuit open, calls are being rejected", ErrCheckFailed).
			WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, probing for recovery").
			WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}

// BudgetCheckerConfig configures the budget health checker.
type BudgetCheckerConfig struct {
	// WarningRemaining is the fraction of the ceiling still unspent
	// below which the budget reads degraded. Default: 0.20
	WarningRemaining float64
}

// BudgetChecker reports on a resilient provider's remaining cost
// budget. An unbounded budget is always healthy.
type BudgetChecker struct {
	provider *resilience.ResilientProvider
	ceiling  float64
	config   BudgetCheckerConfig
}

// NewBudgetChecker creates a budget health checker. The ceiling is the
// budget the provider was constructed with; it is needed to compute
// the remaining fraction.
func NewBudgetChecker(rp *resilience.ResilientProvider, ceiling float64, config BudgetCheckerConfig) *BudgetChecker {
	if config.WarningRemaining <= 0 || config.WarningRemaining >= 1 {
		config.WarningRemaining = 0.20
	}
	return &BudgetChecker{provider: rp, ceiling: ceiling, config: config}
}

// Name returns the name of this checker.
func (c *BudgetChecker) Name() string {
	return "cost-budget"
}

// Check grades remaining budget: exhausted is unhealthy, below the
// warning fraction is degraded.
func (c *BudgetChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	remaining, bounded := c.provider.RemainingBudget()
	details := map[string]any{
		"spent": c.provider.TotalCost(),
	}
	if !bounded {
		return Healthy("cost budget unbounded").WithDetails(details)
	}
	details["remaining"] = remaining
	details["ceiling"] = c.ceiling

	switch {
	case remaining <= 0:
		return Unhealthy("cost budget exhausted", resilience.ErrBudgetExceeded).
			WithDetails(details)
	case c.ceiling > 0 && remaining/c.ceiling < c.config.WarningRemaining:
		return Degraded(
			fmt.Sprintf("cost budget low: %.4f remaining of %.4f", remaining, c.ceiling),
		).WithDetails(details)
	default:
		return Healthy(
			fmt.Sprintf("cost budget ok: %.4f remaining", remaining),
		).WithDetails(details)
	}
}

// ProviderChecker verifies a provider is usable without issuing a
// generation: it exercises the token counter, which on remote backends
// validates configuration and connectivity cheaply.
type ProviderChecker struct {
	name     string
	provider provider.Provider
}

// NewProviderChecker creates a provider health checker.
func NewProviderChecker(name string, p provider.Provider) *ProviderChecker {
	if name == "" {
		name = provider.BackendOf(p)
	}
	return &ProviderChecker{name: name, provider: p}
}

// Name returns the name of this checker.
func (c *ProviderChecker) Name() string {
	return c.name
}

// Check performs the provider health check.
func (c *ProviderChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	n, err := c.provider.CountTokens("health probe")
	if err != nil {
		return Unhealthy("provider token counter failed", err)
	}
	return Healthy("provider responsive").WithDetails(map[string]any{
		"backend":      provider.BackendOf(c.provider),
		"model":        provider.ModelOf(c.provider),
		"probe_tokens": n,
	})
}
