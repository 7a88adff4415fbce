package health_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/genops/cache"
	"github.com/jonwraymond/genops/health"
	"github.com/jonwraymond/genops/resilience"
)

func ExampleNewBreakerChecker() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 3,
	})

	checker := health.NewBreakerChecker("anthropic-breaker", cb)
	result := checker.Check(context.Background())

	fmt.Println(result.Status)
	fmt.Println(result.Message)
	// Output:
	// healthy
	// circuit closed
}

func ExampleNewCheckerFunc() {
	checker := health.NewCheckerFunc("queue-depth", func(ctx context.Context) health.Result {
		depth := 3
		if depth > 100 {
			return health.Degraded(fmt.Sprintf("queue backed up: %d", depth))
		}
		return health.Healthy(fmt.Sprintf("queue depth %d", depth))
	})

	result := checker.Check(context.Background())
	fmt.Println(result.Status)
	fmt.Println(result.Message)
	// Output:
	// healthy
	// queue depth 3
}

func ExampleAggregator() {
	rc, err := cache.New(cache.Config{Dir: "/tmp/genops-health-example"})
	if err != nil {
		fmt.Println("cache:", err)
		return
	}

	agg := health.NewAggregator(health.AggregatorConfig{
		Timeout: 5 * time.Second,
	})
	agg.Register("cache", health.NewCacheChecker(rc, health.CacheCheckerConfig{}))
	agg.Register("always-ok", health.NewCheckerFunc("always-ok", func(ctx context.Context) health.Result {
		return health.Healthy("ok")
	}))

	results := agg.CheckAll(context.Background())
	fmt.Println(agg.OverallStatus(results))
	fmt.Println(len(results))
	// Output:
	// healthy
	// 2
}

func ExampleAggregator_OverallStatus() {
	agg := health.NewAggregator()

	results := map[string]health.Result{
		"cache":   health.Healthy("ok"),
		"breaker": health.Degraded("circuit half-open"),
	}

	fmt.Println(agg.OverallStatus(results))
	// Output:
	// degraded
}
