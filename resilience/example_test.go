package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/genops/provider"
	"github.com/jonwraymond/genops/resilience"
)

func ExampleNewCircuitBreaker() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 3,
		RecoveryTimeout:  time.Second,
	})

	ctx := context.Background()
	err := cb.Execute(ctx, func(ctx context.Context) error {
		// Simulated successful call
		return nil
	})

	if err == nil {
		fmt.Println("call succeeded")
	}
	// Output:
	// call succeeded
}

func ExampleCircuitBreaker_State() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 2,
		RecoveryTimeout:  time.Minute,
	})

	ctx := context.Background()
	fmt.Println("initial:", cb.State())

	backendDown := errors.New("service unavailable")
	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, func(ctx context.Context) error {
			return backendDown
		})
	}
	fmt.Println("after failures:", cb.State())

	cb.Reset()
	fmt.Println("after reset:", cb.State())
	// Output:
	// initial: closed
	// after failures: open
	// after reset: closed
}

func ExampleNewCostBudget() {
	budget := resilience.NewCostBudget(1.00)

	if err := budget.Check(0.75); err == nil {
		budget.Charge(0.75)
		fmt.Println("first call charged")
	}

	if err := budget.Check(0.50); errors.Is(err, resilience.ErrBudgetExceeded) {
		fmt.Println("second call rejected")
	}

	remaining, _ := budget.Remaining()
	fmt.Printf("remaining: %.2f\n", remaining)
	// Output:
	// first call charged
	// second call rejected
	// remaining: 0.25
}

func ExampleNewResilientProvider() {
	inner := provider.NewStatic("static", "static-1", nil)

	p, err := resilience.NewResilientProvider(inner, resilience.ProviderConfig{
		Breaker:          resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{}),
		CostBudget:       10.0,
		OutputPricePer1K: 15.0,
	})
	if err != nil {
		fmt.Println("wrap:", err)
		return
	}

	ctx := context.Background()
	if _, err := p.Generate(ctx, "hello", 100); err != nil {
		fmt.Println("generate:", err)
		return
	}

	fmt.Printf("spent: %.2f\n", p.TotalCost())
	// Output:
	// spent: 1.50
}
