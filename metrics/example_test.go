package metrics_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/genops/metrics"
)

func ExampleAggregator_Track() {
	agg := metrics.New(metrics.Config{})
	ctx := context.Background()

	err := agg.Track(ctx, "anthropic", "claude-3", func(s *metrics.Sample) error {
		// The sample attributes observations to this request's pair.
		s.AddTokens(120, 80)
		s.AddCost(0.0042)
		return nil
	})
	if err != nil {
		fmt.Println("track:", err)
		return
	}

	snap, _ := agg.Pair("anthropic", "claude-3")
	fmt.Println(snap.Total, snap.Success, snap.Failure)
	fmt.Println(snap.InputTokens, snap.OutputTokens)
	// Output:
	// 1 1 0
	// 120 80
}

func ExamplePercentile() {
	samples := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
		40 * time.Millisecond,
	}

	fmt.Println(metrics.Percentile(samples, 0.50))
	fmt.Println(metrics.Percentile(samples, 0.99))
	// Output:
	// 30ms
	// 40ms
}

func ExampleAggregator_Summary() {
	agg := metrics.New(metrics.Config{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = agg.Track(ctx, "anthropic", "claude-3", func(s *metrics.Sample) error {
			s.AddCost(1.0)
			return nil
		})
	}
	_ = agg.Track(ctx, "openai", "gpt-4", func(s *metrics.Sample) error {
		s.AddCost(2.0)
		return nil
	})

	sum := agg.Summary()
	fmt.Println(sum.TotalRequests)
	fmt.Printf("%.1f\n", sum.TotalCost)
	fmt.Printf("%.1f\n", sum.Backends["anthropic"].Cost)
	// Output:
	// 4
	// 5.0
	// 3.0
}
