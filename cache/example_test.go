package cache_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/genops/cache"
	"github.com/jonwraymond/genops/provider"
)

func ExampleComputeKey() {
	key := cache.ComputeKey("what is Go?", "anthropic", "claude-3")
	fmt.Println(len(key))
	fmt.Println(cache.ValidateKey(key) == nil)
	// Output:
	// 64
	// true
}

func ExampleNewCachingProvider() {
	rc, err := cache.New(cache.Config{Dir: "/tmp/genops-cache-example"})
	if err != nil {
		fmt.Println("cache:", err)
		return
	}

	inner := provider.NewStatic("static", "static-1", nil)
	p, err := cache.NewCachingProvider(inner, rc, cache.ProviderConfig{})
	if err != nil {
		fmt.Println("wrap:", err)
		return
	}
	defer p.ClearCache(context.Background())

	ctx := context.Background()

	// First call reaches the backend and populates the cache.
	first, _ := p.Generate(ctx, "what is Go?", 64)
	// Second call is served from disk.
	second, _ := p.Generate(ctx, "what is Go?", 64)

	fmt.Println(first == second)
	fmt.Println(inner.Calls())
	// Output:
	// true
	// 1
}

func ExampleResponseCache_Stats() {
	rc, err := cache.New(cache.Config{Dir: "/tmp/genops-stats-example"})
	if err != nil {
		fmt.Println("cache:", err)
		return
	}
	defer rc.Clear(context.Background())

	ctx := context.Background()
	key := cache.ComputeKey("prompt", "backend", "model")

	rc.Get(ctx, key) // miss
	_ = rc.Set(ctx, key, "response", cache.Metadata{})
	rc.Get(ctx, key) // hit

	stats, _ := rc.Stats(ctx)
	fmt.Println(stats.Hits, stats.Misses)
	fmt.Printf("%.2f\n", stats.HitRate)
	// Output:
	// 1 1
	// 0.50
}
