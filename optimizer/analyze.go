package optimizer

import (
	"context"
	"fmt"
	"time"
)

// Thresholds driving AnalyzeCache recommendations.
const (
	// lowHitRate marks a cache worth warming once it has seen enough
	// traffic to judge.
	lowHitRate = 0.30

	// minRequestsForHitRate is the traffic floor below which the hit
	// rate is considered noise.
	minRequestsForHitRate = 11

	// highFragmentation marks occupancy close enough to the byte
	// budget to act on.
	highFragmentation = 0.90

	// staleFraction is the share of TTL after which an entry counts
	// as stale.
	staleFraction = 0.8

	// staleMajority is the share of stale entries that triggers an
	// eviction recommendation.
	staleMajority = 0.5
)

// Analysis is a point-in-time health report for a cache.
type Analysis struct {
	// Entries is the number of stored entries.
	Entries int

	// TotalBytes is the occupied size of all entries.
	TotalBytes int64

	// HitRate is hits over total requests since the last stats reset.
	HitRate float64

	// TotalRequests is hits plus misses since the last stats reset.
	TotalRequests int64

	// Fragmentation is occupied bytes over the byte budget. Only
	// meaningful when FragmentationOK is true.
	Fragmentation float64

	// FragmentationOK reports whether a byte budget is configured, and
	// so whether Fragmentation carries a value.
	FragmentationOK bool

	// StaleEntries counts entries older than staleFraction of the TTL.
	StaleEntries int

	// Recommendations lists suggested actions, or a single "healthy"
	// entry when nothing stands out.
	Recommendations []string
}

// AnalyzeCache inspects the cache and returns usage figures with
// recommendations. It never mutates the cache.
func (o *Optimizer) AnalyzeCache(ctx context.Context) (Analysis, error) {
	stats, err := o.cache.Stats(ctx)
	if err != nil {
		return Analysis{}, err
	}
	entries, err := o.cache.Entries(ctx)
	if err != nil {
		return Analysis{}, err
	}

	a := Analysis{
		Entries:       stats.Entries,
		TotalBytes:    stats.TotalBytes,
		HitRate:       stats.HitRate,
		TotalRequests: stats.TotalRequests,
	}
	a.Fragmentation, a.FragmentationOK = stats.Fragmentation()

	staleAge := time.Duration(staleFraction * float64(o.cache.TTL()))
	now := time.Now()
	for _, e := range entries {
		if now.Sub(e.ModTime) > staleAge {
			a.StaleEntries++
		}
	}

	if a.Entries == 0 && a.TotalRequests > 0 {
		a.Recommendations = append(a.Recommendations,
			"cache is empty despite traffic; check cache directory configuration and write permissions")
	}
	if a.HitRate < lowHitRate && a.TotalRequests >= minRequestsForHitRate {
		a.Recommendations = append(a.Recommendations,
			fmt.Sprintf("hit rate %.2f below %.2f; warm the cache with representative prompts", a.HitRate, lowHitRate))
	}
	if a.FragmentationOK && a.Fragmentation > highFragmentation {
		a.Recommendations = append(a.Recommendations,
			fmt.Sprintf("cache is %.0f%% of its byte budget; raise MaxBytes or evict stale entries", a.Fragmentation*100))
	}
	if a.Entries > 0 && float64(a.StaleEntries) > staleMajority*float64(a.Entries) {
		a.Recommendations = append(a.Recommendations,
			fmt.Sprintf("%d of %d entries are near expiry; run EvictStale", a.StaleEntries, a.Entries))
	}
	if len(a.Recommendations) == 0 {
		a.Recommendations = append(a.Recommendations, "healthy")
	}
	return a, nil
}
