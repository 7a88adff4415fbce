package optimizer

import (
	"context"
	"time"

	"github.com/jonwraymond/genops/observe"
)

// EvictStale removes entries older than ratio of the cache TTL and
// returns the number removed. Ratio must fall in (0, 1]: 1.0 removes
// only fully expired entries, 0.5 removes anything past half its
// lifetime.
//
// Individual removal failures are logged and skipped so one bad entry
// cannot stall the sweep.
func (o *Optimizer) EvictStale(ctx context.Context, ratio float64) (int, error) {
	if ratio <= 0 || ratio > 1 {
		return 0, ErrInvalidRatio
	}

	entries, err := o.cache.Entries(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Duration(ratio * float64(o.cache.TTL()))
	now := time.Now()
	removed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if now.Sub(e.ModTime) <= cutoff {
			continue
		}
		if _, err := o.cache.Delete(ctx, e.Key); err != nil {
			o.logger.Warn(ctx, "stale entry removal failed",
				observe.Field{Key: "key", Value: e.Key},
				observe.Field{Key: "error", Value: err.Error()})
			continue
		}
		removed++
	}
	return removed, nil
}
