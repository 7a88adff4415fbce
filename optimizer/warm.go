package optimizer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/genops/observe"
	"github.com/jonwraymond/genops/provider"
)

// WarmResult reports the outcome of a warming pass.
type WarmResult struct {
	// Warmed counts prompts generated and stored.
	Warmed int
	// Skipped counts prompts that were already cached.
	Skipped int
	// Failed counts prompts whose generation or store failed.
	Failed int
}

// WarmCache sequentially generates and stores every prompt not already
// cached.
//
// A single prompt's failure is logged with its class and counted,
// never aborting the batch; with FailFast set, the first unexpected
// failure propagates instead.
func (o *Optimizer) WarmCache(ctx context.Context, prompts []string, maxTokens int) (WarmResult, error) {
	var res WarmResult

	for _, prompt := range prompts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if o.cache.Contains(ctx, o.key(prompt)) {
			res.Skipped++
			continue
		}

		response, err := o.inner.Generate(ctx, prompt, maxTokens)
		if err != nil {
			class := failureClass(err)
			o.logger.Warn(ctx, "warm generation failed",
				observe.Field{Key: "class", Value: class},
				observe.Field{Key: "prompt", Value: prompt},
				observe.Field{Key: "error", Value: err.Error()})
			if o.failFast && class == "unexpected" {
				return res, err
			}
			res.Failed++
			continue
		}

		if err := o.store(ctx, prompt, response); err != nil {
			o.logger.Warn(ctx, "warm store failed",
				observe.Field{Key: "error", Value: err.Error()})
			res.Failed++
			continue
		}
		res.Warmed++
	}
	return res, nil
}

// BatchPreload warms prompts with a bounded worker pool.
//
// Already-cached prompts are filtered out before any work is
// dispatched. An authentication or rate-limit failure cancels the
// remaining in-flight work and propagates; other failures are counted
// and skipped. The configured progress callback receives running
// totals after each completion.
func (o *Optimizer) BatchPreload(ctx context.Context, prompts []string, maxTokens int) (WarmResult, error) {
	var res WarmResult

	pending := make([]string, 0, len(prompts))
	for _, prompt := range prompts {
		if o.cache.Contains(ctx, o.key(prompt)) {
			res.Skipped++
			continue
		}
		pending = append(pending, prompt)
	}
	if len(pending) == 0 {
		return res, nil
	}

	start := time.Now()
	var (
		mu       sync.Mutex
		inFlight int
	)

	report := func() {
		if o.progress == nil {
			return
		}
		mu.Lock()
		p := Progress{
			Completed: res.Warmed,
			Failed:    res.Failed,
			InFlight:  inFlight,
			Elapsed:   time.Since(start),
		}
		mu.Unlock()
		o.progress(p)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, prompt := range pending {
		prompt := prompt
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			mu.Lock()
			inFlight++
			mu.Unlock()
			defer func() {
				mu.Lock()
				inFlight--
				mu.Unlock()
				report()
			}()

			response, err := o.inner.Generate(ctx, prompt, maxTokens)
			if err != nil {
				if provider.IsFatal(err) {
					// Auth and rate-limit failures poison the whole
					// batch; cancel remaining work.
					return err
				}
				o.logger.Warn(ctx, "preload generation failed",
					observe.Field{Key: "class", Value: failureClass(err)},
					observe.Field{Key: "prompt", Value: prompt},
					observe.Field{Key: "error", Value: err.Error()})
				mu.Lock()
				res.Failed++
				mu.Unlock()
				return nil
			}

			if err := o.store(ctx, prompt, response); err != nil {
				o.logger.Warn(ctx, "preload store failed",
					observe.Field{Key: "error", Value: err.Error()})
				mu.Lock()
				res.Failed++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			res.Warmed++
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	return res, err
}
