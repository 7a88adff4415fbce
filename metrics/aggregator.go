package metrics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonwraymond/genops/observe"
)

// DefaultLatencyWindow is the per-pair latency sample capacity applied
// when none is configured.
const DefaultLatencyWindow = 1000

// Config configures an Aggregator.
type Config struct {
	// LatencyWindow bounds the per-pair rolling latency window; the
	// oldest sample is discarded once it is full.
	// Default: DefaultLatencyWindow.
	LatencyWindow int

	// Observe optionally mirrors every observation onto OpenTelemetry
	// instruments. Default: discard.
	Observe observe.Metrics
}

// pairKey identifies a (backend, model) pair.
type pairKey struct {
	backend string
	model   string
}

// pairRecord holds all counters for one (backend, model) pair.
// Counters are monotonic for the life of the aggregator; the latency
// window is bounded, so old samples fall off once it is full.
type pairRecord struct {
	mu           sync.Mutex
	total        int64
	success      int64
	failure      int64
	inputTokens  int64
	outputTokens int64
	cost         float64
	latencies    *latencyWindow
	errorCounts  map[string]int64
}

// Aggregator is a thread-safe metrics collector keyed by
// (backend, model).
//
// Contract:
// - Concurrency: all methods are safe for concurrent use; per-pair
//   counters are updated under a per-pair lock so unrelated pairs never
//   contend.
// - Lifecycle: pair records are created lazily on first observation and
//   removed only by Reset. There is no implicit global instance;
//   callers construct and share one explicitly.
type Aggregator struct {
	mu     sync.RWMutex
	pairs  map[pairKey]*pairRecord
	window int
	mirror observe.Metrics
}

// New creates an Aggregator.
func New(cfg Config) *Aggregator {
	if cfg.LatencyWindow <= 0 {
		cfg.LatencyWindow = DefaultLatencyWindow
	}
	if cfg.Observe == nil {
		cfg.Observe = observe.NopMetrics()
	}
	return &Aggregator{
		pairs:  make(map[pairKey]*pairRecord),
		window: cfg.LatencyWindow,
		mirror: cfg.Observe,
	}
}

func (a *Aggregator) record(backend, model string) *pairRecord {
	key := pairKey{backend: backend, model: model}

	a.mu.RLock()
	rec, ok := a.pairs[key]
	a.mu.RUnlock()
	if ok {
		return rec
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if rec, ok = a.pairs[key]; ok {
		return rec
	}
	rec = &pairRecord{
		latencies:   newLatencyWindow(a.window),
		errorCounts: make(map[string]int64),
	}
	a.pairs[key] = rec
	return rec
}

// Sample is the scope handle passed to a Track callback. Token and
// cost observations made through it are attributed to the scope's
// backend/model pair, no matter how many scopes are active concurrently.
type Sample struct {
	ctx     context.Context
	agg     *Aggregator
	backend string
	model   string
}

// Backend returns the scope's backend name.
func (s *Sample) Backend() string { return s.backend }

// Model returns the scope's model name.
func (s *Sample) Model() string { return s.model }

// AddTokens records token consumption against the scope's pair.
func (s *Sample) AddTokens(input, output int64) {
	s.agg.AddTokens(s.ctx, s.backend, s.model, input, output)
}

// AddCost records estimated spend against the scope's pair.
func (s *Sample) AddCost(cost float64) {
	s.agg.AddCost(s.ctx, s.backend, s.model, cost)
}

// Track runs fn inside a tracked request scope for (backend, model).
//
// On entry the pair's total-request count is incremented and a timer
// starts. If fn returns nil, the success count is incremented and the
// elapsed latency is recorded. If fn returns an error, the failure
// count and the error's type count are incremented and the error is
// returned unchanged.
func (a *Aggregator) Track(ctx context.Context, backend, model string, fn func(*Sample) error) error {
	rec := a.record(backend, model)

	rec.mu.Lock()
	rec.total++
	rec.mu.Unlock()

	start := time.Now()
	err := fn(&Sample{ctx: ctx, agg: a, backend: backend, model: model})
	elapsed := time.Since(start)

	rec.mu.Lock()
	if err != nil {
		rec.failure++
		rec.errorCounts[errorLabel(err)]++
	} else {
		rec.success++
		rec.latencies.add(elapsed)
	}
	rec.mu.Unlock()

	a.mirror.RecordGeneration(ctx, observe.GenMeta{Backend: backend, Model: model}, elapsed, err)
	return err
}

// AddTokens records token consumption for an explicit pair. Use the
// Sample recorders inside a Track scope instead of passing identity by
// hand.
func (a *Aggregator) AddTokens(ctx context.Context, backend, model string, input, output int64) {
	rec := a.record(backend, model)

	rec.mu.Lock()
	rec.inputTokens += input
	rec.outputTokens += output
	rec.mu.Unlock()

	a.mirror.RecordUsage(ctx, observe.GenMeta{Backend: backend, Model: model}, input, output, 0)
}

// AddCost records estimated spend for an explicit pair.
func (a *Aggregator) AddCost(ctx context.Context, backend, model string, cost float64) {
	rec := a.record(backend, model)

	rec.mu.Lock()
	rec.cost += cost
	rec.mu.Unlock()

	a.mirror.RecordUsage(ctx, observe.GenMeta{Backend: backend, Model: model}, 0, 0, cost)
}

// PairSnapshot is a point-in-time copy of one pair's counters.
type PairSnapshot struct {
	Backend      string
	Model        string
	Total        int64
	Success      int64
	Failure      int64
	InputTokens  int64
	OutputTokens int64
	Cost         float64
	Latencies    []time.Duration
	ErrorCounts  map[string]int64
}

// Pair returns the snapshot for (backend, model), or false if the pair
// has never been observed.
func (a *Aggregator) Pair(backend, model string) (PairSnapshot, bool) {
	a.mu.RLock()
	rec, ok := a.pairs[pairKey{backend: backend, model: model}]
	a.mu.RUnlock()
	if !ok {
		return PairSnapshot{}, false
	}
	return rec.snapshot(backend, model), true
}

// Pairs returns snapshots for every observed pair, ordered by backend
// then model.
func (a *Aggregator) Pairs() []PairSnapshot {
	a.mu.RLock()
	keys := make([]pairKey, 0, len(a.pairs))
	for key := range a.pairs {
		keys = append(keys, key)
	}
	a.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].backend != keys[j].backend {
			return keys[i].backend < keys[j].backend
		}
		return keys[i].model < keys[j].model
	})

	out := make([]PairSnapshot, 0, len(keys))
	for _, key := range keys {
		a.mu.RLock()
		rec, ok := a.pairs[key]
		a.mu.RUnlock()
		if ok {
			out = append(out, rec.snapshot(key.backend, key.model))
		}
	}
	return out
}

func (r *pairRecord) snapshot(backend, model string) PairSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	errs := make(map[string]int64, len(r.errorCounts))
	for k, v := range r.errorCounts {
		errs[k] = v
	}
	return PairSnapshot{
		Backend:      backend,
		Model:        model,
		Total:        r.total,
		Success:      r.success,
		Failure:      r.failure,
		InputTokens:  r.inputTokens,
		OutputTokens: r.outputTokens,
		Cost:         r.cost,
		Latencies:    r.latencies.snapshot(),
		ErrorCounts:  errs,
	}
}

// BackendSummary is the per-backend slice of a Summary.
type BackendSummary struct {
	Requests int64
	Cost     float64
}

// Summary folds every pair into aggregate totals.
type Summary struct {
	TotalRequests int64
	TotalSuccess  int64
	TotalFailure  int64
	InputTokens   int64
	OutputTokens  int64
	TotalCost     float64
	MeanLatency   time.Duration
	P50           time.Duration
	P95           time.Duration
	P99           time.Duration
	Backends      map[string]BackendSummary
}

// Summary computes the aggregate view across all pairs. Percentiles
// use the nearest-rank rule over the pooled latency windows.
func (a *Aggregator) Summary() Summary {
	pairs := a.Pairs()

	s := Summary{Backends: make(map[string]BackendSummary)}
	var all []time.Duration
	for _, p := range pairs {
		s.TotalRequests += p.Total
		s.TotalSuccess += p.Success
		s.TotalFailure += p.Failure
		s.InputTokens += p.InputTokens
		s.OutputTokens += p.OutputTokens
		s.TotalCost += p.Cost
		all = append(all, p.Latencies...)

		b := s.Backends[p.Backend]
		b.Requests += p.Total
		b.Cost += p.Cost
		s.Backends[p.Backend] = b
	}

	if len(all) > 0 {
		var sum time.Duration
		for _, d := range all {
			sum += d
		}
		s.MeanLatency = sum / time.Duration(len(all))
		s.P50 = Percentile(all, 0.50)
		s.P95 = Percentile(all, 0.95)
		s.P99 = Percentile(all, 0.99)
	}
	return s
}

// Reset discards every pair record.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.pairs = make(map[pairKey]*pairRecord)
	a.mu.Unlock()
}

// errorLabel derives a stable label for an error's type. Wrapped
// errors are unwrapped to the root cause; bare sentinel errors are
// labeled by their constant message, everything else by concrete type.
func errorLabel(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	typeName := fmt.Sprintf("%T", err)
	if typeName == "*errors.errorString" {
		return err.Error()
	}
	return strings.TrimPrefix(typeName, "*")
}
