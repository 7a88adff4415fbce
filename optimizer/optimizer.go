package optimizer

import (
	"context"
	"errors"
	"time"

	"github.com/jonwraymond/genops/cache"
	"github.com/jonwraymond/genops/observe"
	"github.com/jonwraymond/genops/provider"
)

// MaxWorkers is the hard upper bound on the preload worker pool.
const MaxWorkers = 8

// DefaultWorkers is the pool size applied when none is configured.
const DefaultWorkers = 4

// Sentinel errors for optimizer operations.
var (
	// ErrNilCache is returned when constructing without a cache.
	ErrNilCache = errors.New("optimizer: cache is nil")

	// ErrInvalidRatio is returned when an eviction ratio falls outside
	// (0, 1].
	ErrInvalidRatio = errors.New("optimizer: ratio must be in (0, 1]")
)

// Progress reports running totals during BatchPreload. It is delivered
// after every completed prompt, successful or not.
type Progress struct {
	Completed int
	Failed    int
	InFlight  int
	Elapsed   time.Duration
}

// ProgressFunc receives Progress updates. It may be called from
// multiple workers and must be safe for concurrent use.
type ProgressFunc func(Progress)

// Config configures an Optimizer.
type Config struct {
	// Backend and Model identify the provider for cache keying.
	// Derived from the provider when empty.
	Backend string
	Model   string

	// Workers bounds the BatchPreload pool. Clamped into
	// [1, MaxWorkers] with a warning; 0 selects DefaultWorkers.
	Workers int

	// FailFast makes WarmCache propagate the first unexpected failure
	// instead of counting it.
	FailFast bool

	// Progress optionally receives BatchPreload updates.
	Progress ProgressFunc

	// Logger receives batch diagnostics. Default: no-op.
	Logger observe.Logger
}

// Optimizer runs maintenance operations against one cache and the
// provider that populates it.
type Optimizer struct {
	cache    *cache.ResponseCache
	inner    provider.Provider
	backend  string
	model    string
	workers  int
	failFast bool
	progress ProgressFunc
	logger   observe.Logger
}

// New creates an Optimizer.
func New(inner provider.Provider, rc *cache.ResponseCache, cfg Config) (*Optimizer, error) {
	if inner == nil {
		return nil, provider.ErrInvalidInput
	}
	if rc == nil {
		return nil, ErrNilCache
	}
	if cfg.Backend == "" {
		cfg.Backend = provider.BackendOf(inner)
	}
	if cfg.Model == "" {
		cfg.Model = provider.ModelOf(inner)
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}

	o := &Optimizer{
		cache:    rc,
		inner:    inner,
		backend:  cfg.Backend,
		model:    cfg.Model,
		failFast: cfg.FailFast,
		progress: cfg.Progress,
		logger:   cfg.Logger.WithProvider(cfg.Backend, cfg.Model),
	}
	o.workers = o.clampWorkers(cfg.Workers)
	return o, nil
}

func (o *Optimizer) clampWorkers(n int) int {
	switch {
	case n == 0:
		return DefaultWorkers
	case n < 1:
		o.logger.Warn(context.Background(), "worker count below minimum, clamping",
			observe.Field{Key: "requested", Value: n},
			observe.Field{Key: "workers", Value: 1})
		return 1
	case n > MaxWorkers:
		o.logger.Warn(context.Background(), "worker count above maximum, clamping",
			observe.Field{Key: "requested", Value: n},
			observe.Field{Key: "workers", Value: MaxWorkers})
		return MaxWorkers
	default:
		return n
	}
}

func (o *Optimizer) key(prompt string) string {
	return cache.ComputeKey(prompt, o.backend, o.model)
}

func (o *Optimizer) store(ctx context.Context, prompt, response string) error {
	return o.cache.Set(ctx, o.key(prompt), response, cache.Metadata{
		Prompt:  prompt,
		Backend: o.backend,
		Model:   o.model,
	})
}

// failureClass buckets a generation failure for logging and fail-fast
// decisions.
func failureClass(err error) string {
	switch {
	case provider.IsInvalidInput(err):
		return "invalid-input"
	case provider.IsAuth(err):
		return "auth"
	case provider.IsRateLimited(err):
		return "rate-limit"
	case provider.IsTransient(err):
		return "transient"
	default:
		return "unexpected"
	}
}
