package resilience

import (
	"context"

	"github.com/jonwraymond/genops/metrics"
	"github.com/jonwraymond/genops/observe"
	"github.com/jonwraymond/genops/provider"
)

// fallbackCharsPerToken is the character ratio used to estimate prompt
// tokens when the inner provider cannot count them.
const fallbackCharsPerToken = 4

// ProviderConfig configures a ResilientProvider.
type ProviderConfig struct {
	// Backend and Model identify the wrapped provider for metrics
	// attribution. Derived from the inner provider when empty.
	Backend string
	Model   string

	// Breaker optionally gates calls; may be shared across wrappers.
	Breaker *CircuitBreaker

	// Metrics optionally tracks every call; may be shared.
	Metrics *metrics.Aggregator

	// CostBudget is the spend ceiling. Zero or less means unbounded.
	// The ceiling is fixed for the wrapper's lifetime.
	CostBudget float64

	// InputPricePer1K and OutputPricePer1K are the per-1000-token
	// prices used for pre-call cost estimation.
	InputPricePer1K  float64
	OutputPricePer1K float64

	// Logger receives diagnostics. Default: no-op.
	Logger observe.Logger
}

// ResilientProvider composes a cost-budget check, a circuit breaker,
// and metrics tracking around a provider.
//
// Call order per Generate: the cost estimate is checked against the
// budget before anything else; a budget rejection leaves accumulated
// cost unchanged and never reaches the breaker. Once the call is
// attempted, its estimated cost is charged whether it succeeds, fails,
// or is rejected by the breaker, and metrics record the attempt.
type ResilientProvider struct {
	inner   provider.Provider
	breaker *CircuitBreaker
	agg     *metrics.Aggregator
	budget  *CostBudget

	inPrice  float64
	outPrice float64
	backend  string
	model    string
	logger   observe.Logger
}

// NewResilientProvider wraps inner.
func NewResilientProvider(inner provider.Provider, cfg ProviderConfig) (*ResilientProvider, error) {
	if inner == nil {
		return nil, ErrNilProvider
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

	return &ResilientProvider{
		inner:    inner,
		breaker:  cfg.Breaker,
		agg:      cfg.Metrics,
		budget:   NewCostBudget(cfg.CostBudget),
		inPrice:  cfg.InputPricePer1K,
		outPrice: cfg.OutputPricePer1K,
		backend:  cfg.Backend,
		model:    cfg.Model,
		logger:   cfg.Logger.WithProvider(cfg.Backend, cfg.Model),
	}, nil
}

// Generate calls the inner provider through the configured guards.
func (p *ResilientProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	estimate := p.EstimateCost(prompt, maxTokens)

	if err := p.budget.Check(estimate); err != nil {
		p.logger.Warn(ctx, "call rejected by cost budget",
			observe.Field{Key: "estimated_cost", Value: estimate})
		return "", err
	}

	var result string
	call := func() error {
		var err error
		if p.breaker != nil {
			err = p.breaker.Execute(ctx, func(ctx context.Context) error {
				var innerErr error
				result, innerErr = p.inner.Generate(ctx, prompt, maxTokens)
				return innerErr
			})
		} else {
			result, err = p.inner.Generate(ctx, prompt, maxTokens)
		}
		return err
	}

	var err error
	if p.agg != nil {
		err = p.agg.Track(ctx, p.backend, p.model, func(s *metrics.Sample) error {
			callErr := call()
			s.AddCost(estimate)
			if callErr == nil {
				s.AddTokens(p.promptTokens(prompt), p.responseTokens(result))
			}
			return callErr
		})
	} else {
		err = call()
	}

	// The attempt was made; its estimate counts against the budget
	// regardless of outcome.
	p.budget.Charge(estimate)

	if err != nil {
		return "", err
	}
	return result, nil
}

// CountTokens delegates straight through.
func (p *ResilientProvider) CountTokens(text string) (int, error) {
	return p.inner.CountTokens(text)
}

// EstimateCost returns the pre-call cost estimate for a prompt: prompt
// tokens (provider-counted, character-ratio fallback) at the input
// price plus maxTokens at the output price, both per 1000 tokens.
func (p *ResilientProvider) EstimateCost(prompt string, maxTokens int) float64 {
	inTokens := p.promptTokens(prompt)
	return float64(inTokens)/1000*p.inPrice + float64(maxTokens)/1000*p.outPrice
}

func (p *ResilientProvider) promptTokens(prompt string) int64 {
	if n, err := p.inner.CountTokens(prompt); err == nil && n > 0 {
		return int64(n)
	}
	return int64((len(prompt) + fallbackCharsPerToken - 1) / fallbackCharsPerToken)
}

func (p *ResilientProvider) responseTokens(text string) int64 {
	if text == "" {
		return 0
	}
	if n, err := p.inner.CountTokens(text); err == nil && n > 0 {
		return int64(n)
	}
	return int64((len(text) + fallbackCharsPerToken - 1) / fallbackCharsPerToken)
}

// TotalCost returns accumulated estimated spend.
func (p *ResilientProvider) TotalCost() float64 { return p.budget.Spent() }

// RemainingBudget returns ceiling minus spend, floored at zero. The
// second return is false when no ceiling is configured.
func (p *ResilientProvider) RemainingBudget() (float64, bool) { return p.budget.Remaining() }

// ResetCost zeroes accumulated spend without touching the ceiling.
func (p *ResilientProvider) ResetCost() { p.budget.Reset() }

// BreakerSnapshot returns the breaker's statistics. The second return
// is false when no breaker is configured.
func (p *ResilientProvider) BreakerSnapshot() (CircuitBreakerSnapshot, bool) {
	if p.breaker == nil {
		return CircuitBreakerSnapshot{}, false
	}
	return p.breaker.Snapshot(), true
}

// Backend returns the identity used for metrics attribution.
func (p *ResilientProvider) Backend() string { return p.backend }

// Model returns the identity used for metrics attribution.
func (p *ResilientProvider) Model() string { return p.model }

// Ensure ResilientProvider remains a drop-in provider.
var (
	_ provider.Provider     = (*ResilientProvider)(nil)
	_ provider.BackendNamer = (*ResilientProvider)(nil)
	_ provider.ModelNamer   = (*ResilientProvider)(nil)
)
