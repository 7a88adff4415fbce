package cache

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/genops/observe"
	"github.com/jonwraymond/genops/provider"
)

// maxFetchAttempts bounds how many failed flights a waiter will observe
// before giving up. A waiter whose flight fails without it leading
// re-reads the cache and competes to lead the next flight; this cap
// keeps that loop from blocking forever when the backend keeps failing.
const maxFetchAttempts = 3

// ProviderConfig configures a CachingProvider.
type ProviderConfig struct {
	// Backend and Model identify the wrapped provider for cache keying.
	// When empty they are derived from the inner provider via the
	// BackendNamer/ModelNamer interfaces, falling back to
	// provider.UnknownIdentity.
	Backend string
	Model   string

	// Disabled starts the wrapper in pass-through mode.
	Disabled bool

	// Logger receives cache soft-failure diagnostics. Default: no-op.
	Logger observe.Logger
}

// CachingProvider wraps a provider with the response cache and
// single-flight deduplication.
//
// Contract:
// - Concurrency: safe for concurrent use. Per cache key, at most one
//   inner Generate call is in flight at a time through this instance;
//   distinct keys proceed fully in parallel.
// - Substitutability: implements provider.Provider; callers cannot
//   distinguish it from the wrapped provider except via the extra
//   introspection methods.
// - Ownership: the cache may be shared with other wrappers; this type
//   does not manage its lifetime.
type CachingProvider struct {
	inner   provider.Provider
	cache   *ResponseCache
	backend string
	model   string
	logger  observe.Logger

	enabled atomic.Bool
	group   singleflight.Group
}

// NewCachingProvider wraps inner with rc.
func NewCachingProvider(inner provider.Provider, rc *ResponseCache, cfg ProviderConfig) (*CachingProvider, error) {
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

	p := &CachingProvider{
		inner:   inner,
		cache:   rc,
		backend: cfg.Backend,
		model:   cfg.Model,
		logger:  cfg.Logger.WithProvider(cfg.Backend, cfg.Model),
	}
	p.enabled.Store(!cfg.Disabled)
	return p, nil
}

// Generate returns the cached response for prompt, or fetches it from
// the inner provider exactly once per collapsed request.
//
// On a miss, concurrent callers with the same key share one inner call.
// If that call fails, its leader propagates the error; waiters re-read
// the cache and race to lead a fresh flight so that still only one of
// them reaches the inner provider.
func (p *CachingProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if !p.enabled.Load() {
		return p.inner.Generate(ctx, prompt, maxTokens)
	}

	key := ComputeKey(prompt, p.backend, p.model)

	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if value, ok := p.cache.Get(ctx, key); ok {
			return value, nil
		}

		var led bool
		value, err, _ := p.group.Do(key, func() (any, error) {
			led = true
			out, err := p.inner.Generate(ctx, prompt, maxTokens)
			if err != nil {
				return nil, err
			}
			// Write-back failures are soft: the response is still
			// valid, the next identical request just misses again.
			if serr := p.cache.Set(ctx, key, out, Metadata{
				Prompt:  prompt,
				Backend: p.backend,
				Model:   p.model,
			}); serr != nil {
				p.logger.Warn(ctx, "cache write-back failed",
					observe.Field{Key: "key", Value: key},
					observe.Field{Key: "error", Value: serr.Error()})
			}
			return out, nil
		})
		if err == nil {
			return value.(string), nil
		}
		if led {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// CountTokens delegates straight through, uncached.
func (p *CachingProvider) CountTokens(text string) (int, error) {
	return p.inner.CountTokens(text)
}

// Backend returns the identity used for cache keying.
func (p *CachingProvider) Backend() string { return p.backend }

// Model returns the identity used for cache keying.
func (p *CachingProvider) Model() string { return p.model }

// Enabled reports whether caching is active.
func (p *CachingProvider) Enabled() bool { return p.enabled.Load() }

// SetEnabled toggles caching at runtime. While disabled every call
// delegates straight through.
func (p *CachingProvider) SetEnabled(enabled bool) { p.enabled.Store(enabled) }

// Stats returns the shared cache's statistics.
func (p *CachingProvider) Stats(ctx context.Context) (Stats, error) {
	return p.cache.Stats(ctx)
}

// Invalidate removes the cached entry for prompt, if any.
func (p *CachingProvider) Invalidate(ctx context.Context, prompt string) (DeleteResult, error) {
	return p.cache.Delete(ctx, ComputeKey(prompt, p.backend, p.model))
}

// ClearCache removes every entry from the shared cache.
func (p *CachingProvider) ClearCache(ctx context.Context) error {
	return p.cache.Clear(ctx)
}

// Ensure CachingProvider remains a drop-in provider.
var (
	_ provider.Provider     = (*CachingProvider)(nil)
	_ provider.BackendNamer = (*CachingProvider)(nil)
	_ provider.ModelNamer   = (*CachingProvider)(nil)
)
