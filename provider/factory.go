package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonwraymond/genops/secret"
)

// Sentinel errors for provider construction.
var (
	// ErrUnknownProvider is returned when no constructor is registered
	// under the requested name.
	ErrUnknownProvider = errors.New("provider: unknown provider")

	// ErrMissingCredential is returned when a required credential is
	// empty after secret resolution.
	ErrMissingCredential = errors.New("provider: missing credential")
)

// Config carries construction-time settings for a backend.
//
// APIKey may be a literal value, a ${ENV_VAR} reference, or a
// secretref:<provider>:<ref> reference; both forms are resolved through
// the configured secret.Resolver before the constructor runs.
type Config struct {
	// Model is the model identifier to request from the backend.
	Model string

	// APIKey is the credential for the backend, possibly a reference.
	APIKey string

	// RequireAPIKey marks the credential as mandatory. When set, an
	// empty resolved APIKey fails construction with ErrMissingCredential.
	RequireAPIKey bool

	// BaseURL overrides the backend endpoint, when supported.
	BaseURL string

	// Extra holds backend-specific settings; values are resolved like
	// APIKey.
	Extra map[string]string
}

// Validate checks configuration values that do not require resolution.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidInput)
	}
	return nil
}

// Constructor builds a Provider from a resolved Config.
type Constructor func(ctx context.Context, cfg Config) (Provider, error)

// Factory creates providers by registered name, resolving credential
// references at construction time. Construction errors are surfaced to
// the caller and never retried.
type Factory struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	resolver     *secret.Resolver
}

// NewFactory creates a factory. A nil resolver falls back to strict
// environment expansion only.
func NewFactory(resolver *secret.Resolver) *Factory {
	return &Factory{
		constructors: make(map[string]Constructor),
		resolver:     resolver,
	}
}

// Register registers a constructor under name, replacing any previous
// registration.
func (f *Factory) Register(name string, ctor Constructor) {
	if name == "" || ctor == nil {
		return
	}
	f.mu.Lock()
	f.constructors[name] = ctor
	f.mu.Unlock()
}

// Names returns the registered provider names in sorted order.
func (f *Factory) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.constructors))
	for name := range f.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named provider, resolving credential references first.
func (f *Factory) New(ctx context.Context, name string, cfg Config) (Provider, error) {
	f.mu.RLock()
	ctor, ok := f.constructors[name]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	resolved, err := f.resolveConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if resolved.RequireAPIKey && strings.TrimSpace(resolved.APIKey) == "" {
		return nil, fmt.Errorf("%w: provider %q requires an API key", ErrMissingCredential, name)
	}

	return ctor(ctx, resolved)
}

func (f *Factory) resolveConfig(ctx context.Context, cfg Config) (Config, error) {
	var err error
	if cfg.APIKey != "" {
		cfg.APIKey, err = f.resolveValue(ctx, cfg.APIKey)
		if err != nil {
			return Config{}, fmt.Errorf("%w: api key: %v", ErrMissingCredential, err)
		}
	}
	if len(cfg.Extra) > 0 {
		extra := make(map[string]string, len(cfg.Extra))
		for k, v := range cfg.Extra {
			resolved, err := f.resolveValue(ctx, v)
			if err != nil {
				return Config{}, fmt.Errorf("resolve %q: %w", k, err)
			}
			extra[k] = resolved
		}
		cfg.Extra = extra
	}
	return cfg, nil
}

func (f *Factory) resolveValue(ctx context.Context, value string) (string, error) {
	if f.resolver != nil {
		return f.resolver.ResolveValue(ctx, value)
	}
	return secret.ExpandEnvStrict(value)
}
