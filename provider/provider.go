package provider

import "context"

// Provider is the interface for text-generation backends.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Generate should honor cancellation/deadlines where applicable.
// - Errors: Generate returns an error from the taxonomy in errors.go where
//   the failure class is known; CountTokens errors only on invalid input.
type Provider interface {
	// Generate produces text for the given prompt, bounded by maxTokens.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)

	// CountTokens returns the token count for text.
	CountTokens(text string) (int, error)
}

// BackendNamer is implemented by providers that know which backend
// service they talk to. Wrappers use it to derive cache and metrics
// identity when none is configured explicitly.
type BackendNamer interface {
	Backend() string
}

// ModelNamer is implemented by providers that expose their model name.
type ModelNamer interface {
	Model() string
}

// UnknownIdentity is the fallback backend/model label used when a
// provider implements neither BackendNamer nor ModelNamer and no
// explicit identity was configured.
const UnknownIdentity = "unknown"

// BackendOf returns the provider's backend name, or UnknownIdentity.
func BackendOf(p Provider) string {
	if n, ok := p.(BackendNamer); ok {
		if name := n.Backend(); name != "" {
			return name
		}
	}
	return UnknownIdentity
}

// ModelOf returns the provider's model name, or UnknownIdentity.
func ModelOf(p Provider) string {
	if n, ok := p.(ModelNamer); ok {
		if name := n.Model(); name != "" {
			return name
		}
	}
	return UnknownIdentity
}
