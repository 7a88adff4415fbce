package provider

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// GenerateFunc produces a response for a prompt. Used to script Static
// provider behavior.
type GenerateFunc func(prompt string, maxTokens int) (string, error)

// Static is a deterministic in-process provider.
//
// It is intended for tests, examples, and cache warm-up dry runs: it
// never performs I/O, counts its Generate invocations, and lets callers
// script responses per prompt.
type Static struct {
	backend  string
	model    string
	generate GenerateFunc

	calls atomic.Int64
}

// NewStatic creates a Static provider. A nil generate function echoes
// the prompt back.
func NewStatic(backend, model string, generate GenerateFunc) *Static {
	if backend == "" {
		backend = "static"
	}
	if model == "" {
		model = "static-1"
	}
	if generate == nil {
		generate = func(prompt string, _ int) (string, error) {
			return "echo: " + prompt, nil
		}
	}
	return &Static{backend: backend, model: model, generate: generate}
}

// Generate returns the scripted response for prompt.
func (s *Static) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt is empty", ErrInvalidInput)
	}
	if maxTokens <= 0 {
		return "", fmt.Errorf("%w: maxTokens must be positive", ErrInvalidInput)
	}
	s.calls.Add(1)
	return s.generate(prompt, maxTokens)
}

// CountTokens estimates tokens with the standard four-characters-per-token
// ratio.
func (s *Static) CountTokens(text string) (int, error) {
	return (len(text) + 3) / 4, nil
}

// Backend returns the configured backend name.
func (s *Static) Backend() string { return s.backend }

// Model returns the configured model name.
func (s *Static) Model() string { return s.model }

// Calls returns how many times Generate reached the scripted function.
func (s *Static) Calls() int64 { return s.calls.Load() }

// Ensure Static implements the provider contracts.
var (
	_ Provider     = (*Static)(nil)
	_ BackendNamer = (*Static)(nil)
	_ ModelNamer   = (*Static)(nil)
)
