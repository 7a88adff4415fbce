package secret

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Provider resolves a credential by reference string, such as an API
// key for a generation backend.
//
// Contract:
//   - Implementations are safe for concurrent use.
//   - Resolved values are never logged.
//   - Close releases any backing connection; for local providers it is
//     a no-op.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves references as environment variable names:
//
//	secretref:env:ANTHROPIC_API_KEY
type EnvProvider struct{}

// NewEnvProvider creates a provider backed by the process environment.
func NewEnvProvider() *EnvProvider { return &EnvProvider{} }

func (p *EnvProvider) Name() string { return "env" }

// Resolve looks up ref in the environment. An unset variable is an
// error; an empty one is returned as-is and left to the resolver's
// strict mode.
func (p *EnvProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("secret: environment variable %q is not set", ref)
	}
	return value, nil
}

func (p *EnvProvider) Close() error { return nil }

// FileProvider resolves references as file paths, for key files
// mounted into the container:
//
//	secretref:file:/run/secrets/anthropic-api-key
type FileProvider struct{}

// NewFileProvider creates a provider that reads credentials from disk.
func NewFileProvider() *FileProvider { return &FileProvider{} }

func (p *FileProvider) Name() string { return "file" }

// Resolve reads the file at ref. A single trailing newline is trimmed
// so `echo key > file` round-trips.
func (p *FileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("secret: read key file: %w", err)
	}
	value := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(value, "\r"), nil
}

func (p *FileProvider) Close() error { return nil }

var (
	_ Provider = (*EnvProvider)(nil)
	_ Provider = (*FileProvider)(nil)
)
