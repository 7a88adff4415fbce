package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/jonwraymond/genops/secret"
)

func staticCtor(backend string) Constructor {
	return func(_ context.Context, cfg Config) (Provider, error) {
		return NewStatic(backend, cfg.Model, nil), nil
	}
}

func TestFactory_UnknownProvider(t *testing.T) {
	f := NewFactory(nil)

	_, err := f.New(context.Background(), "nope", Config{Model: "m"})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("New(unknown) = %v, want ErrUnknownProvider", err)
	}
}

func TestFactory_MissingModel(t *testing.T) {
	f := NewFactory(nil)
	f.Register("static", staticCtor("static"))

	_, err := f.New(context.Background(), "static", Config{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("New(no model) = %v, want ErrInvalidInput", err)
	}
}

func TestFactory_ResolvesAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GENOPS_TEST_KEY", "sk-test-123")

	f := NewFactory(secret.NewResolver(true))
	f.Register("static", func(_ context.Context, cfg Config) (Provider, error) {
		if cfg.APIKey != "sk-test-123" {
			t.Errorf("APIKey = %q, want resolved value", cfg.APIKey)
		}
		return NewStatic("static", cfg.Model, nil), nil
	})

	_, err := f.New(context.Background(), "static", Config{
		Model:  "m",
		APIKey: "${GENOPS_TEST_KEY}",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
}

func TestFactory_MissingCredential(t *testing.T) {
	f := NewFactory(nil)
	f.Register("static", staticCtor("static"))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"unresolvable env ref", Config{Model: "m", APIKey: "${GENOPS_DEFINITELY_UNSET_VAR}"}},
		{"required but empty", Config{Model: "m", RequireAPIKey: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.New(context.Background(), "static", tt.cfg)
			if !errors.Is(err, ErrMissingCredential) {
				t.Fatalf("New() = %v, want ErrMissingCredential", err)
			}
		})
	}
}

func TestFactory_Names(t *testing.T) {
	f := NewFactory(nil)
	f.Register("zeta", staticCtor("zeta"))
	f.Register("alpha", staticCtor("alpha"))

	names := f.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("Names() = %v, want [alpha zeta]", names)
	}
}
