package secret

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// stubProvider is a vault stand-in with fixed credentials.
type stubProvider struct {
	name   string
	values map[string]string
	err    error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	v, ok := p.values[ref]
	if !ok {
		return "", fmt.Errorf("stub: unknown ref %q", ref)
	}
	return v, nil
}

func (p *stubProvider) Close() error { return nil }

func newVaultResolver(strict bool) *Resolver {
	return NewResolver(strict, &stubProvider{
		name: "vault",
		values: map[string]string{
			"prod/anthropic": "sk-ant-prod",
			"prod/openai":    "sk-oai-prod",
			"empty":          "",
		},
	})
}

func TestParseSecretRef(t *testing.T) {
	tests := []struct {
		value        string
		wantProvider string
		wantRef      string
		wantOK       bool
	}{
		{"secretref:vault:prod/anthropic", "vault", "prod/anthropic", true},
		{"secretref:env:ANTHROPIC_API_KEY", "env", "ANTHROPIC_API_KEY", true},
		{"secretref:file:/run/secrets/key", "file", "/run/secrets/key", true},
		{"sk-ant-plain-key", "", "", false},
		{"secretref:", "", "", false},
		{"secretref:vault:", "", "", false},
		{"secretref::prod/anthropic", "", "", false},
	}
	for _, tt := range tests {
		provider, ref, ok := ParseSecretRef(tt.value)
		if provider != tt.wantProvider || ref != tt.wantRef || ok != tt.wantOK {
			t.Errorf("ParseSecretRef(%q) = %q, %q, %v; want %q, %q, %v",
				tt.value, provider, ref, ok, tt.wantProvider, tt.wantRef, tt.wantOK)
		}
	}
}

func TestResolver_FullReference(t *testing.T) {
	r := newVaultResolver(true)

	got, err := r.ResolveValue(context.Background(), "secretref:vault:prod/anthropic")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "sk-ant-prod" {
		t.Fatalf("ResolveValue = %q, want sk-ant-prod", got)
	}
}

func TestResolver_InlineReference(t *testing.T) {
	r := newVaultResolver(true)

	got, err := r.ResolveValue(context.Background(), "Bearer secretref:vault:prod/anthropic")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "Bearer sk-ant-prod" {
		t.Fatalf("ResolveValue = %q", got)
	}

	// Multiple inline references in one value.
	got, err = r.ResolveValue(context.Background(),
		"a=secretref:vault:prod/anthropic b=secretref:vault:prod/openai")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "a=sk-ant-prod b=sk-oai-prod" {
		t.Fatalf("ResolveValue = %q", got)
	}
}

func TestResolver_EnvExpansionBeforeResolution(t *testing.T) {
	t.Setenv("GENOPS_TEST_VAULT_PATH", "prod/anthropic")

	r := newVaultResolver(true)
	got, err := r.ResolveValue(context.Background(), "secretref:vault:${GENOPS_TEST_VAULT_PATH}")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "sk-ant-prod" {
		t.Fatalf("ResolveValue = %q, want sk-ant-prod", got)
	}

	if _, err := r.ResolveValue(context.Background(), "${GENOPS_TEST_MISSING_VAR}"); err == nil {
		t.Fatal("missing environment variable not reported")
	}
}

func TestResolver_StrictEmptyValue(t *testing.T) {
	strict := newVaultResolver(true)
	if _, err := strict.ResolveValue(context.Background(), "secretref:vault:empty"); err == nil {
		t.Fatal("strict resolver accepted empty credential")
	}

	lenient := newVaultResolver(false)
	got, err := lenient.ResolveValue(context.Background(), "secretref:vault:empty")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "" {
		t.Fatalf("ResolveValue = %q, want empty", got)
	}
}

func TestResolver_UnknownProvider(t *testing.T) {
	r := newVaultResolver(true)
	if _, err := r.ResolveValue(context.Background(), "secretref:bws:prod/key"); err == nil {
		t.Fatal("unknown provider not reported")
	}
}

func TestResolver_ProviderError(t *testing.T) {
	boom := errors.New("vault sealed")
	r := NewResolver(true, &stubProvider{name: "vault", err: boom})

	_, err := r.ResolveValue(context.Background(), "secretref:vault:prod/anthropic")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want vault error", err)
	}
}

func TestResolver_PlainValuePassesThrough(t *testing.T) {
	r := newVaultResolver(true)
	got, err := r.ResolveValue(context.Background(), "sk-ant-plain-key")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "sk-ant-plain-key" {
		t.Fatalf("ResolveValue = %q", got)
	}
}

func TestResolver_NilStillExpands(t *testing.T) {
	t.Setenv("GENOPS_TEST_PLAIN_KEY", "sk-from-env")

	var r *Resolver
	got, err := r.ResolveValue(context.Background(), "${GENOPS_TEST_PLAIN_KEY}")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "sk-from-env" {
		t.Fatalf("ResolveValue = %q, want sk-from-env", got)
	}
}

func TestResolver_SliceAndMap(t *testing.T) {
	r := newVaultResolver(true)
	ctx := context.Background()

	slice, err := r.ResolveSlice(ctx, []string{"plain", "secretref:vault:prod/anthropic"})
	if err != nil {
		t.Fatalf("ResolveSlice: %v", err)
	}
	if slice[0] != "plain" || slice[1] != "sk-ant-prod" {
		t.Fatalf("ResolveSlice = %v", slice)
	}

	m, err := r.ResolveMap(ctx, map[string]string{
		"api_key": "secretref:vault:prod/anthropic",
	})
	if err != nil {
		t.Fatalf("ResolveMap: %v", err)
	}
	if m["api_key"] != "sk-ant-prod" {
		t.Fatalf("ResolveMap = %v", m)
	}

	if _, err := r.ResolveMap(ctx, map[string]string{"bad": "secretref:vault:nope"}); err == nil {
		t.Fatal("ResolveMap swallowed a resolution failure")
	}

	nilMap, err := r.ResolveMap(ctx, nil)
	if err != nil || nilMap != nil {
		t.Fatalf("ResolveMap(nil) = %v, %v", nilMap, err)
	}
}

func TestResolver_RegisterReplaces(t *testing.T) {
	r := newVaultResolver(true)
	r.Register(&stubProvider{name: "vault", values: map[string]string{
		"prod/anthropic": "sk-rotated",
	}})

	got, err := r.ResolveValue(context.Background(), "secretref:vault:prod/anthropic")
	if err != nil {
		t.Fatalf("ResolveValue: %v", err)
	}
	if got != "sk-rotated" {
		t.Fatalf("ResolveValue = %q, want sk-rotated", got)
	}
}
