package secret

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnvProvider(t *testing.T) {
	t.Setenv("GENOPS_TEST_API_KEY", "sk-test-123")

	p := NewEnvProvider()
	if got := p.Name(); got != "env" {
		t.Fatalf("Name() = %q, want env", got)
	}

	got, err := p.Resolve(context.Background(), "GENOPS_TEST_API_KEY")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "sk-test-123" {
		t.Fatalf("Resolve = %q, want sk-test-123", got)
	}

	if _, err := p.Resolve(context.Background(), "GENOPS_TEST_UNSET_KEY"); err == nil {
		t.Fatal("Resolve of unset variable succeeded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Resolve(ctx, "GENOPS_TEST_API_KEY"); err == nil {
		t.Fatal("Resolve with cancelled context succeeded")
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		contents string
		want     string
	}{
		{"trailing newline trimmed", "sk-file-456\n", "sk-file-456"},
		{"crlf trimmed", "sk-file-456\r\n", "sk-file-456"},
		{"no newline", "sk-file-456", "sk-file-456"},
		{"inner whitespace kept", "  spaced  \n", "  spaced  "},
	}

	p := NewFileProvider()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "-"))
			if err := os.WriteFile(path, []byte(tt.contents), 0o600); err != nil {
				t.Fatalf("write key file: %v", err)
			}
			got, err := p.Resolve(context.Background(), path)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := p.Resolve(context.Background(), filepath.Join(dir, "missing")); err == nil {
		t.Fatal("Resolve of missing file succeeded")
	}
}
