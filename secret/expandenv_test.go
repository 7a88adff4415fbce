package secret

import (
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("GENOPS_TEST_KEY", "sk-expanded")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"braced variable", "${GENOPS_TEST_KEY}", "sk-expanded"},
		{"embedded in value", "Bearer ${GENOPS_TEST_KEY}", "Bearer sk-expanded"},
		{"no variables", "sk-plain", "sk-plain"},
		{"dollar escape", "$$${GENOPS_TEST_KEY}", "$sk-expanded"},
		{"double escape only", "$$", "$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandEnvStrict(tt.input)
			if err != nil {
				t.Fatalf("ExpandEnvStrict(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("ExpandEnvStrict(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandEnvStrict_MissingVars(t *testing.T) {
	t.Setenv("GENOPS_TEST_PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${GENOPS_TEST_PRESENT} b=${GENOPS_TEST_ABSENT} c=${GENOPS_TEST_GONE}")
	if err == nil {
		t.Fatal("missing variables not reported")
	}
	// Every missing name is listed, sorted, so the operator fixes the
	// environment in one pass.
	msg := err.Error()
	if !strings.Contains(msg, "GENOPS_TEST_ABSENT") || !strings.Contains(msg, "GENOPS_TEST_GONE") {
		t.Fatalf("error does not name the missing variables: %v", err)
	}
	if strings.Index(msg, "GENOPS_TEST_ABSENT") > strings.Index(msg, "GENOPS_TEST_GONE") {
		t.Fatalf("missing variables not sorted: %v", err)
	}
}
