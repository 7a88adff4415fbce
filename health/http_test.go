package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestAggregator(results map[string]Result) *Aggregator {
	agg := NewAggregator()
	for name, r := range results {
		agg.Register(name, &staticChecker{name: name, result: r})
	}
	return agg
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "OK" {
		t.Fatalf("body = %q, want OK", got)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		results  map[string]Result
		wantCode int
		wantBody string
	}{
		{
			name: "all healthy",
			results: map[string]Result{
				"cache":             Healthy("cache readable"),
				"breaker:anthropic": Healthy("circuit closed"),
			},
			wantCode: http.StatusOK,
			wantBody: "OK",
		},
		{
			name: "degraded still ready",
			results: map[string]Result{
				"cache":  Degraded("cache near byte budget"),
				"budget": Healthy("budget available"),
			},
			wantCode: http.StatusOK,
			wantBody: "DEGRADED",
		},
		{
			name: "unhealthy out of rotation",
			results: map[string]Result{
				"budget": Unhealthy("cost budget exhausted", ErrCheckFailed),
			},
			wantCode: http.StatusServiceUnavailable,
			wantBody: "UNHEALTHY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := newTestAggregator(tt.results)
			rec := httptest.NewRecorder()
			ReadinessHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := rec.Body.String(); got != tt.wantBody {
				t.Fatalf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestDetailedHandler(t *testing.T) {
	agg := newTestAggregator(map[string]Result{
		"cache": Healthy("cache readable").WithDetails(map[string]any{
			"entries": 12,
		}),
		"breaker:anthropic": Unhealthy("circuit open, calls are being rejected", ErrCheckFailed),
	})

	rec := httptest.NewRecorder()
	DetailedHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q", ct)
	}

	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "unhealthy" {
		t.Fatalf("body status = %q, want unhealthy", body.Status)
	}
	if len(body.Checks) != 2 {
		t.Fatalf("body has %d checks, want 2", len(body.Checks))
	}

	breaker := body.Checks["breaker:anthropic"]
	if breaker.Status != "unhealthy" {
		t.Fatalf("breaker status = %q", breaker.Status)
	}
	if breaker.Error == "" {
		t.Fatal("breaker error missing from body")
	}

	cacheCheck := body.Checks["cache"]
	if cacheCheck.Details["entries"] != float64(12) {
		t.Fatalf("cache details = %v", cacheCheck.Details)
	}
}

func TestDetailedHandler_DegradedIs200(t *testing.T) {
	agg := newTestAggregator(map[string]Result{
		"budget": Degraded("cost budget nearly spent"),
	})

	rec := httptest.NewRecorder()
	DetailedHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for degraded", rec.Code)
	}

	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "degraded" {
		t.Fatalf("body status = %q, want degraded", body.Status)
	}
}

func TestRegisterHandlers(t *testing.T) {
	agg := newTestAggregator(map[string]Result{
		"cache": Healthy("cache readable"),
	})
	mux := http.NewServeMux()
	RegisterHandlers(mux, agg)

	for _, path := range []string{"/healthz", "/readyz", "/health"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

var _ Checker = (*staticChecker)(nil)

func TestHandlersHonorRequestContext(t *testing.T) {
	agg := NewAggregator()
	agg.Register("cache", &staticChecker{result: Healthy("ok"), delay: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil).WithContext(ctx)

	rec := httptest.NewRecorder()
	ReadinessHandler(agg)(rec, req)

	// A cancelled request cannot wait for probes: the sweep times out
	// immediately and reports unhealthy.
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 for cancelled request", rec.Code)
	}
}
