package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records telemetry for generation calls.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordGeneration records one generation call with duration and
	// error status.
	RecordGeneration(ctx context.Context, meta GenMeta, duration time.Duration, err error)

	// RecordUsage records token consumption and estimated cost for a
	// generation call.
	RecordUsage(ctx context.Context, meta GenMeta, inputTokens, outputTokens int64, cost float64)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	tokenCount   metric.Int64Counter
	costTotal    metric.Float64Counter
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"gen.requests.total",
		metric.WithDescription("Total number of generation requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"gen.requests.errors",
		metric.WithDescription("Total number of failed generation requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"gen.request.duration_ms",
		metric.WithDescription("Generation request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	tokenCount, err := meter.Int64Counter(
		"gen.tokens.total",
		metric.WithDescription("Total tokens consumed, by direction"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, err
	}

	costTotal, err := meter.Float64Counter(
		"gen.cost.total",
		metric.WithDescription("Cumulative estimated spend"),
		metric.WithUnit("{usd}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		tokenCount:   tokenCount,
		costTotal:    costTotal,
	}, nil
}

func metaAttrs(meta GenMeta) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("gen.backend", meta.Backend),
	}
	if meta.Model != "" {
		attrs = append(attrs, attribute.String("gen.model", meta.Model))
	}
	return attrs
}

// RecordGeneration records metrics for one generation call.
func (m *metricsImpl) RecordGeneration(ctx context.Context, meta GenMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(metaAttrs(meta)...)

	// Always increment total counter
	m.totalCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	durationMs := float64(duration.Milliseconds())
	m.durationHist.Record(ctx, durationMs, opt)
}

// RecordUsage records token and cost observations for one call.
func (m *metricsImpl) RecordUsage(ctx context.Context, meta GenMeta, inputTokens, outputTokens int64, cost float64) {
	attrs := metaAttrs(meta)

	if inputTokens > 0 {
		m.tokenCount.Add(ctx, inputTokens, metric.WithAttributes(
			append(attrs, attribute.String("gen.direction", "input"))...))
	}
	if outputTokens > 0 {
		m.tokenCount.Add(ctx, outputTokens, metric.WithAttributes(
			append(attrs, attribute.String("gen.direction", "output"))...))
	}
	if cost > 0 {
		m.costTotal.Add(ctx, cost, metric.WithAttributes(attrs...))
	}
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordGeneration(ctx context.Context, meta GenMeta, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordUsage(ctx context.Context, meta GenMeta, inputTokens, outputTokens int64, cost float64) {
}

// NewMetrics creates a Metrics backed by the given meter. Exposed so
// that the metrics aggregator can mirror observations onto OpenTelemetry
// instruments.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

// NopMetrics returns a Metrics that discards everything.
func NopMetrics() Metrics { return &noopMetrics{} }
