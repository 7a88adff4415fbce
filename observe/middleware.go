package observe

import (
	"context"
	"time"
)

// GenerateFunc is the signature for generation calls that Middleware
// wraps. It mirrors the provider contract without importing it.
type GenerateFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

// Middleware wraps generation calls with observability (tracing,
// metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe GenerateFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and
//     propagated unchanged.
//   - Redaction: prompts are logged only through redacted fields and
//     never attached to spans.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability
// components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a GenerateFunc with tracing, metrics, and logging for the
// given backend/model identity.
func (m *Middleware) Wrap(meta GenMeta, fn GenerateFunc) GenerateFunc {
	logger := m.logger.WithProvider(meta.Backend, meta.Model)

	return func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		result, err := fn(ctx, prompt, maxTokens)
		duration := time.Since(start)

		m.tracer.EndSpan(span, err)
		m.metrics.RecordGeneration(ctx, meta, duration, err)

		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
			{Key: "max_tokens", Value: maxTokens},
			{Key: "prompt", Value: prompt}, // redacted by the logger
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			logger.Error(ctx, "generation failed", fields...)
		} else {
			logger.Info(ctx, "generation completed", fields...)
		}

		return result, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}
