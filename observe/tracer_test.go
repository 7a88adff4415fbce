package observe

import (
	"context"
	"errors"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracer_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := newTracer(tp.Tracer("test"))

	meta := GenMeta{Backend: "openai", Model: "gpt-4o"}
	_, span := tracer.StartSpan(context.Background(), meta)
	tracer.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if got := spans[0].Name(); got != "gen.request.openai.gpt-4o" {
		t.Errorf("span name = %q, want gen.request.openai.gpt-4o", got)
	}
}

func TestTracer_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := newTracer(tp.Tracer("test"))

	_, span := tracer.StartSpan(context.Background(), GenMeta{Backend: "openai"})
	tracer.EndSpan(span, errors.New("backend down"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected error event recorded on span")
	}
}

func TestNoopTracer(t *testing.T) {
	tracer := newNoopTracer()
	ctx, span := tracer.StartSpan(context.Background(), GenMeta{Backend: "x"})
	if ctx == nil || span == nil {
		t.Fatal("noop tracer returned nils")
	}
	tracer.EndSpan(span, errors.New("ignored"))
}
