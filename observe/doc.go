// Package observe provides telemetry for generation calls: structured
// JSON logging with secret redaction, OpenTelemetry tracing and metrics
// with pluggable exporters, and a middleware that wraps a provider's
// Generate with all three.
package observe
