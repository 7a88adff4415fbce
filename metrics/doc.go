// Package metrics aggregates generation statistics per backend/model
// pair: request and error counts, token totals, cumulative cost, and a
// bounded window of recent latencies for nearest-rank percentile
// estimation.
//
// Attribution is always explicit: token and cost recorders either take
// backend/model arguments or hang off a Sample scope created by Track,
// so concurrent scopes can never cross-contaminate.
package metrics
