// Package cache provides a durable response cache for generated text.
//
// It provides SHA-256 key derivation over (prompt, backend, model), a
// one-file-per-entry disk store with atomic writes and usage statistics,
// and a CachingProvider wrapper that collapses concurrent identical
// requests into a single backend call.
package cache
