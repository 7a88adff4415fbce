// Package optimizer provides offline maintenance over a response
// cache: sequential and parallel pre-warming, health analysis with
// actionable recommendations, and stale-entry eviction.
package optimizer
