package cache

// Stats is a point-in-time view of cache usage.
type Stats struct {
	// Hits and Misses count Get outcomes since construction or the
	// last ResetStats.
	Hits   int64
	Misses int64

	// TotalRequests is Hits + Misses.
	TotalRequests int64

	// HitRate is Hits / TotalRequests, 0 when no requests were made.
	HitRate float64

	// TotalBytes is the occupied size of all entry files.
	TotalBytes int64

	// Entries is the number of stored entries.
	Entries int

	// MaxBytes is the advisory size budget, 0 meaning unlimited.
	MaxBytes int64
}

// Fragmentation returns occupied bytes over the configured maximum.
// The second return is false when no maximum is configured and the
// ratio is not applicable.
func (s Stats) Fragmentation() (float64, bool) {
	if s.MaxBytes <= 0 {
		return 0, false
	}
	return float64(s.TotalBytes) / float64(s.MaxBytes), true
}
