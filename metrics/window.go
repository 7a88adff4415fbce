package metrics

import (
	"math"
	"sort"
	"time"
)

// latencyWindow is a fixed-capacity ring of latency samples. Once full,
// the oldest sample is overwritten. Callers synchronize access.
type latencyWindow struct {
	samples []time.Duration
	next    int
	filled  bool
}

func newLatencyWindow(capacity int) *latencyWindow {
	return &latencyWindow{samples: make([]time.Duration, 0, capacity)}
}

func (w *latencyWindow) add(d time.Duration) {
	if cap(w.samples) == 0 {
		return
	}
	if len(w.samples) < cap(w.samples) {
		w.samples = append(w.samples, d)
		return
	}
	w.samples[w.next] = d
	w.next = (w.next + 1) % len(w.samples)
	w.filled = true
}

func (w *latencyWindow) snapshot() []time.Duration {
	out := make([]time.Duration, len(w.samples))
	copy(out, w.samples)
	return out
}

// Percentile estimates the p-th percentile of samples by nearest rank:
// for n sorted samples, index = n*p; an exact integer index selects the
// sample at that 0-based position, otherwise the sample at ceil(index)-1
// is taken; the result is clamped to the last sample.
//
// This deliberately does not interpolate between samples.
func Percentile(samples []time.Duration, p float64) time.Duration {
	if len(samples) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := float64(len(sorted)) * p
	var i int
	if idx == math.Trunc(idx) {
		i = int(idx)
	} else {
		i = int(math.Ceil(idx)) - 1
	}
	if i < 0 {
		i = 0
	}
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}
