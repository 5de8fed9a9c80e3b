package histogram

import "sync"

// Accumulator is the global histogram shared by concurrent per-file tasks.
//
// Merge is the only way to change its counts; the lock covers the 16-slot add
// and nothing else. The zero value is ready to use.
type Accumulator struct {
	mu     sync.Mutex
	counts Histogram
	merged int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Merge adds a completed local histogram into the global counts.
func (a *Accumulator) Merge(local *Histogram) {
	a.mu.Lock()
	a.counts.Add(local)
	a.merged++
	a.mu.Unlock()
}

// Snapshot returns a copy of the global counts.
func (a *Accumulator) Snapshot() Histogram {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.counts
}

// Merged returns how many local histograms have been merged.
func (a *Accumulator) Merged() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.merged
}
