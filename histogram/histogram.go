// Package histogram accumulates bit observations into per-slot zero/one counts.
//
// Every sample, whatever its width, has its least-significant bit aligned to
// slot 15: bit i of a sample lands in slot 15-i. An 8-bit sample therefore only
// reaches slots 8..15, while a 16-bit sample reaches all 16 slots.
//
// A Histogram is plain data and is not safe for concurrent mutation. Per-file
// work fills a private Histogram with Accumulate and hands it to a shared
// Accumulator, whose Merge is the only mutation path for the global counts.
package histogram

import (
	"github.com/arloliu/bitplane/sample"
)

// Slots is the number of canonical bit positions.
const Slots = 16

// Histogram holds, per canonical slot, the number of observed 0 bits (index 0)
// and 1 bits (index 1).
type Histogram [Slots][2]uint64

// Slot maps a bit index (0 = least-significant) to its canonical slot.
func Slot(bitIndex int) int {
	return Slots - 1 - bitIndex
}

// Observe records one bit observation.
func (h *Histogram) Observe(bitIndex int, bit uint8) {
	h[Slot(bitIndex)][bit]++
}

// Add adds other into h slot by slot.
func (h *Histogram) Add(other *Histogram) {
	for s := range h {
		h[s][0] += other[s][0]
		h[s][1] += other[s][1]
	}
}

// Total returns the number of observations recorded across all slots.
func (h *Histogram) Total() uint64 {
	var n uint64
	for s := range h {
		n += h[s][0] + h[s][1]
	}

	return n
}

// Zeros returns the count of 0 bits per slot, slot 0 first.
func (h *Histogram) Zeros() [Slots]uint64 {
	var out [Slots]uint64
	for s := range h {
		out[s] = h[s][0]
	}

	return out
}

// Ones returns the count of 1 bits per slot, slot 0 first.
func (h *Histogram) Ones() [Slots]uint64 {
	var out [Slots]uint64
	for s := range h {
		out[s] = h[s][1]
	}

	return out
}

// Accumulate drains buf once and records every bit observation of every sample
// into h. Each sample contributes exactly its width in observations.
func Accumulate(h *Histogram, buf sample.Buffer) {
	for _, v := range buf.Uint8() {
		for i, b := range sample.Bits(sample.Eight(v)) {
			h.Observe(i, b)
		}
	}

	for _, v := range buf.Uint16() {
		for i, b := range sample.Bits(sample.Sixteen(v)) {
			h.Observe(i, b)
		}
	}
}

// Of returns a fresh histogram of buf.
func Of(buf sample.Buffer) Histogram {
	var h Histogram
	Accumulate(&h, buf)

	return h
}
