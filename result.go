package bitplane

import (
	"github.com/arloliu/bitplane/format"
	"github.com/arloliu/bitplane/histogram"
)

// FileStats describes one input of a successful count.
type FileStats struct {
	Path        string             `json:"path"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	SampleWidth format.SampleWidth `json:"bits"`
	Samples     int                `json:"samples"`
	// Digest is the xxHash64 of the decoded samples; zero when digests are disabled.
	Digest uint64 `json:"digest,omitempty"`
}

// Result holds the bit-plane histogram of a set of images.
//
// Slot 15-i of Zeros and Ones counts the samples whose bit i is 0 and 1
// respectively, so the most significant bit of a 16-bit sample lands in slot 0
// and the most significant bit of an 8-bit sample in slot 8.
type Result struct {
	Zeros [histogram.Slots]uint64 `json:"zeros"`
	Ones  [histogram.Slots]uint64 `json:"ones"`
	// Files lists every input in the order given to Count.
	Files []FileStats `json:"files,omitempty"`

	digests bool
}

// Total returns the number of bit observations, the sum of every slot of
// Zeros and Ones.
func (r *Result) Total() uint64 {
	var total uint64
	for i := range histogram.Slots {
		total += r.Zeros[i] + r.Ones[i]
	}

	return total
}

// Samples returns the number of samples counted.
func (r *Result) Samples() int {
	n := 0
	for _, f := range r.Files {
		n += f.Samples
	}

	return n
}

// Duplicates groups the paths of inputs whose decoded samples are identical.
// Only groups of two or more are returned, ordered by first appearance.
// It returns nil when digests were disabled.
func (r *Result) Duplicates() [][]string {
	if !r.digests {
		return nil
	}

	groups := make(map[uint64][]string, len(r.Files))
	var order []uint64
	for _, f := range r.Files {
		if _, seen := groups[f.Digest]; !seen {
			order = append(order, f.Digest)
		}
		groups[f.Digest] = append(groups[f.Digest], f.Path)
	}

	var out [][]string
	for _, key := range order {
		if len(groups[key]) > 1 {
			out = append(out, groups[key])
		}
	}

	return out
}
