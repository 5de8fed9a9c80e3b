// Package sample models decoded pixel samples and their bit decomposition.
//
// A Sample is a closed sum over the two supported widths: Eight wraps an 8-bit
// value and Sixteen wraps a 16-bit value. No other implementations exist, so a
// type switch over Sample is exhaustive.
//
// Bits enumerates a sample's bit observations from the least-significant bit
// upwards:
//
//	for i, b := range sample.Bits(sample.Eight(0b0110_1010)) {
//	    fmt.Println(i, b) // 0 0, 1 1, 2 0, 3 1, ...
//	}
package sample

import (
	"iter"

	"github.com/arloliu/bitplane/format"
)

// Sample is one unsigned pixel (or sub-pixel) value of a fixed width.
type Sample interface {
	// Width returns the declared width of the sample.
	Width() format.SampleWidth
	// Bit returns the value (0 or 1) of bit i, where bit 0 is the least-significant bit.
	Bit(i int) uint8

	sealed()
}

// Eight is an 8-bit sample.
type Eight uint8

// Sixteen is a 16-bit sample.
type Sixteen uint16

var (
	_ Sample = Eight(0)
	_ Sample = Sixteen(0)
)

func (Eight) Width() format.SampleWidth { return format.Width8 }

func (s Eight) Bit(i int) uint8 { return uint8(s>>uint(i)) & 1 }

func (Eight) sealed() {}

func (Sixteen) Width() format.SampleWidth { return format.Width16 }

func (s Sixteen) Bit(i int) uint8 { return uint8(s>>uint(i)) & 1 }

func (Sixteen) sealed() {}

// Bits returns the ordered bit observations of s as (bit index, bit value)
// pairs, index 0 first. The sequence yields exactly s.Width().Bits() pairs.
func Bits(s Sample) iter.Seq2[int, uint8] {
	n := s.Width().Bits()

	return func(yield func(int, uint8) bool) {
		for i := range n {
			if !yield(i, s.Bit(i)) {
				return
			}
		}
	}
}
