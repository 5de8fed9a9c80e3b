package sample

import (
	"iter"

	"github.com/arloliu/bitplane/format"
)

// Buffer holds every sample decoded from one file. All samples in a buffer
// share the same width.
//
// The zero value is an empty 8-bit buffer.
type Buffer struct {
	u8    []uint8
	u16   []uint16
	width format.SampleWidth
}

// FromUint8 wraps 8-bit samples without copying.
func FromUint8(samples []uint8) Buffer {
	return Buffer{u8: samples, width: format.Width8}
}

// FromUint16 wraps 16-bit samples without copying.
func FromUint16(samples []uint16) Buffer {
	return Buffer{u16: samples, width: format.Width16}
}

// Width returns the width of every sample in the buffer.
func (b Buffer) Width() format.SampleWidth {
	if b.width == 0 {
		return format.Width8
	}

	return b.width
}

// Len returns the number of samples.
func (b Buffer) Len() int {
	if b.width == format.Width16 {
		return len(b.u16)
	}

	return len(b.u8)
}

// Bits returns the total number of bit observations the buffer yields.
func (b Buffer) Bits() uint64 {
	return uint64(b.Len()) * uint64(b.Width().Bits())
}

// Uint8 returns the underlying 8-bit samples, or nil for a 16-bit buffer.
func (b Buffer) Uint8() []uint8 { return b.u8 }

// Uint16 returns the underlying 16-bit samples, or nil for an 8-bit buffer.
func (b Buffer) Uint16() []uint16 { return b.u16 }

// All returns the samples in order.
func (b Buffer) All() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		if b.width == format.Width16 {
			for _, v := range b.u16 {
				if !yield(Sixteen(v)) {
					return
				}
			}

			return
		}

		for _, v := range b.u8 {
			if !yield(Eight(v)) {
				return
			}
		}
	}
}
