package hash

import (
	"encoding/binary"

	"github.com/arloliu/bitplane/sample"
	"github.com/cespare/xxhash/v2"
)

// chunkSamples bounds the scratch buffer used to serialize 16-bit samples.
const chunkSamples = 4096

// Samples computes the xxHash64 of a sample buffer.
//
// 8-bit samples are hashed as-is; 16-bit samples are hashed as little-endian
// pairs, so the digest does not depend on the byte order of the source file.
// The width is mixed in first: an 8-bit and a 16-bit buffer never collide
// just because their bytes agree.
func Samples(buf sample.Buffer) uint64 {
	d := xxhash.New()
	_, _ = d.Write([]byte{byte(buf.Width())})

	if u8 := buf.Uint8(); len(u8) > 0 {
		_, _ = d.Write(u8)

		return d.Sum64()
	}

	u16 := buf.Uint16()
	scratch := make([]byte, 0, 2*min(len(u16), chunkSamples))
	for len(u16) > 0 {
		n := min(len(u16), chunkSamples)
		scratch = scratch[:0]
		for _, v := range u16[:n] {
			scratch = binary.LittleEndian.AppendUint16(scratch, v)
		}
		_, _ = d.Write(scratch)
		u16 = u16[n:]
	}

	return d.Sum64()
}
