package compress

import "fmt"

// PackBitsDecompressor decodes Macintosh PackBits run-length strips.
type PackBitsDecompressor struct{}

var _ Decompressor = (*PackBitsDecompressor)(nil)

// NewPackBitsDecompressor creates a PackBits decompressor.
func NewPackBitsDecompressor() PackBitsDecompressor {
	return PackBitsDecompressor{}
}

// Decompress expands a PackBits stream into size bytes.
//
// Each header byte n selects one of:
//   - 0..127: copy the next n+1 bytes literally
//   - -127..-1: repeat the next byte 1-n times
//   - -128: no operation
func (PackBitsDecompressor) Decompress(data []byte, size int) ([]byte, error) {
	out := make([]byte, 0, size)

	for i := 0; i < len(data) && len(out) < size; {
		n := int(int8(data[i]))
		i++

		switch {
		case n >= 0:
			end := i + n + 1
			if end > len(data) {
				return nil, fmt.Errorf("packbits literal run of %d bytes overruns input at offset %d", n+1, i)
			}
			out = append(out, data[i:end]...)
			i = end
		case n != -128:
			if i >= len(data) {
				return nil, fmt.Errorf("packbits repeat run missing its byte at offset %d", i)
			}
			for range 1 - n {
				out = append(out, data[i])
			}
			i++
		}
	}

	if len(out) < size {
		return nil, fmt.Errorf("packbits stream decoded to %d bytes, expected %d", len(out), size)
	}

	return out[:size], nil
}
