package compress

import "fmt"

// NoOpDecompressor handles uncompressed strips.
type NoOpDecompressor struct{}

var _ Decompressor = (*NoOpDecompressor)(nil)

// NewNoOpDecompressor creates a decompressor for uncompressed strips.
func NewNoOpDecompressor() NoOpDecompressor {
	return NoOpDecompressor{}
}

// Decompress returns the first size bytes of data without copying.
//
// Trailing bytes beyond size are ignored; some writers pad the last strip.
func (NoOpDecompressor) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) < size {
		return nil, fmt.Errorf("uncompressed strip holds %d bytes, expected %d", len(data), size)
	}

	return data[:size], nil
}
