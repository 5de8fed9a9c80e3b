package compress

import "fmt"

// ZstdDecompressor decodes Zstandard-compressed strips (libtiff code 50000).
//
// The backend is chosen at build time, see zstd_cgo.go and zstd_pure.go.
type ZstdDecompressor struct{}

var _ Decompressor = (*ZstdDecompressor)(nil)

// NewZstdDecompressor creates a Zstd decompressor.
func NewZstdDecompressor() ZstdDecompressor {
	return ZstdDecompressor{}
}

func checkDecodedSize(out []byte, size int) ([]byte, error) {
	if len(out) < size {
		return nil, fmt.Errorf("zstd stream decoded to %d bytes, expected %d", len(out), size)
	}

	return out[:size], nil
}
