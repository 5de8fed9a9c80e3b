//go:build cgo

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"
)

// Decompress decodes size bytes from Zstd frames using the C library.
func (ZstdDecompressor) Decompress(data []byte, size int) ([]byte, error) {
	out, err := gozstd.Decompress(make([]byte, 0, size), data)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return checkDecodedSize(out, size)
}
