package compress

import (
	"bytes"
	"fmt"

	"golang.org/x/image/tiff/lzw"
)

// LZWDecompressor decodes TIFF LZW strips.
//
// TIFF LZW differs from the GIF and compress/lzw variant: the code width grows
// one code early. golang.org/x/image/tiff/lzw implements that flavour.
type LZWDecompressor struct{}

var _ Decompressor = (*LZWDecompressor)(nil)

// NewLZWDecompressor creates a TIFF LZW decompressor.
func NewLZWDecompressor() LZWDecompressor {
	return LZWDecompressor{}
}

// Decompress decodes size bytes from an LZW stream.
func (LZWDecompressor) Decompress(data []byte, size int) ([]byte, error) {
	r := lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	defer r.Close()

	out, err := readExactly(r, size)
	if err != nil {
		return nil, fmt.Errorf("lzw decompression failed: %w", err)
	}

	return out, nil
}
