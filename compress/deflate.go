package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// zlibReaderPool pools zlib readers; Reset re-arms a reader for a new stream
// without reallocating its window.
var zlibReaderPool sync.Pool

// DeflateDecompressor decodes zlib-wrapped Deflate strips (TIFF codes 8 and 32946).
type DeflateDecompressor struct{}

var _ Decompressor = (*DeflateDecompressor)(nil)

// NewDeflateDecompressor creates a Deflate decompressor.
func NewDeflateDecompressor() DeflateDecompressor {
	return DeflateDecompressor{}
}

// Decompress inflates size bytes from a zlib stream.
func (DeflateDecompressor) Decompress(data []byte, size int) ([]byte, error) {
	r, err := getZlibReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("deflate decompression failed: %w", err)
	}
	defer zlibReaderPool.Put(r)

	out, err := readExactly(r, size)
	if err != nil {
		return nil, fmt.Errorf("deflate decompression failed: %w", err)
	}

	return out, nil
}

func getZlibReader(src io.Reader) (io.ReadCloser, error) {
	if r, ok := zlibReaderPool.Get().(io.ReadCloser); ok {
		if err := r.(zlib.Resetter).Reset(src, nil); err != nil {
			return nil, err
		}

		return r, nil
	}

	return zlib.NewReader(src)
}
