package compress

import (
	"fmt"
	"io"

	"github.com/arloliu/bitplane/format"
)

// Decompressor expands one compressed strip or tile.
//
// Implementations must be safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses data and returns exactly size bytes.
	//
	// Memory management:
	//   - Returned slice is owned by the caller, except for the no-op
	//     decompressor which returns a subslice of data
	//   - Input slice is not modified
	//
	// Error conditions:
	//   - Returns error if data is corrupted or uses an incompatible format
	//   - Returns error if data expands to fewer than size bytes
	Decompress(data []byte, size int) ([]byte, error)
}

var builtinDecompressors = map[format.Compression]Decompressor{
	format.CompressionNone:          NewNoOpDecompressor(),
	format.CompressionLZW:           NewLZWDecompressor(),
	format.CompressionDeflate:       NewDeflateDecompressor(),
	format.CompressionDeflateLegacy: NewDeflateDecompressor(),
	format.CompressionPackBits:      NewPackBitsDecompressor(),
	format.CompressionZstd:          NewZstdDecompressor(),
}

// GetDecompressor retrieves the built-in Decompressor for a TIFF compression code.
func GetDecompressor(compression format.Compression) (Decompressor, error) {
	if dec, ok := builtinDecompressors[compression]; ok {
		return dec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %d", uint16(compression))
}

// readExactly reads size bytes from r.
func readExactly(r io.Reader, size int) ([]byte, error) {
	out := make([]byte, size)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("expected %d decoded bytes: %w", size, err)
	}

	return out, nil
}
