// Package compress provides the strip and tile decompressors used by the TIFF
// decoder.
//
// Each TIFF Compression tag value maps to one Decompressor:
//   - None (1): strips are stored as-is
//   - LZW (5): TIFF flavoured LZW (MSB-first, early code width change)
//   - Deflate (8) and legacy Deflate (32946): zlib streams
//   - PackBits (32773): Macintosh run-length encoding
//   - Zstd (50000): Zstandard frames, as written by libtiff
//
// # Architecture
//
//	type Decompressor interface {
//	    Decompress(data []byte, size int) ([]byte, error)
//	}
//
// size is the exact number of bytes the strip decodes to. Stream codecs stop
// reading once size bytes are produced, which tolerates encoders that omit an
// end-of-information marker or pad the stream. A stream that ends before size
// bytes is an error.
//
// # Usage
//
//	dec, err := compress.GetDecompressor(format.CompressionDeflate)
//	if err != nil {
//	    return err
//	}
//	raw, err := dec.Decompress(strip, rowBytes*rows)
//
// # Zstandard backends
//
// With cgo enabled the Zstd decompressor uses github.com/valyala/gozstd (the
// reference C library). Pure Go builds fall back to github.com/klauspost/compress/zstd
// with pooled decoders. Both decode the same frames.
//
// # Thread Safety
//
// All decompressors returned by this package are safe for concurrent use.
package compress
