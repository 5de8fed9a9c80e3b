package tiff

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/bitplane/endian"
)

const (
	headerSize   = 8
	classicMagic = 42
	bigTIFFMagic = 43
	entrySize    = 12
)

// Tags read by the decoder.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagPlanarConfig    = 284
	tagPredictor       = 317
	tagTileWidth       = 322
	tagTileLength      = 323
	tagTileOffsets     = 324
	tagTileByteCounts  = 325
	tagSampleFormat    = 339
)

// Field types that can carry the unsigned integers the decoder needs.
const (
	typeByte  = 1
	typeShort = 3
	typeLong  = 4
)

// Sample formats.
const (
	sampleFormatUint  = 1
	sampleFormatInt   = 2
	sampleFormatFloat = 3
	sampleFormatVoid  = 4
)

const (
	planarChunky = 1
	planarPlanar = 2
)

// typeSizes holds the byte size of each TIFF field type, indexed by type.
var typeSizes = [...]uint32{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8, 4}

// entry is one raw IFD entry.
type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	value [4]byte
}

// readIFD reads the directory at off and returns its entries keyed by tag.
func readIFD(r io.ReaderAt, size int64, engine endian.EndianEngine, off int64) (map[uint16]entry, error) {
	if off < headerSize || off+2 > size {
		return nil, fmt.Errorf("directory offset %d outside file of %d bytes", off, size)
	}

	var countBuf [2]byte
	if err := readAt(r, countBuf[:], off); err != nil {
		return nil, err
	}
	n := int64(engine.Uint16(countBuf[:]))
	if n == 0 {
		return nil, fmt.Errorf("empty directory")
	}
	if off+2+n*entrySize > size {
		return nil, fmt.Errorf("directory of %d entries overruns file", n)
	}

	buf := make([]byte, n*entrySize)
	if err := readAt(r, buf, off+2); err != nil {
		return nil, err
	}

	entries := make(map[uint16]entry, n)
	for i := int64(0); i < n; i++ {
		raw := buf[i*entrySize : (i+1)*entrySize]
		e := entry{
			tag:   engine.Uint16(raw[0:]),
			typ:   engine.Uint16(raw[2:]),
			count: engine.Uint32(raw[4:]),
		}
		copy(e.value[:], raw[8:12])
		entries[e.tag] = e
	}

	return entries, nil
}

// ints decodes an entry holding BYTE, SHORT or LONG values.
func ints(r io.ReaderAt, size int64, engine endian.EndianEngine, e entry) ([]uint32, error) {
	if e.typ != typeByte && e.typ != typeShort && e.typ != typeLong {
		return nil, fmt.Errorf("tag %d: field type %d is not an unsigned integer", e.tag, e.typ)
	}
	if e.count == 0 {
		return nil, fmt.Errorf("tag %d: no values", e.tag)
	}

	elem := typeSizes[e.typ]
	total := int64(e.count) * int64(elem)

	var raw []byte
	if total <= 4 {
		raw = e.value[:total]
	} else {
		off := int64(engine.Uint32(e.value[:]))
		if off < 0 || off+total > size {
			return nil, fmt.Errorf("tag %d: %d value bytes at offset %d overrun file", e.tag, total, off)
		}
		raw = make([]byte, total)
		if err := readAt(r, raw, off); err != nil {
			return nil, err
		}
	}

	out := make([]uint32, e.count)
	for i := range out {
		switch e.typ {
		case typeByte:
			out[i] = uint32(raw[i])
		case typeShort:
			out[i] = uint32(engine.Uint16(raw[2*i:]))
		default:
			out[i] = engine.Uint32(raw[4*i:])
		}
	}

	return out, nil
}

// ioError marks a failure of the underlying reader, as opposed to a
// structural problem with the file.
type ioError struct {
	err error
}

func (e *ioError) Error() string { return e.err.Error() }

func (e *ioError) Unwrap() error { return e.err }

// readAt fills p from off. A short read reports io.ErrUnexpectedEOF; any other
// reader failure is returned as an *ioError.
func readAt(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return &ioError{err: err}
}
