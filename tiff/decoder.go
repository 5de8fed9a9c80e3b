// Package tiff reads the raw samples of the first image in a classic TIFF file.
//
// The decoder understands both byte orders, strip and tile organisation,
// chunky and planar configurations, horizontal differencing, and the codecs
// provided by the compress package. Samples are returned exactly as stored
// (after decompression and prediction): every channel of every pixel is one
// sample and no colour conversion is applied.
//
// Only 8-bit and 16-bit integer samples are supported. Other widths fail with
// an *errs.UnsupportedWidthError; malformed or unsupported structures fail
// with an *errs.DecodeError.
//
// # Basic Usage
//
//	f, _ := os.Open("scan.tif")
//	info, _ := f.Stat()
//	dec, err := tiff.NewDecoder(f, info.Size(), tiff.WithName("scan.tif"))
//	if err != nil {
//	    return err
//	}
//	w, h := dec.Dimensions()
//	samples, err := dec.ReadSamples()
package tiff

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/arloliu/bitplane/compress"
	"github.com/arloliu/bitplane/endian"
	"github.com/arloliu/bitplane/errs"
	"github.com/arloliu/bitplane/format"
	"github.com/arloliu/bitplane/internal/options"
	"github.com/arloliu/bitplane/sample"
)

// DefaultMaxDecodedBytes caps the decoded size of one image unless overridden
// with WithMaxDecodedBytes.
const DefaultMaxDecodedBytes = 4 << 30

// Layout describes the structure of a decoded image.
type Layout struct {
	Width           int
	Height          int
	SamplesPerPixel int
	SampleWidth     format.SampleWidth
	Compression     format.Compression
	Predictor       format.Predictor
	Photometric     int
	Planar          bool
	Tiled           bool
	ByteOrder       string
}

// Samples returns the number of samples in the image.
func (l Layout) Samples() int64 {
	return int64(l.Width) * int64(l.Height) * int64(l.SamplesPerPixel)
}

// DecodedSize returns the in-memory size of the decoded samples.
func (l Layout) DecodedSize() int64 {
	return l.Samples() * int64(l.SampleWidth.Bytes())
}

// Decoder reads the first image of a TIFF file.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	r      io.ReaderAt
	size   int64
	engine endian.EndianEngine
	codec  compress.Decompressor
	layout Layout
	chunks []chunk

	name       string
	maxDecoded int64
}

// Option configures a Decoder.
type Option = options.Option[*Decoder]

// WithName sets the name reported in errors, usually the file path.
func WithName(name string) Option {
	return options.NoError(func(d *Decoder) {
		d.name = name
	})
}

// WithMaxDecodedBytes rejects images whose decoded samples would exceed n bytes.
func WithMaxDecodedBytes(n int64) Option {
	return options.New(func(d *Decoder) error {
		if n <= 0 {
			return fmt.Errorf("max decoded bytes must be positive, got %d", n)
		}
		d.maxDecoded = n

		return nil
	})
}

// NewDecoder parses the header and first directory of the TIFF file in r,
// which holds size bytes. Sample data is not read until ReadSamples.
func NewDecoder(r io.ReaderAt, size int64, opts ...Option) (*Decoder, error) {
	d := &Decoder{
		r:          r,
		size:       size,
		maxDecoded: DefaultMaxDecodedBytes,
	}
	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	if err := d.parse(); err != nil {
		return nil, d.wrap(err)
	}

	return d, nil
}

// Dimensions returns the image width and height in pixels.
func (d *Decoder) Dimensions() (width, height int) {
	return d.layout.Width, d.layout.Height
}

// Layout returns the parsed image structure.
func (d *Decoder) Layout() Layout {
	return d.layout
}

// DecodedSize returns the number of bytes ReadSamples will allocate for samples.
func (d *Decoder) DecodedSize() int64 {
	return d.layout.DecodedSize()
}

// ReadSamples decodes every sample of the image.
func (d *Decoder) ReadSamples() (sample.Buffer, error) {
	n := int(d.layout.Samples())

	if d.layout.SampleWidth == format.Width16 {
		out := make([]uint16, n)
		err := readChunks(d, out, func(dst []uint16, src []byte) {
			endian.DecodeUint16s(d.engine, dst, src)
		})
		if err != nil {
			return sample.Buffer{}, d.wrap(err)
		}

		return sample.FromUint16(out), nil
	}

	out := make([]uint8, n)
	err := readChunks(d, out, func(dst []uint8, src []byte) {
		copy(dst, src)
	})
	if err != nil {
		return sample.Buffer{}, d.wrap(err)
	}

	return sample.FromUint8(out), nil
}

func (d *Decoder) parse() error {
	var header [headerSize]byte
	if d.size < headerSize {
		return decodeErr("file shorter than TIFF header", nil)
	}
	if err := readAt(d.r, header[:], 0); err != nil {
		return d.readErr("header", err)
	}

	engine, err := endian.FromMark(header[:2])
	if err != nil {
		return decodeErr("not a TIFF file", err)
	}
	d.engine = engine
	d.layout.ByteOrder = endian.Mark(engine)

	switch magic := engine.Uint16(header[2:4]); magic {
	case classicMagic:
	case bigTIFFMagic:
		return decodeErr("BigTIFF is not supported", nil)
	default:
		return decodeErr(fmt.Sprintf("bad magic number %d", magic), nil)
	}

	entries, err := readIFD(d.r, d.size, engine, int64(engine.Uint32(header[4:8])))
	if err != nil {
		return d.readErr("directory", err)
	}

	return d.parseLayout(entries)
}

func (d *Decoder) parseLayout(entries map[uint16]entry) error {
	// field returns the values of tag, or def when the tag is absent.
	field := func(tag uint16, def ...uint32) ([]uint32, error) {
		e, ok := entries[tag]
		if !ok {
			if def == nil {
				return nil, decodeErr(fmt.Sprintf("missing required tag %d", tag), nil)
			}

			return def, nil
		}
		vals, err := ints(d.r, d.size, d.engine, e)
		if err != nil {
			return nil, d.readErr("directory", err)
		}

		return vals, nil
	}
	scalar := func(tag uint16, def ...uint32) (int, error) {
		vals, err := field(tag, def...)
		if err != nil {
			return 0, err
		}

		return int(vals[0]), nil
	}

	l := &d.layout
	var err error

	if l.Width, err = scalar(tagImageWidth); err != nil {
		return err
	}
	if l.Height, err = scalar(tagImageLength); err != nil {
		return err
	}
	if l.Width <= 0 || l.Height <= 0 {
		return decodeErr(fmt.Sprintf("invalid dimensions %dx%d", l.Width, l.Height), nil)
	}

	if l.SamplesPerPixel, err = scalar(tagSamplesPerPixel, 1); err != nil {
		return err
	}
	if l.SamplesPerPixel <= 0 {
		return decodeErr("samples per pixel must be positive", nil)
	}

	if err := d.parseSampleWidth(field); err != nil {
		return err
	}

	if l.Photometric, err = scalar(tagPhotometric, 1); err != nil {
		return err
	}

	compression, err := scalar(tagCompression, uint32(format.CompressionNone))
	if err != nil {
		return err
	}
	l.Compression = format.Compression(compression)
	if d.codec, err = compress.GetDecompressor(l.Compression); err != nil {
		return decodeErr("unsupported compression", err)
	}

	predictor, err := scalar(tagPredictor, uint32(format.PredictorNone))
	if err != nil {
		return err
	}
	l.Predictor = format.Predictor(predictor)
	if l.Predictor != format.PredictorNone && l.Predictor != format.PredictorHorizontal {
		return decodeErr(fmt.Sprintf("unsupported predictor %d", predictor), nil)
	}

	planar, err := scalar(tagPlanarConfig, planarChunky)
	if err != nil {
		return err
	}
	switch planar {
	case planarChunky:
	case planarPlanar:
		l.Planar = l.SamplesPerPixel > 1
	default:
		return decodeErr(fmt.Sprintf("invalid planar configuration %d", planar), nil)
	}

	if _, ok := boundedProduct(min(d.maxDecoded, math.MaxInt), l.Width, l.Height, l.SamplesPerPixel, l.SampleWidth.Bytes()); !ok {
		return decodeErr(fmt.Sprintf("decoded image of %dx%d pixels with %d %s samples exceeds limit of %d bytes",
			l.Width, l.Height, l.SamplesPerPixel, l.SampleWidth, d.maxDecoded), nil)
	}

	if _, ok := entries[tagTileWidth]; ok {
		l.Tiled = true
		return d.planTiles(field)
	}

	return d.planStrips(field)
}

func (d *Decoder) parseSampleWidth(field func(uint16, ...uint32) ([]uint32, error)) error {
	bits, err := field(tagBitsPerSample, 1)
	if err != nil {
		return err
	}
	for _, b := range bits[1:] {
		if b != bits[0] {
			return decodeErr(fmt.Sprintf("mixed bits per sample %v", bits), nil)
		}
	}

	w := format.SampleWidth(bits[0])
	if bits[0] > 0xff || !w.Valid() {
		return &errs.UnsupportedWidthError{Bits: int(bits[0])}
	}
	d.layout.SampleWidth = w

	formats, err := field(tagSampleFormat, sampleFormatUint)
	if err != nil {
		return err
	}
	for _, f := range formats {
		switch f {
		case sampleFormatUint, sampleFormatInt, sampleFormatVoid:
		case sampleFormatFloat:
			return decodeErr("floating-point samples are not supported", nil)
		default:
			return decodeErr(fmt.Sprintf("unknown sample format %d", f), nil)
		}
	}

	return nil
}

// wrap attaches the decoder name to typed errors and converts anything else
// into a DecodeError.
func (d *Decoder) wrap(err error) error {
	if !errors.Is(err, errs.ErrDecode) && !errors.Is(err, errs.ErrUnsupportedWidth) && !errors.Is(err, errs.ErrFileOpen) {
		err = decodeErr("invalid image", err)
	}

	return errs.WithPath(err, d.name)
}

// readErr classifies a failed read: running off the end of the data means a
// truncated container, a reader failure means the input is unreadable.
func (d *Decoder) readErr(what string, err error) error {
	var ioe *ioError
	switch {
	case errors.Is(err, io.ErrUnexpectedEOF):
		return decodeErr("truncated "+what, err)
	case errors.As(err, &ioe):
		return &errs.FileOpenError{Err: ioe.err}
	default:
		return decodeErr("malformed "+what, err)
	}
}

// boundedProduct multiplies factors and reports whether every partial product
// stays within [0, limit]. Negative factors fail.
func boundedProduct(limit int64, factors ...int) (int64, bool) {
	p := uint64(1)
	for _, f := range factors {
		if f < 0 {
			return 0, false
		}
		hi, lo := bits.Mul64(p, uint64(f))
		if hi != 0 || lo > uint64(limit) {
			return 0, false
		}
		p = lo
	}

	return int64(p), true
}

func decodeErr(reason string, err error) error {
	return &errs.DecodeError{Reason: reason, Err: err}
}
