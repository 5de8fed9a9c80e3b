// Package source opens pixel sample sources by name.
//
// A Source resolves a name (a file path or an s3:// URL) to an Image whose
// samples can be read once. Local reads files from disk, Minio reads objects
// from S3-compatible storage, and Mux routes names to either by URL scheme.
//
// Failures to locate or read an input are reported as *errs.FileOpenError;
// malformed containers as *errs.DecodeError; unsupported sample widths as
// *errs.UnsupportedWidthError. Every error carries the name it was opened with.
package source

import (
	"context"
	"fmt"
	"io"

	"github.com/arloliu/bitplane/internal/options"
	"github.com/arloliu/bitplane/sample"
	"github.com/arloliu/bitplane/tiff"
	"golang.org/x/time/rate"
)

// Source opens images by name.
//
// Implementations must be safe for concurrent use.
type Source interface {
	Open(ctx context.Context, name string) (Image, error)
}

// Image is an opened input.
type Image interface {
	// Dimensions returns the image width and height in pixels.
	Dimensions() (width, height int)
	// DecodedSize returns the number of bytes ReadSamples will hold in memory.
	DecodedSize() int64
	// ReadSamples decodes every sample of the image.
	ReadSamples() (sample.Buffer, error)
	// Close releases the underlying input.
	Close() error
}

// Func adapts a function to the Source interface.
type Func func(ctx context.Context, name string) (Image, error)

// Open calls f(ctx, name).
func (f Func) Open(ctx context.Context, name string) (Image, error) {
	return f(ctx, name)
}

type config struct {
	readLimit  int64
	maxDecoded int64
}

// Option configures a Local or Minio source.
type Option = options.Option[*config]

// WithReadLimit caps the combined read throughput of all images opened by the
// source, in bytes per second. Zero disables the limit.
func WithReadLimit(bytesPerSec int64) Option {
	return options.New(func(c *config) error {
		if bytesPerSec < 0 {
			return fmt.Errorf("read limit must not be negative, got %d", bytesPerSec)
		}
		c.readLimit = bytesPerSec

		return nil
	})
}

// WithMaxDecodedBytes rejects images whose decoded samples would exceed n bytes.
func WithMaxDecodedBytes(n int64) Option {
	return options.New(func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("max decoded bytes must be positive, got %d", n)
		}
		c.maxDecoded = n

		return nil
	})
}

// opener holds what Local and Minio share: decoder options and the read limiter.
type opener struct {
	limiter    *rate.Limiter // nil if unlimited
	maxDecoded int64
}

func newOpener(opts []Option) (opener, error) {
	cfg := &config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return opener{}, err
	}

	o := opener{maxDecoded: cfg.maxDecoded}
	if cfg.readLimit > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(cfg.readLimit), int(cfg.readLimit))
	}

	return o, nil
}

// decode parses the TIFF held by r and ties the result to closer. closer is
// closed when decoding fails.
func (o opener) decode(ctx context.Context, name string, r io.ReaderAt, size int64, closer io.Closer) (Image, error) {
	if o.limiter != nil {
		r = &throttledReaderAt{ctx: ctx, r: r, limiter: o.limiter}
	}

	opts := []tiff.Option{tiff.WithName(name)}
	if o.maxDecoded > 0 {
		opts = append(opts, tiff.WithMaxDecodedBytes(o.maxDecoded))
	}

	dec, err := tiff.NewDecoder(r, size, opts...)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	return &tiffImage{Decoder: dec, closer: closer}, nil
}

type tiffImage struct {
	*tiff.Decoder
	closer io.Closer
}

func (i *tiffImage) Close() error {
	return i.closer.Close()
}
