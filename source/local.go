package source

import (
	"context"
	"errors"
	"os"

	"github.com/arloliu/bitplane/errs"
)

// Local opens TIFF files from the local filesystem.
type Local struct {
	opener
}

var _ Source = (*Local)(nil)

// NewLocal creates a filesystem source.
func NewLocal(opts ...Option) (*Local, error) {
	o, err := newOpener(opts)
	if err != nil {
		return nil, err
	}

	return &Local{opener: o}, nil
}

// Open opens the file at path and parses its first image.
func (l *Local) Open(ctx context.Context, path string) (Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &errs.FileOpenError{Path: path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, &errs.FileOpenError{Path: path, Err: err}
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, &errs.FileOpenError{Path: path, Err: errors.New("is a directory")}
	}

	return l.decode(ctx, path, f, info.Size(), f)
}
