package bitplane

import (
	"context"
	"errors"

	"github.com/arloliu/bitplane/errs"
)

var (
	// ErrFileOpen is returned when an input is missing or unreadable.
	ErrFileOpen = errs.ErrFileOpen
	// ErrDecode is returned when an input is not a supported TIFF image.
	ErrDecode = errs.ErrDecode
	// ErrUnsupportedWidth is returned when an input's samples are neither 8 nor 16 bits wide.
	ErrUnsupportedWidth = errs.ErrUnsupportedWidth
)

// classify attaches path to errors from sources that do not report one.
// Cancellation is passed through unchanged.
func classify(path string, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, errs.ErrFileOpen), errors.Is(err, errs.ErrDecode), errors.Is(err, errs.ErrUnsupportedWidth):
		return errs.WithPath(err, path)
	default:
		return &errs.FileOpenError{Path: path, Err: err}
	}
}
