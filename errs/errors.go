// Package errs defines the error taxonomy shared by the decoder, the sample
// sources and the counter.
//
// Every concrete error type matches its sentinel through errors.Is, so callers
// can classify a failure without depending on the concrete type:
//
//	if errors.Is(err, errs.ErrDecode) {
//	    // container malformed or unsupported
//	}
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrFileOpen is returned when an input is missing or unreadable.
	ErrFileOpen = errors.New("file open failed")
	// ErrDecode is returned when a container is malformed or uses an unsupported structure.
	ErrDecode = errors.New("decode failed")
	// ErrUnsupportedWidth is returned when decoded samples are neither 8 nor 16 bits wide.
	ErrUnsupportedWidth = errors.New("unsupported sample width")
)

// FileOpenError reports an input that could not be opened or read.
type FileOpenError struct {
	Path string
	Err  error
}

func (e *FileOpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *FileOpenError) Unwrap() error { return e.Err }

func (e *FileOpenError) Is(target error) bool { return target == ErrFileOpen }

// DecodeError reports a malformed or unsupported container.
//
// Err holds the underlying cause, if any.
type DecodeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "decode"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// UnsupportedWidthError reports a sample width other than 8 or 16 bits.
type UnsupportedWidthError struct {
	Path string
	Bits int
}

func (e *UnsupportedWidthError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%d-bit samples: %v", e.Bits, ErrUnsupportedWidth)
	}

	return fmt.Sprintf("%s: %d-bit samples: %v", e.Path, e.Bits, ErrUnsupportedWidth)
}

func (e *UnsupportedWidthError) Is(target error) bool { return target == ErrUnsupportedWidth }

// WithPath returns err with its Path filled in when err is one of the
// package's typed errors that does not carry a path yet.
func WithPath(err error, path string) error {
	var (
		fe *FileOpenError
		de *DecodeError
		we *UnsupportedWidthError
	)

	switch {
	case errors.As(err, &fe) && fe.Path == "":
		fe.Path = path
	case errors.As(err, &de) && de.Path == "":
		de.Path = path
	case errors.As(err, &we) && we.Path == "":
		we.Path = path
	}

	return err
}
