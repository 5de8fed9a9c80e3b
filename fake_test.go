package bitplane

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/arloliu/bitplane/errs"
	"github.com/arloliu/bitplane/sample"
	"github.com/arloliu/bitplane/source"
)

// memImage is an in-memory input.
type memImage struct {
	width, height int
	buf           sample.Buffer
	readErr       error
	delay         time.Duration
}

// memSource serves memImages by name and records how they are used.
type memSource struct {
	images map[string]memImage

	opened   atomic.Int64
	closed   atomic.Int64
	inflight atomic.Int64
	peak     atomic.Int64
}

func newMemSource() *memSource {
	return &memSource{images: make(map[string]memImage)}
}

func (s *memSource) add(name string, img memImage) *memSource {
	if img.width == 0 {
		img.width, img.height = img.buf.Len(), 1
	}
	s.images[name] = img

	return s
}

func (s *memSource) Open(_ context.Context, name string) (source.Image, error) {
	img, ok := s.images[name]
	if !ok {
		return nil, &errs.FileOpenError{Path: name, Err: os.ErrNotExist}
	}
	s.opened.Add(1)

	return &memHandle{src: s, img: img}, nil
}

type memHandle struct {
	src  *memSource
	img  memImage
	held int64
}

func (h *memHandle) Dimensions() (int, int) { return h.img.width, h.img.height }

func (h *memHandle) DecodedSize() int64 {
	return int64(h.img.buf.Len() * h.img.buf.Width().Bytes())
}

func (h *memHandle) ReadSamples() (sample.Buffer, error) {
	if h.img.readErr != nil {
		return sample.Buffer{}, h.img.readErr
	}

	h.held = h.DecodedSize()
	now := h.src.inflight.Add(h.held)
	for {
		peak := h.src.peak.Load()
		if now <= peak || h.src.peak.CompareAndSwap(peak, now) {
			break
		}
	}
	if h.img.delay > 0 {
		time.Sleep(h.img.delay)
	}

	return h.img.buf, nil
}

func (h *memHandle) Close() error {
	h.src.inflight.Add(-h.held)
	h.src.closed.Add(1)

	return nil
}
