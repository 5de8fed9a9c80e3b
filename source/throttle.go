package source

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// throttledReaderAt waits on a shared limiter before every read. Reads larger
// than the limiter burst wait in burst-sized steps.
type throttledReaderAt struct {
	ctx     context.Context
	r       io.ReaderAt
	limiter *rate.Limiter
}

func (t *throttledReaderAt) ReadAt(p []byte, off int64) (int, error) {
	for rest := len(p); rest > 0; {
		n := min(rest, t.limiter.Burst())
		if err := t.limiter.WaitN(t.ctx, n); err != nil {
			return 0, err
		}
		rest -= n
	}

	return t.r.ReadAt(p, off)
}
