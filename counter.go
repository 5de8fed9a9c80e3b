package bitplane

import (
	"context"
	"fmt"
	"runtime"

	"github.com/arloliu/bitplane/histogram"
	"github.com/arloliu/bitplane/internal/hash"
	"github.com/arloliu/bitplane/internal/options"
	"github.com/arloliu/bitplane/source"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Counter computes bit-plane histograms over sets of images.
//
// A Counter is safe for concurrent use; every Count call has its own
// accumulator.
type Counter struct {
	src      source.Source
	workers  int
	memLimit int64
	digests  bool
	logger   *Logger
}

// Option configures a Counter.
type Option = options.Option[*Counter]

// WithSource sets where inputs are opened from. The default opens local files.
func WithSource(src source.Source) Option {
	return options.New(func(c *Counter) error {
		if src == nil {
			return fmt.Errorf("source is nil")
		}
		c.src = src

		return nil
	})
}

// WithWorkers sets how many inputs are processed at once. Zero or a negative
// value selects the default, runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return options.NoError(func(c *Counter) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		c.workers = n
	})
}

// WithMemoryLimit bounds the decoded sample bytes held by all workers at
// once. An image larger than the limit is processed alone.
func WithMemoryLimit(bytes int64) Option {
	return options.New(func(c *Counter) error {
		if bytes <= 0 {
			return fmt.Errorf("memory limit must be positive, got %d", bytes)
		}
		c.memLimit = bytes

		return nil
	})
}

// WithDigests enables or disables per-file sample digests. Enabled by default.
func WithDigests(enabled bool) Option {
	return options.NoError(func(c *Counter) {
		c.digests = enabled
	})
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *Logger) Option {
	return options.NoError(func(c *Counter) {
		if l == nil {
			l = NoopLogger()
		}
		c.logger = l
	})
}

// NewCounter creates a Counter.
func NewCounter(opts ...Option) (*Counter, error) {
	c := &Counter{
		workers: runtime.GOMAXPROCS(0),
		digests: true,
		logger:  NoopLogger(),
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	if c.src == nil {
		local, err := source.NewLocal()
		if err != nil {
			return nil, err
		}
		c.src = local
	}

	return c, nil
}

// Count reads every input and returns the combined histogram.
//
// Inputs are processed concurrently and merged in completion order; the
// result does not depend on either order. The first failure cancels the
// remaining work and Count returns that error with a nil Result. Duplicate
// paths are counted once per occurrence. An empty list yields all-zero counts.
func (c *Counter) Count(ctx context.Context, paths []string) (*Result, error) {
	acc := histogram.NewAccumulator()
	files := make([]FileStats, len(paths))

	var mem *semaphore.Weighted
	if c.memLimit > 0 {
		mem = semaphore.NewWeighted(c.memLimit)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			stats, local, err := c.countFile(gctx, path, mem)
			c.logger.LogFile(gctx, path, stats.Width, stats.Height, err)
			if err != nil {
				return err
			}

			acc.Merge(&local)
			files[i] = stats

			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		// a canceled parent may have stopped the loop before any task failed
		err = ctx.Err()
	}
	c.logger.LogRun(ctx, len(paths), err)
	if err != nil {
		return nil, err
	}

	h := acc.Snapshot()

	return &Result{
		Zeros:   h.Zeros(),
		Ones:    h.Ones(),
		Files:   files,
		digests: c.digests,
	}, nil
}

// countFile builds the local histogram of one input.
func (c *Counter) countFile(ctx context.Context, path string, mem *semaphore.Weighted) (FileStats, histogram.Histogram, error) {
	stats := FileStats{Path: path}
	var local histogram.Histogram

	if err := ctx.Err(); err != nil {
		return stats, local, err
	}

	img, err := c.src.Open(ctx, path)
	if err != nil {
		return stats, local, classify(path, err)
	}

	stats.Width, stats.Height = img.Dimensions()

	release, err := c.admit(ctx, mem, img.DecodedSize())
	if err != nil {
		_ = img.Close()
		return stats, local, err
	}
	defer release()
	defer img.Close()

	buf, err := img.ReadSamples()
	if err != nil {
		return stats, local, classify(path, err)
	}

	histogram.Accumulate(&local, buf)

	stats.SampleWidth = buf.Width()
	stats.Samples = buf.Len()
	if c.digests {
		stats.Digest = hash.Samples(buf)
	}

	return stats, local, nil
}

// admit reserves size bytes of the memory budget, capped at the whole budget.
func (c *Counter) admit(ctx context.Context, mem *semaphore.Weighted, size int64) (func(), error) {
	if mem == nil || size <= 0 {
		return func() {}, nil
	}

	weight := min(size, c.memLimit)
	if err := mem.Acquire(ctx, weight); err != nil {
		return nil, err
	}

	return func() { mem.Release(weight) }, nil
}
