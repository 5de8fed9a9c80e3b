// Package bitplane counts, for each bit position, how many image samples
// have that bit set and how many have it clear, across a set of TIFF images.
//
// Every channel of every pixel is one sample. Samples are 8 or 16 bits wide;
// bit i of a sample is tallied in slot 15-i, so a 16-bit sample covers all 16
// slots while an 8-bit sample covers slots 8 through 15. Images are decoded in
// parallel and their counts merged into one result. Any failure aborts the
// whole run and no partial counts are reported.
//
// # Basic Usage
//
//	res, err := bitplane.Count(ctx, []string{"a.tif", "b.tif"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println("1s:", res.Ones)
//	fmt.Println("0s:", res.Zeros)
//
// Objects in S3-compatible storage are read by routing s3:// names to a
// Minio source:
//
//	client, _ := source.NewMinioClient("minio.local:9000", true)
//	s3, _ := source.NewMinio(client)
//	local, _ := source.NewLocal()
//	counter, _ := bitplane.NewCounter(
//	    bitplane.WithSource(source.NewMux(local).Handle(source.S3Scheme, s3)),
//	    bitplane.WithMemoryLimit(2<<30),
//	)
//	res, err := counter.Count(ctx, []string{"s3://scans/a.tif", "local/b.tif"})
//
// # Package Structure
//
// This package ties together the tiff decoder, the sample sources and the
// histogram accumulator. Use those packages directly for finer control.
package bitplane

import (
	"context"
)

// Count computes the histogram of the images at paths with a Counter built
// from opts.
func Count(ctx context.Context, paths []string, opts ...Option) (*Result, error) {
	c, err := NewCounter(opts...)
	if err != nil {
		return nil, err
	}

	return c.Count(ctx, paths)
}
