package tiff

import (
	"fmt"
	"math"

	"github.com/arloliu/bitplane/format"
	"github.com/arloliu/bitplane/internal/pool"
)

// chunk is one strip or tile and where its samples land in the output.
type chunk struct {
	offset    int64
	byteCount int64

	decodedRows int // rows the chunk decompresses to
	rowLen      int // samples per decoded row
	rows        int // rows kept (tiles are cropped at the bottom edge)
	cols        int // samples kept per row (tiles are cropped at the right edge)
	dst         int // output index of the first kept sample
}

func (c chunk) samples() int {
	return c.decodedRows * c.rowLen
}

// samplesPerChunkPixel is the number of samples a pixel contributes to one
// chunk: every channel when chunky, one when planar.
func (d *Decoder) samplesPerChunkPixel() int {
	if d.layout.Planar {
		return 1
	}

	return d.layout.SamplesPerPixel
}

func (d *Decoder) planes() int {
	if d.layout.Planar {
		return d.layout.SamplesPerPixel
	}

	return 1
}

type fieldFunc = func(uint16, ...uint32) ([]uint32, error)

// locations reads the offset and byte count tags and checks them against the
// expected number of chunks and the file size. expected is used for byte
// counts of uncompressed images that omit them.
func (d *Decoder) locations(field fieldFunc, offTag, countTag uint16, n int, expected func(i int) int64) ([]int64, []int64, error) {
	offs, err := field(offTag)
	if err != nil {
		return nil, nil, err
	}
	if len(offs) < n {
		return nil, nil, decodeErr(fmt.Sprintf("tag %d holds %d offsets, need %d", offTag, len(offs), n), nil)
	}

	counts := make([]int64, n)
	if raw, err := field(countTag, 0); err != nil {
		return nil, nil, err
	} else if len(raw) == 1 && raw[0] == 0 && n > 0 {
		if d.layout.Compression != format.CompressionNone {
			return nil, nil, decodeErr(fmt.Sprintf("missing required tag %d", countTag), nil)
		}
		for i := range counts {
			counts[i] = expected(i)
		}
	} else {
		if len(raw) < n {
			return nil, nil, decodeErr(fmt.Sprintf("tag %d holds %d byte counts, need %d", countTag, len(raw), n), nil)
		}
		for i := range counts {
			counts[i] = int64(raw[i])
		}
	}

	offsets := make([]int64, n)
	for i := range offsets {
		offsets[i] = int64(offs[i])
		if offsets[i]+counts[i] > d.size {
			return nil, nil, decodeErr(fmt.Sprintf("chunk %d (%d bytes at offset %d) overruns file of %d bytes", i, counts[i], offsets[i], d.size), nil)
		}
	}

	return offsets, counts, nil
}

func (d *Decoder) planStrips(field fieldFunc) error {
	l := d.layout
	spc := d.samplesPerChunkPixel()
	bps := l.SampleWidth.Bytes()

	rps, err := field(tagRowsPerStrip, uint32(l.Height))
	if err != nil {
		return err
	}
	rowsPerStrip := int(rps[0])
	if rowsPerStrip <= 0 || rowsPerStrip > l.Height {
		rowsPerStrip = l.Height
	}

	perPlane := (l.Height + rowsPerStrip - 1) / rowsPerStrip
	n := perPlane * d.planes()
	rowLen := l.Width * spc
	planeSize := l.Width * l.Height * spc

	rowsOf := func(i int) int {
		row0 := (i % perPlane) * rowsPerStrip
		return min(rowsPerStrip, l.Height-row0)
	}

	offsets, counts, err := d.locations(field, tagStripOffsets, tagStripByteCounts, n, func(i int) int64 {
		return int64(rowsOf(i)) * int64(rowLen) * int64(bps)
	})
	if err != nil {
		return err
	}

	d.chunks = make([]chunk, n)
	for i := range d.chunks {
		plane, strip := i/perPlane, i%perPlane
		rows := rowsOf(i)
		d.chunks[i] = chunk{
			offset:      offsets[i],
			byteCount:   counts[i],
			decodedRows: rows,
			rowLen:      rowLen,
			rows:        rows,
			cols:        rowLen,
			dst:         plane*planeSize + strip*rowsPerStrip*rowLen,
		}
	}

	return nil
}

func (d *Decoder) planTiles(field fieldFunc) error {
	l := d.layout
	spc := d.samplesPerChunkPixel()
	bps := l.SampleWidth.Bytes()

	tw, err := field(tagTileWidth)
	if err != nil {
		return err
	}
	th, err := field(tagTileLength)
	if err != nil {
		return err
	}
	tileW, tileH := int(tw[0]), int(th[0])
	if tileW <= 0 || tileH <= 0 {
		return decodeErr(fmt.Sprintf("invalid tile size %dx%d", tileW, tileH), nil)
	}
	if _, ok := boundedProduct(min(d.maxDecoded, math.MaxInt), tileW, tileH, spc, bps); !ok {
		return decodeErr(fmt.Sprintf("tile size %dx%d exceeds decode limit", tileW, tileH), nil)
	}

	across := (l.Width + tileW - 1) / tileW
	down := (l.Height + tileH - 1) / tileH
	perPlane := across * down
	n := perPlane * d.planes()
	rowLen := tileW * spc
	imageRowLen := l.Width * spc
	planeSize := l.Width * l.Height * spc

	offsets, counts, err := d.locations(field, tagTileOffsets, tagTileByteCounts, n, func(int) int64 {
		return int64(tileH) * int64(rowLen) * int64(bps)
	})
	if err != nil {
		return err
	}

	d.chunks = make([]chunk, n)
	for i := range d.chunks {
		plane, tile := i/perPlane, i%perPlane
		x0 := (tile % across) * tileW
		y0 := (tile / across) * tileH
		d.chunks[i] = chunk{
			offset:      offsets[i],
			byteCount:   counts[i],
			decodedRows: tileH,
			rowLen:      rowLen,
			rows:        min(tileH, l.Height-y0),
			cols:        min(tileW, l.Width-x0) * spc,
			dst:         plane*planeSize + y0*imageRowLen + x0*spc,
		}
	}

	return nil
}

// word is the in-memory type of a decoded sample.
type word interface {
	~uint8 | ~uint16
}

// readChunks decodes every chunk into out. decode converts raw decompressed
// bytes into samples.
func readChunks[T word](d *Decoder, out []T, decode func(dst []T, src []byte)) error {
	bps := d.layout.SampleWidth.Bytes()
	stride := d.samplesPerChunkPixel()
	imageRowLen := d.layout.Width * stride

	var scratch []T
	bb := pool.GetStripBuffer()
	defer pool.PutStripBuffer(bb)

	for i, c := range d.chunks {
		n := c.samples()
		if cap(scratch) < n {
			scratch = make([]T, n)
		}
		scratch = scratch[:n]

		compressed := bb.Resize(int(c.byteCount))
		if err := readAt(d.r, compressed, c.offset); err != nil {
			return d.readErr(fmt.Sprintf("chunk %d", i), err)
		}

		raw, err := d.codec.Decompress(compressed, n*bps)
		if err != nil {
			return decodeErr(fmt.Sprintf("chunk %d: %s decompression", i, d.layout.Compression), err)
		}
		decode(scratch, raw)

		if d.layout.Predictor == format.PredictorHorizontal {
			for r := range c.decodedRows {
				undoHorizontal(scratch[r*c.rowLen:(r+1)*c.rowLen], stride)
			}
		}

		for r := range c.rows {
			dst := c.dst + r*imageRowLen
			copy(out[dst:dst+c.cols], scratch[r*c.rowLen:r*c.rowLen+c.cols])
		}
	}

	return nil
}

// undoHorizontal reverses horizontal differencing on one row; stride is the
// distance between samples of the same channel. Arithmetic wraps modulo the
// sample width.
func undoHorizontal[T word](row []T, stride int) {
	for i := stride; i < len(row); i++ {
		row[i] += row[i-stride]
	}
}
