package tiff

import (
	"bytes"
	"sort"
	"testing"

	"github.com/arloliu/bitplane/endian"
	"github.com/arloliu/bitplane/format"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

// field is one IFD entry written by a fixture.
type field struct {
	tag    uint16
	typ    uint16
	values []uint32
}

// fixture describes a TIFF file to synthesize. samples are given in output
// order: pixel-interleaved for chunky images, plane after plane for planar ones.
type fixture struct {
	engine       endian.EndianEngine
	width        int
	height       int
	spp          int
	bits         int
	compression  format.Compression
	predictor    bool
	planar       bool
	rowsPerStrip int
	tileW, tileH int
	samples      []uint16

	// mutate adjusts the field list before it is written.
	mutate func([]field) []field
}

func (f fixture) withDefaults() fixture {
	if f.engine == nil {
		f.engine = endian.GetLittleEndianEngine()
	}
	if f.spp == 0 {
		f.spp = 1
	}
	if f.bits == 0 {
		f.bits = 8
	}
	if f.compression == 0 {
		f.compression = format.CompressionNone
	}
	if f.samples == nil {
		f.samples = make([]uint16, f.width*f.height*f.spp)
		for i := range f.samples {
			f.samples[i] = uint16(i*2654435761>>7) & uint16(1<<f.bits-1)
		}
	}

	return f
}

// chunks returns the sample blocks of every strip or tile, before prediction
// and compression, padded with zeros at tile edges.
func (f fixture) chunks() [][]uint16 {
	spc, planes := f.spp, 1
	if f.planar {
		spc, planes = 1, f.spp
	}
	planeSize := f.width * f.height * spc
	rowLen := f.width * spc

	var out [][]uint16
	for p := range planes {
		plane := f.samples[p*planeSize : (p+1)*planeSize]

		if f.tileW > 0 {
			for y0 := 0; y0 < f.height; y0 += f.tileH {
				for x0 := 0; x0 < f.width; x0 += f.tileW {
					tile := make([]uint16, f.tileW*f.tileH*spc)
					for r := 0; r < f.tileH && y0+r < f.height; r++ {
						for c := 0; c < f.tileW && x0+c < f.width; c++ {
							for s := range spc {
								tile[(r*f.tileW+c)*spc+s] = plane[(y0+r)*rowLen+(x0+c)*spc+s]
							}
						}
					}
					out = append(out, tile)
				}
			}

			continue
		}

		rps := f.rowsPerStrip
		if rps == 0 {
			rps = f.height
		}
		for y0 := 0; y0 < f.height; y0 += rps {
			rows := min(rps, f.height-y0)
			out = append(out, append([]uint16(nil), plane[y0*rowLen:(y0+rows)*rowLen]...))
		}
	}

	return out
}

func (f fixture) encodeChunk(t testing.TB, block []uint16) []byte {
	t.Helper()

	spc := f.spp
	if f.planar {
		spc = 1
	}
	rowLen := f.width * spc
	if f.tileW > 0 {
		rowLen = f.tileW * spc
	}

	if f.predictor {
		mask := uint16(1<<f.bits - 1)
		for r := 0; r*rowLen < len(block); r++ {
			row := block[r*rowLen : (r+1)*rowLen]
			for i := len(row) - 1; i >= spc; i-- {
				row[i] = (row[i] - row[i-spc]) & mask
			}
		}
	}

	var raw []byte
	for _, v := range block {
		if f.bits == 16 {
			raw = f.engine.AppendUint16(raw, v)
		} else {
			raw = append(raw, byte(v))
		}
	}

	switch f.compression {
	case format.CompressionDeflate, format.CompressionDeflateLegacy:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		_, err := w.Write(raw)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		return buf.Bytes()
	case format.CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		defer enc.Close()

		return enc.EncodeAll(raw, nil)
	case format.CompressionPackBits:
		return packBits(raw)
	default:
		return raw
	}
}

// packBits encodes runs of three or more equal bytes as repeats and
// everything else as literals.
func packBits(src []byte) []byte {
	var out []byte
	for i := 0; i < len(src); {
		run := 1
		for i+run < len(src) && src[i+run] == src[i] && run < 128 {
			run++
		}
		if run >= 3 {
			out = append(out, byte(int8(1-run)), src[i])
			i += run

			continue
		}

		end := i + 1
		for end < len(src) && end-i < 128 {
			if end+2 < len(src) && src[end] == src[end+1] && src[end] == src[end+2] {
				break
			}
			end++
		}
		out = append(out, byte(end-i-1))
		out = append(out, src[i:end]...)
		i = end
	}

	return out
}

func (f fixture) build(t testing.TB) []byte {
	t.Helper()
	f = f.withDefaults()
	e := f.engine

	file := []byte(endian.Mark(e))
	file = e.AppendUint16(file, classicMagic)
	file = e.AppendUint32(file, 0) // patched below

	var offsets, counts []uint32
	for _, block := range f.chunks() {
		data := f.encodeChunk(t, block)
		offsets = append(offsets, uint32(len(file)))
		counts = append(counts, uint32(len(data)))
		file = append(file, data...)
	}

	bits := make([]uint32, f.spp)
	for i := range bits {
		bits[i] = uint32(f.bits)
	}

	fields := []field{
		{tagImageWidth, typeLong, []uint32{uint32(f.width)}},
		{tagImageLength, typeShort, []uint32{uint32(f.height)}},
		{tagBitsPerSample, typeShort, bits},
		{tagCompression, typeShort, []uint32{uint32(f.compression)}},
		{tagPhotometric, typeShort, []uint32{1}},
		{tagSamplesPerPixel, typeShort, []uint32{uint32(f.spp)}},
	}
	if f.planar {
		fields = append(fields, field{tagPlanarConfig, typeShort, []uint32{planarPlanar}})
	}
	if f.predictor {
		fields = append(fields, field{tagPredictor, typeShort, []uint32{uint32(format.PredictorHorizontal)}})
	}
	if f.tileW > 0 {
		fields = append(fields,
			field{tagTileWidth, typeShort, []uint32{uint32(f.tileW)}},
			field{tagTileLength, typeShort, []uint32{uint32(f.tileH)}},
			field{tagTileOffsets, typeLong, offsets},
			field{tagTileByteCounts, typeLong, counts},
		)
	} else {
		rps := f.rowsPerStrip
		if rps == 0 {
			rps = f.height
		}
		fields = append(fields,
			field{tagRowsPerStrip, typeLong, []uint32{uint32(rps)}},
			field{tagStripOffsets, typeLong, offsets},
			field{tagStripByteCounts, typeLong, counts},
		)
	}
	if f.mutate != nil {
		fields = f.mutate(fields)
	}

	return appendIFD(e, file, fields)
}

// appendIFD writes fields as the first directory of file.
func appendIFD(e endian.EndianEngine, file []byte, fields []field) []byte {
	sort.Slice(fields, func(i, j int) bool { return fields[i].tag < fields[j].tag })

	ifdOff := uint32(len(file))
	e.PutUint32(file[4:8], ifdOff)

	extraOff := ifdOff + 2 + uint32(len(fields))*entrySize + 4
	var extra []byte

	file = e.AppendUint16(file, uint16(len(fields)))
	for _, fd := range fields {
		var payload []byte
		for _, v := range fd.values {
			switch fd.typ {
			case typeByte:
				payload = append(payload, byte(v))
			case typeShort:
				payload = e.AppendUint16(payload, uint16(v))
			default:
				payload = e.AppendUint32(payload, v)
			}
		}

		file = e.AppendUint16(file, fd.tag)
		file = e.AppendUint16(file, fd.typ)
		file = e.AppendUint32(file, uint32(len(fd.values)))
		if len(payload) <= 4 {
			var inline [4]byte
			copy(inline[:], payload)
			file = append(file, inline[:]...)
		} else {
			file = e.AppendUint32(file, extraOff+uint32(len(extra)))
			extra = append(extra, payload...)
		}
	}
	file = e.AppendUint32(file, 0) // no next directory

	return append(file, extra...)
}

func withField(tag, typ uint16, values ...uint32) func([]field) []field {
	return func(fields []field) []field {
		for i := range fields {
			if fields[i].tag == tag {
				fields[i] = field{tag, typ, values}
				return fields
			}
		}

		return append(fields, field{tag, typ, values})
	}
}

func withoutField(tag uint16) func([]field) []field {
	return func(fields []field) []field {
		out := fields[:0]
		for _, fd := range fields {
			if fd.tag != tag {
				out = append(out, fd)
			}
		}

		return out
	}
}

func withAll(mutations ...func([]field) []field) func([]field) []field {
	return func(fields []field) []field {
		for _, m := range mutations {
			fields = m(fields)
		}

		return fields
	}
}
