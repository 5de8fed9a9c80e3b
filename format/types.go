package format

type (
	SampleWidth uint8
	Compression uint16
	Predictor   uint16
)

const (
	Width8  SampleWidth = 8  // Width8 represents 8-bit unsigned samples.
	Width16 SampleWidth = 16 // Width16 represents 16-bit unsigned samples.
)

// TIFF Compression tag values understood by the decoder.
const (
	CompressionNone          Compression = 1     // CompressionNone represents uncompressed strips.
	CompressionLZW           Compression = 5     // CompressionLZW represents TIFF LZW.
	CompressionDeflate       Compression = 8     // CompressionDeflate represents zlib (Adobe code).
	CompressionPackBits      Compression = 32773 // CompressionPackBits represents Macintosh RLE.
	CompressionDeflateLegacy Compression = 32946 // CompressionDeflateLegacy represents the pre-standard zlib code.
	CompressionZstd          Compression = 50000 // CompressionZstd represents Zstandard (libtiff extension).
)

const (
	PredictorNone       Predictor = 1 // PredictorNone represents no prediction.
	PredictorHorizontal Predictor = 2 // PredictorHorizontal represents horizontal differencing.
)

// Bits returns the number of bits in a sample of this width.
func (w SampleWidth) Bits() int {
	return int(w)
}

// Bytes returns the in-memory size of a sample of this width.
func (w SampleWidth) Bytes() int {
	return int(w) / 8
}

// Valid reports whether w is one of the supported widths.
func (w SampleWidth) Valid() bool {
	return w == Width8 || w == Width16
}

func (w SampleWidth) String() string {
	switch w {
	case Width8:
		return "8-bit"
	case Width16:
		return "16-bit"
	default:
		return "Unknown"
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionLZW:
		return "LZW"
	case CompressionDeflate, CompressionDeflateLegacy:
		return "Deflate"
	case CompressionPackBits:
		return "PackBits"
	case CompressionZstd:
		return "Zstd"
	default:
		return "Unknown"
	}
}

func (p Predictor) String() string {
	switch p {
	case PredictorNone:
		return "None"
	case PredictorHorizontal:
		return "Horizontal"
	default:
		return "Unknown"
	}
}
