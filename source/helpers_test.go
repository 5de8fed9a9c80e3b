package source

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	xtiff "golang.org/x/image/tiff"
)

// grayTIFF encodes a w x h 8-bit grayscale image whose samples count up from
// zero, and returns the file contents with the expected samples.
func grayTIFF(t *testing.T, w, h int) ([]byte, []uint8) {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, w, h))
	want := make([]uint8, 0, w*h)
	for y := range h {
		for x := range w {
			v := uint8(y*w + x)
			img.SetGray(x, y, color.Gray{Y: v})
			want = append(want, v)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, xtiff.Encode(&buf, img, &xtiff.Options{Compression: xtiff.Deflate}))

	return buf.Bytes(), want
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}
