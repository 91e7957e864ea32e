package pattern

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/mat"
)

// Phase rasters are stored as 8-bit grayscale images. A sample s decodes to
// phase s·(2π/256); a phase e encodes to wrap(e)·(255/2π). The 256/255
// asymmetry is fixed by the deployed file format.
const (
	twoPi       = 2 * math.Pi
	decodeScale = twoPi / 256
	encodeScale = 255 / twoPi
)

// decodeGrayPhase decodes an 8-bit raster (PNG, BMP or TIFF by content) into
// a phase array at its native shape, rows = image height, cols = width.
func decodeGrayPhase(data []byte) (*mat.Dense, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("pattern: decode raster: %w", err)
	}
	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()
	m := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+c, b.Min.Y+r)).(color.Gray)
			m.Set(r, c, float64(g.Y)*decodeScale)
		}
	}
	return m, nil
}

// resample maps src into a (rows, cols) array by same-index lookup; indices
// outside src read phase 0.
func resample(src *mat.Dense, rows, cols int) *mat.Dense {
	srcRows, srcCols := src.Dims()
	dst := mat.NewDense(rows, cols, nil)
	for r := 0; r < rows && r < srcRows; r++ {
		for c := 0; c < cols && c < srcCols; c++ {
			dst.Set(r, c, src.At(r, c))
		}
	}
	return dst
}

// grayFromPhase wraps every phase sample into [0, 2π) and renders it to an
// 8-bit grayscale image.
func grayFromPhase(m *mat.Dense) *image.Gray {
	rows, cols := m.Dims()
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			img.SetGray(c, r, color.Gray{Y: uint8(wrapPhase(m.At(r, c)) * encodeScale)})
		}
	}
	return img
}

// encodeImage serialises img in the format implied by path's extension.
func encodeImage(img image.Image, path string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "png":
		err = png.Encode(&buf, img)
	case "bmp":
		err = bmp.Encode(&buf, img)
	case "tif", "tiff":
		err = tiff.Encode(&buf, img, nil)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("pattern: encode %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// wrapPhase reduces v modulo 2π into [0, 2π); negative phases wrap up, they
// are never clamped.
func wrapPhase(v float64) float64 {
	v = math.Mod(v, twoPi)
	if v < 0 {
		v += twoPi
	}
	return v
}
