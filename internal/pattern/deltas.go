package pattern

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Correction deltas travel as base64-encoded little-endian float32 samples,
// row-major over a declared (rows, cols) shape. No compression: four bytes
// per sample, so the round trip is bit-exact.

// DecodeDeltas parses one delta payload into a phase array of the declared
// shape.
func DecodeDeltas(b64 string, rows, cols int) (*mat.Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: shape (%d, %d)", ErrBadDeltas, rows, cols)
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDeltas, err)
	}
	if len(raw) != rows*cols*4 {
		return nil, fmt.Errorf("%w: %d bytes for shape (%d, %d), want %d",
			ErrBadDeltas, len(raw), rows, cols, rows*cols*4)
	}
	samples := make([]float64, rows*cols)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = float64(math.Float32frombits(bits))
	}
	return mat.NewDense(rows, cols, samples), nil
}

// EncodeDeltas renders m in the wire format DecodeDeltas parses. Samples are
// narrowed to float32, which is lossless for values that started as float32.
func EncodeDeltas(m *mat.Dense) string {
	rows, cols := m.Dims()
	raw := make([]byte, rows*cols*4)
	i := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			bits := math.Float32bits(float32(m.At(r, c)))
			binary.LittleEndian.PutUint32(raw[i*4:], bits)
			i++
		}
	}
	return base64.StdEncoding.EncodeToString(raw)
}
