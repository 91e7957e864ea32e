package pattern

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/lumenlab/slm-aim/internal/fsio"
	"github.com/lumenlab/slm-aim/internal/protocol"
)

// Optical constants of the deployed modulator.
const (
	// blazeReferenceNM is the wavelength the blaze excursion is calibrated
	// against.
	blazeReferenceNM = 488.0

	// blazePhiMax is the maximum blaze phase excursion in radians.
	blazePhiMax = 80.0

	// blazeOffsetFactor scales the constant term of the blaze ramp.
	blazeOffsetFactor = 1.1

	// pixelPitchNM is the physical pixel pitch of the modulator in
	// nanometres.
	pixelPitchNM = 12500.0

	// debugFilename receives the quantized frame when debug saving is on.
	debugFilename = "computed_pattern.png"
)

// Frame is one quantized pattern ready for presentation: 8-bit samples,
// row-major, rows = H, cols = W.
type Frame struct {
	W   int
	H   int
	Pix []uint8
}

// Config carries the frame geometry, file locations, probe extensions and
// calibration table the engine computes against.
type Config struct {
	// Width and Height are the frame dimensions in pixels.
	Width  int
	Height int

	// BaseDir holds base pattern files; its custom_patterns subdirectory
	// holds uploads.
	BaseDir string

	// FlatnessDir holds the per-wavelength correction rasters.
	FlatnessDir string

	// Extensions are probed in order when resolving files, without leading
	// dots.
	Extensions []string

	// Wavelengths and ScaleFactors form the calibration table, paired by
	// index.
	Wavelengths  []uint32
	ScaleFactors []float64

	// AddFlatness enables the per-wavelength correction term.
	AddFlatness bool

	// DebugSave writes every computed frame to computed_pattern.png.
	DebugSave bool
}

// Engine computes quantized frames from device state. It owns no state of
// its own beyond the cache it shares with correction merges; results are
// deterministic given configuration, cache contents and filesystem.
type Engine struct {
	cfg      Config
	store    fsio.Store
	cache    *Cache
	resolver *Resolver
}

// NewEngine returns an engine over the given store and cache.
func NewEngine(cfg Config, store fsio.Store, cache *Cache) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    store,
		cache:    cache,
		resolver: NewResolver(store, cfg.BaseDir, cfg.FlatnessDir, cfg.Extensions),
	}
}

// Compute produces the frame for one device state: base term, optional
// flatness correction, blaze grating, optional fresnel lens, then
// quantization through the per-wavelength calibration scale.
func (e *Engine) Compute(wavelength uint32, fresnel int, sel protocol.Selector) (*Frame, error) {
	rows, cols := e.cfg.Height, e.cfg.Width
	field := mat.NewDense(rows, cols, nil)

	switch s := sel.(type) {
	case protocol.Spot:
		synthesizeSpot(field, s)
	default:
		path, err := e.resolver.BasePath(sel)
		if err != nil {
			return nil, err
		}
		src, err := e.cache.GetOrLoad(path, &Shape{Rows: rows, Cols: cols})
		if err != nil {
			return nil, err
		}
		field.Copy(src)
	}

	if e.cfg.AddFlatness {
		path, err := e.resolver.FlatnessPath(wavelength)
		if err != nil {
			return nil, err
		}
		corr, err := e.cache.GetOrLoad(path, &Shape{Rows: rows, Cols: cols})
		if err != nil {
			return nil, err
		}
		// A correction merged at native shape stays cached at that shape.
		if cr, cc := corr.Dims(); cr != rows || cc != cols {
			return nil, fmt.Errorf("%w: frame (%d, %d), flatness %s (%d, %d)", ErrShapeMismatch, rows, cols, path, cr, cc)
		}
		field.Add(field, corr)
	}

	addBlaze(field, wavelength)
	if fresnel != 0 {
		addFresnel(field, wavelength, fresnel)
	}

	scale, err := e.scaleFor(wavelength)
	if err != nil {
		return nil, err
	}
	frame := quantize(field, scale)

	if e.cfg.DebugSave {
		if err := e.saveDebug(frame); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// MergeCorrection adds delta to the stored flatness raster for wavelength
// and persists the sum under the non-factory filename, updating the cache
// entry for that path in the same step. The delta must match the stored
// raster's shape. Prior cache entries are left untouched on failure.
func (e *Engine) MergeCorrection(wavelength uint32, delta *mat.Dense) error {
	path, err := e.resolver.FlatnessPath(wavelength)
	if err != nil {
		return err
	}
	flat, err := e.cache.GetOrLoad(path, nil)
	if err != nil {
		return err
	}

	fr, fc := flat.Dims()
	dr, dc := delta.Dims()
	if fr != dr || fc != dc {
		return fmt.Errorf("%w: flatness (%d, %d), deltas (%d, %d)", ErrShapeMismatch, fr, fc, dr, dc)
	}

	merged := mat.NewDense(fr, fc, nil)
	merged.Add(flat, delta)

	target := stripFactory(path)
	data, err := encodeImage(grayFromPhase(merged), target)
	if err != nil {
		return err
	}
	if err := e.store.Write(target, data); err != nil {
		return fmt.Errorf("pattern: save %s: %w", target, err)
	}
	e.cache.Put(target, merged)
	return nil
}

// synthesizeSpot renders the two-level field: the inner gradient inside the
// disk, the background gradient outside, both evaluated at integer pixel
// coordinates.
func synthesizeSpot(field *mat.Dense, s protocol.Spot) {
	radiusSq := (s.Diameter / 2) * (s.Diameter / 2)
	px, py := s.Position[0], s.Position[1]
	rows, _ := field.Dims()
	for r := 0; r < rows; r++ {
		y := float64(r)
		row := field.RawRowView(r)
		for c := range row {
			x := float64(c)
			dx, dy := x-px, y-py
			if dx*dx+dy*dy < radiusSq {
				row[c] = s.Gradient[0]*x + s.Gradient[1]*y
			} else {
				row[c] = s.BackgroundGradient[0]*x + s.BackgroundGradient[1]*y
			}
		}
	}
}

// addBlaze adds the grating that steers the zero diffraction order: a ramp
// along x with slope proportional to -1/wavelength plus a constant offset.
func addBlaze(field *mat.Dense, wavelength uint32) {
	rows, cols := field.Dims()
	k := twoPi * blazeReferenceNM / float64(wavelength)
	slope := -blazePhiMax * k / float64(cols)
	offset := blazePhiMax * k * blazeOffsetFactor

	ramp := make([]float64, cols)
	for c := range ramp {
		ramp[c] = slope*float64(c) + offset
	}
	for r := 0; r < rows; r++ {
		row := field.RawRowView(r)
		for c, v := range ramp {
			row[c] += v
		}
	}
}

// addFresnel adds the thin-lens quadratic profile centered on the frame,
// scaled by power/wavelength and the physical pixel pitch.
func addFresnel(field *mat.Dense, wavelength uint32, power int) {
	rows, cols := field.Dims()
	cx, cy := float64(cols/2), float64(rows/2)
	pre := pixelPitchNM * pixelPitchNM * math.Pi * (float64(power) * 1e-9) / float64(wavelength)
	for r := 0; r < rows; r++ {
		dy := float64(r) - cy
		row := field.RawRowView(r)
		for c := range row {
			dx := float64(c) - cx
			row[c] += pre * (dx*dx + dy*dy)
		}
	}
}

// scaleFor returns the calibration scale for a wavelength: the exact table
// entry when present, otherwise the entry closest by absolute distance with
// ties won by the earlier index.
func (e *Engine) scaleFor(wavelength uint32) (float64, error) {
	if len(e.cfg.Wavelengths) == 0 {
		return 0, fmt.Errorf("%w %d", ErrNoCalibration, wavelength)
	}
	best, bestDist := 0, int64(math.MaxInt64)
	for i, w := range e.cfg.Wavelengths {
		if w == wavelength {
			return e.cfg.ScaleFactors[i], nil
		}
		dist := int64(w) - int64(wavelength)
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return e.cfg.ScaleFactors[best], nil
}

// quantize wraps every phase into [0, 2π) and truncates onto [0, scale]
// 8-bit levels.
func quantize(field *mat.Dense, scale float64) *Frame {
	rows, cols := field.Dims()
	f := &Frame{W: cols, H: rows, Pix: make([]uint8, rows*cols)}
	i := 0
	for r := 0; r < rows; r++ {
		row := field.RawRowView(r)
		for _, v := range row {
			q := wrapPhase(v) / twoPi * scale
			if q > 255 {
				q = 255
			}
			f.Pix[i] = uint8(q)
			i++
		}
	}
	return f
}

func (e *Engine) saveDebug(f *Frame) error {
	img := image.NewGray(image.Rect(0, 0, f.W, f.H))
	copy(img.Pix, f.Pix)
	data, err := encodeImage(img, debugFilename)
	if err != nil {
		return err
	}
	if err := e.store.Write(debugFilename, data); err != nil {
		return fmt.Errorf("pattern: save %s: %w", debugFilename, err)
	}
	return nil
}
