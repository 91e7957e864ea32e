package pattern

import "errors"

// Resolution and raster errors. The dispatcher logs these and drops the
// offending message; none of them change presented state.
var (
	// ErrPatternNotFound is returned when no configured extension yields an
	// existing file for a base pattern selector.
	ErrPatternNotFound = errors.New("pattern: no file for base pattern")

	// ErrFlatnessNotFound is returned when no flatness correction file
	// exists for a wavelength.
	ErrFlatnessNotFound = errors.New("pattern: no flatness correction file")

	// ErrSpotHasNoFile is returned when a file path is requested for the
	// synthetic spot selector.
	ErrSpotHasNoFile = errors.New("pattern: spot patterns have no file")

	// ErrBadDeltas is returned when a correction delta payload cannot be
	// decoded against its declared shape.
	ErrBadDeltas = errors.New("pattern: bad correction deltas")

	// ErrShapeMismatch is returned when a correction delta's shape differs
	// from the stored flatness raster.
	ErrShapeMismatch = errors.New("pattern: shape mismatch")

	// ErrUnsupportedFormat is returned for file extensions outside the
	// png/bmp/tiff codecs.
	ErrUnsupportedFormat = errors.New("pattern: unsupported image format")

	// ErrNoCalibration is returned when the calibration table is empty.
	ErrNoCalibration = errors.New("pattern: no calibration scale for wavelength")
)
