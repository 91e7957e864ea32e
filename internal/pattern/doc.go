// Package pattern computes the phase frames presented on the modulator.
//
// This package manages:
//   - Resolving selectors to pattern files on disk
//   - Loading and caching decoded phase rasters
//   - The compute pipeline from device state to quantized frame
//   - Merging calibration deltas into flatness corrections
//
// # Pipeline
//
// Compute assembles a float64 phase field and quantizes it at the end:
//
//	base term (file or synthetic spot)
//	  + flatness correction (per wavelength, optional)
//	  + blaze grating (always)
//	  + fresnel lens (when power ≠ 0)
//	  → wrap into [0, 2π) → scale → 8-bit frame
//
// Fields are row-major matrices with rows = frame height and cols = frame
// width, so element (r, c) is pixel (x=c, y=r). All spatial terms are
// evaluated at integer pixel coordinates.
//
// # Key Types
//
//   - Engine: the compute pipeline and correction merge
//   - Cache: decoded rasters keyed by path, first access wins
//   - Resolver: selector and wavelength to file path resolution
//   - Frame: one quantized pattern, ready for presentation
//
// # Files
//
// Base patterns live directly in the base directory named
// family_prop_value[_prop_value...].ext; uploads live under its
// custom_patterns subdirectory and are addressed by exact filename.
// Flatness corrections are named flatness_wavelength_<nm>, probed with the
// _factory suffix before the plain name; merged corrections are written
// back under the plain name, leaving the factory raster untouched.
// Supported raster formats are png, bmp and tiff.
//
// # Thread Safety
//
// Nothing here is safe for concurrent use. The command dispatcher is the
// sole owner of the engine and its cache; all computation happens on its
// loop.
package pattern
