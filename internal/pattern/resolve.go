package pattern

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lumenlab/slm-aim/internal/catalog"
	"github.com/lumenlab/slm-aim/internal/fsio"
	"github.com/lumenlab/slm-aim/internal/protocol"
)

// Flatness correction files are named by wavelength:
// flatness_wavelength_<λ>[_factory].<ext>. The factory variant is the
// pristine calibration; merged corrections are written without the suffix.
const (
	flatnessPrefix = "flatness_wavelength_"
	factorySuffix  = "_factory"
)

// Resolver turns selectors and wavelengths into file paths following the
// deployed naming conventions.
type Resolver struct {
	store       fsio.Store
	baseDir     string
	flatnessDir string
	extensions  []string
}

// NewResolver returns a resolver probing extensions (without leading dots)
// in the given order.
func NewResolver(store fsio.Store, baseDir, flatnessDir string, extensions []string) *Resolver {
	return &Resolver{
		store:       store,
		baseDir:     baseDir,
		flatnessDir: flatnessDir,
		extensions:  extensions,
	}
}

// BasePath resolves the file behind a selector. Custom selectors join the
// upload directory without probing; base selectors build the conventional
// filename from the family and each property pair in declared order, then
// probe each configured extension until one exists. Spot selectors are
// synthetic and have no file.
func (r *Resolver) BasePath(sel protocol.Selector) (string, error) {
	switch s := sel.(type) {
	case protocol.Custom:
		return filepath.Join(r.baseDir, catalog.CustomDir, s.Filename), nil
	case protocol.Base:
		var stem strings.Builder
		stem.WriteString(s.Family)
		for _, p := range s.Properties {
			stem.WriteString("_")
			stem.WriteString(p.Name)
			stem.WriteString("_")
			stem.WriteString(p.Value)
		}
		if path, ok := r.probe(r.baseDir, stem.String()); ok {
			return path, nil
		}
		return "", fmt.Errorf("%w %q", ErrPatternNotFound, stem.String())
	case protocol.Spot:
		return "", ErrSpotHasNoFile
	}
	return "", fmt.Errorf("pattern: unhandled selector %T", sel)
}

// FlatnessPath resolves the correction file for a wavelength, probing the
// factory variant before the plain one, each across every configured
// extension in order. First match wins.
func (r *Resolver) FlatnessPath(wavelength uint32) (string, error) {
	stem := fmt.Sprintf("%s%d", flatnessPrefix, wavelength)
	for _, suffix := range []string{factorySuffix, ""} {
		if path, ok := r.probe(r.flatnessDir, stem+suffix); ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w for wavelength %d", ErrFlatnessNotFound, wavelength)
}

// probe returns the first existing "<dir>/<stem>.<ext>" across the
// configured extensions.
func (r *Resolver) probe(dir, stem string) (string, bool) {
	for _, ext := range r.extensions {
		path := filepath.Join(dir, stem+"."+ext)
		if r.store.Exists(path) {
			return path, true
		}
	}
	return "", false
}

// stripFactory rewrites a flatness path to its non-factory filename. Paths
// without the suffix pass through unchanged.
func stripFactory(path string) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stem = strings.TrimSuffix(stem, factorySuffix)
	return filepath.Join(dir, stem+ext)
}
