package pattern

import (
	"errors"
	"testing"

	"github.com/lumenlab/slm-aim/internal/protocol"
)

func testResolver(t *testing.T, extensions []string, paths ...string) *Resolver {
	t.Helper()
	files := make(map[string][]byte, len(paths))
	for _, p := range paths {
		files[p] = []byte("x")
	}
	return NewResolver(seedStore(t, files), "patterns", "flatness", extensions)
}

// ─── Base Patterns ───────────────────────────────────────────────────────────

func TestBasePath(t *testing.T) {
	tests := []struct {
		name    string
		sel     protocol.Selector
		exts    []string
		files   []string
		want    string
		wantErr error
	}{
		{
			name:  "custom joins without probing",
			sel:   protocol.Custom{Filename: "up.png"},
			exts:  []string{"png"},
			files: nil,
			want:  "patterns/custom_patterns/up.png",
		},
		{
			name:  "single property",
			sel:   protocol.Base{Family: "gauss", Properties: []protocol.Property{{Name: "sigma", Value: "2"}}},
			exts:  []string{"png"},
			files: []string{"patterns/gauss_sigma_2.png"},
			want:  "patterns/gauss_sigma_2.png",
		},
		{
			name: "properties keep declared order",
			sel: protocol.Base{Family: "gauss", Properties: []protocol.Property{
				{Name: "zeta", Value: "2"},
				{Name: "alpha", Value: "1"},
			}},
			exts:  []string{"png"},
			files: []string{"patterns/gauss_zeta_2_alpha_1.png"},
			want:  "patterns/gauss_zeta_2_alpha_1.png",
		},
		{
			name:  "bare family",
			sel:   protocol.Base{Family: "airy"},
			exts:  []string{"png"},
			files: []string{"patterns/airy.png"},
			want:  "patterns/airy.png",
		},
		{
			name:  "extension order decides",
			sel:   protocol.Base{Family: "airy"},
			exts:  []string{"bmp", "png"},
			files: []string{"patterns/airy.png", "patterns/airy.bmp"},
			want:  "patterns/airy.bmp",
		},
		{
			name:    "no file",
			sel:     protocol.Base{Family: "missing"},
			exts:    []string{"png", "bmp"},
			files:   nil,
			wantErr: ErrPatternNotFound,
		},
		{
			name:    "spot is synthetic",
			sel:     protocol.Spot{Diameter: 5},
			exts:    []string{"png"},
			files:   nil,
			wantErr: ErrSpotHasNoFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testResolver(t, tt.exts, tt.files...)
			got, err := r.BasePath(tt.sel)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("BasePath() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BasePath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("BasePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ─── Flatness Corrections ────────────────────────────────────────────────────

func TestFlatnessPath(t *testing.T) {
	tests := []struct {
		name    string
		exts    []string
		files   []string
		want    string
		wantErr error
	}{
		{
			name:  "factory preferred over plain",
			exts:  []string{"png"},
			files: []string{"flatness/flatness_wavelength_488.png", "flatness/flatness_wavelength_488_factory.png"},
			want:  "flatness/flatness_wavelength_488_factory.png",
		},
		{
			name: "factory wins across extensions",
			exts: []string{"bmp", "png"},
			files: []string{
				"flatness/flatness_wavelength_488.bmp",
				"flatness/flatness_wavelength_488_factory.png",
			},
			want: "flatness/flatness_wavelength_488_factory.png",
		},
		{
			name:  "extension order within variant",
			exts:  []string{"bmp", "png"},
			files: []string{"flatness/flatness_wavelength_488_factory.png", "flatness/flatness_wavelength_488_factory.bmp"},
			want:  "flatness/flatness_wavelength_488_factory.bmp",
		},
		{
			name:  "plain fallback",
			exts:  []string{"png"},
			files: []string{"flatness/flatness_wavelength_488.png"},
			want:  "flatness/flatness_wavelength_488.png",
		},
		{
			name:    "no file",
			exts:    []string{"png"},
			files:   []string{"flatness/flatness_wavelength_650.png"},
			wantErr: ErrFlatnessNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testResolver(t, tt.exts, tt.files...)
			got, err := r.FlatnessPath(488)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FlatnessPath() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FlatnessPath() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FlatnessPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripFactory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"flatness/flatness_wavelength_488_factory.png", "flatness/flatness_wavelength_488.png"},
		{"flatness/flatness_wavelength_488.png", "flatness/flatness_wavelength_488.png"},
		{"deep/dir/flatness_wavelength_650_factory.bmp", "deep/dir/flatness_wavelength_650.bmp"},
		{"bare_factory", "bare"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := stripFactory(tt.in); got != tt.want {
				t.Errorf("stripFactory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
