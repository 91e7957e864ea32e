package display

import (
	"context"
	"errors"
	"testing"

	"github.com/lumenlab/slm-aim/internal/infrastructure/config"
	"github.com/lumenlab/slm-aim/internal/pattern"
)

// ─── Construction ───────────────────────────────────────────────────────────

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		wantErr bool
	}{
		{"valid", 4, 3, false},
		{"single pixel", 1, 1, false},
		{"zero width", 0, 3, true},
		{"zero height", 4, 0, true},
		{"negative", -4, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(config.ScreenConfig{Width: tt.width, Height: tt.height})
			if tt.wantErr {
				if !errors.Is(err, ErrBadGeometry) {
					t.Fatalf("New() error = %v, want ErrBadGeometry", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got, want := len(w.pix), tt.width*tt.height*4; got != want {
				t.Errorf("len(pix) = %d, want %d", got, want)
			}
		})
	}
}

func TestNewStartsOpaqueBlack(t *testing.T) {
	w, err := New(config.ScreenConfig{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < len(w.pix); i += 4 {
		if w.pix[i] != 0 || w.pix[i+1] != 0 || w.pix[i+2] != 0 {
			t.Errorf("pixel %d = (%d, %d, %d), want black", i/4, w.pix[i], w.pix[i+1], w.pix[i+2])
		}
		if w.pix[i+3] != 0xff {
			t.Errorf("pixel %d alpha = %d, want 0xff", i/4, w.pix[i+3])
		}
	}
}

// ─── Presenting ──────────────────────────────────────────────────────────────

func TestPresent(t *testing.T) {
	w, err := New(config.ScreenConfig{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	frame := &pattern.Frame{W: 2, H: 2, Pix: []uint8{10, 20, 30, 40}}
	if err := w.Present(frame); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	want := []byte{
		10, 10, 10, 0xff,
		20, 20, 20, 0xff,
		30, 30, 30, 0xff,
		40, 40, 40, 0xff,
	}
	for i, b := range want {
		if w.pix[i] != b {
			t.Errorf("pix[%d] = %d, want %d", i, w.pix[i], b)
		}
	}
}

func TestPresentRejectsWrongShape(t *testing.T) {
	w, err := New(config.ScreenConfig{Width: 4, Height: 3})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	frame := &pattern.Frame{W: 3, H: 4, Pix: make([]uint8, 12)}
	if err := w.Present(frame); !errors.Is(err, ErrFrameSize) {
		t.Errorf("Present() error = %v, want ErrFrameSize", err)
	}
}

// ─── Loop plumbing ───────────────────────────────────────────────────────────

func TestRunRequiresTick(t *testing.T) {
	w, err := New(config.ScreenConfig{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := w.Run(context.Background(), nil); !errors.Is(err, ErrNoTick) {
		t.Errorf("Run() error = %v, want ErrNoTick", err)
	}
}

func TestLayoutIgnoresOutsideSize(t *testing.T) {
	w, err := New(config.ScreenConfig{Width: 7, Height: 5})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l := &loop{w: w}
	gotW, gotH := l.Layout(1920, 1080)
	if gotW != 7 || gotH != 5 {
		t.Errorf("Layout() = (%d, %d), want (7, 5)", gotW, gotH)
	}
}

func TestExpandGray(t *testing.T) {
	src := []uint8{0, 127, 255}
	dst := make([]byte, 12)
	expandGray(dst, src)

	want := []byte{0, 0, 0, 0xff, 127, 127, 127, 0xff, 255, 255, 255, 0xff}
	for i, b := range want {
		if dst[i] != b {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], b)
		}
	}
}
