package display

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/lumenlab/slm-aim/internal/infrastructure/config"
	"github.com/lumenlab/slm-aim/internal/pattern"
)

var (
	// ErrBadGeometry indicates a window dimension smaller than one pixel.
	ErrBadGeometry = errors.New("display: width and height must be positive")

	// ErrFrameSize indicates a presented frame whose shape does not match
	// the window geometry.
	ErrFrameSize = errors.New("display: frame does not match window geometry")

	// ErrNoTick indicates Run was called without a tick callback.
	ErrNoTick = errors.New("display: tick callback is required")
)

// Window owns the surface the modulator is wired to. Frames arrive through
// Present as 8-bit phase samples and are expanded into the RGBA buffer the
// renderer uploads each draw.
type Window struct {
	width      int
	height     int
	title      string
	fullscreen bool

	pix []byte // RGBA, 4 bytes per pixel, row-major
}

// New creates a window for the given screen geometry. The surface itself is
// not created until Run; until then the window only stages frames.
//
// Parameters:
//   - cfg: screen geometry, title and fullscreen flag
//
// Returns:
//   - *Window: window holding a black staging buffer
//   - error: ErrBadGeometry if either dimension is smaller than one pixel
func New(cfg config.ScreenConfig) (*Window, error) {
	if cfg.Width < 1 || cfg.Height < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrBadGeometry, cfg.Width, cfg.Height)
	}

	w := &Window{
		width:      cfg.Width,
		height:     cfg.Height,
		title:      cfg.Title,
		fullscreen: cfg.Fullscreen,
		pix:        make([]byte, cfg.Width*cfg.Height*4),
	}

	// Opaque black until the first frame lands.
	for i := 3; i < len(w.pix); i += 4 {
		w.pix[i] = 0xff
	}

	return w, nil
}

// Present stages a quantized frame for the next draw. The frame must have
// exactly the window's geometry.
//
// Present is not synchronized. Call it before Run starts or from inside the
// tick callback, never from another goroutine while the loop is running.
func (w *Window) Present(f *pattern.Frame) error {
	if f.W != w.width || f.H != w.height {
		return fmt.Errorf("%w: frame %dx%d, window %dx%d",
			ErrFrameSize, f.W, f.H, w.width, w.height)
	}

	expandGray(w.pix, f.Pix)

	return nil
}

// Run creates the surface and drives the frame loop until the context is
// cancelled, the operator quits (Escape or window close), or tick returns an
// error. The tick callback fires once per loop iteration and must never
// block; it is the single place the rest of the process gets to run.
//
// Returns:
//   - error: nil on operator quit or context cancellation, the tick error
//     otherwise, or a surface creation failure
func (w *Window) Run(ctx context.Context, tick func() error) error {
	if tick == nil {
		return ErrNoTick
	}

	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowSize(w.width, w.height)
	if w.fullscreen {
		ebiten.SetFullscreen(true)
		// A visible cursor would overwrite the hologram.
		ebiten.SetCursorMode(ebiten.CursorModeHidden)
	}

	return ebiten.RunGame(&loop{w: w, ctx: ctx, tick: tick})
}

// loop adapts the window to the renderer's game interface.
type loop struct {
	w    *Window
	ctx  context.Context
	tick func() error
}

func (l *loop) Update() error {
	if l.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return l.tick()
}

func (l *loop) Draw(screen *ebiten.Image) {
	screen.WritePixels(l.w.pix)
}

func (l *loop) Layout(_, _ int) (int, int) {
	return l.w.width, l.w.height
}

// expandGray fans each 8-bit sample out to an opaque gray RGBA pixel.
// dst must hold exactly 4*len(src) bytes.
func expandGray(dst []byte, src []uint8) {
	for i, s := range src {
		j := i * 4
		dst[j+0] = s
		dst[j+1] = s
		dst[j+2] = s
		dst[j+3] = 0xff
	}
}
