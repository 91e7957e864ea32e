// Package display puts computed patterns on the modulator head.
//
// The SLM is wired to the host as an ordinary monitor; driving it means
// drawing a fullscreen grayscale image and keeping it up. The package wraps
// the ebiten renderer behind a small surface: stage a frame with Present,
// then let Run own the process's frame loop.
//
// # Architecture
//
//	pattern.Frame ──Present──▶ RGBA staging buffer ──Draw──▶ modulator
//
// The logical screen is exactly the modulator's native resolution; the
// renderer scales it onto whatever physical window the OS hands back, so a
// bench run in a small window shows the same pixels the instrument would.
//
// Run is deliberately the process's only loop. The tick callback it takes
// fires once per frame and is where the command dispatcher drains its inbox;
// everything downstream of a command (pattern compute, file I/O, Present)
// happens inside that callback.
//
// # Shutdown
//
// The loop ends on context cancellation, on Escape, on window close, or on
// the first non-nil tick error. The first three come back as nil, a tick
// error comes back as itself.
//
// # Thread Safety
//
// Nothing here is safe for concurrent use. Present may be called before Run
// starts and from inside the tick callback only.
package display
