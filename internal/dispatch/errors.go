package dispatch

import "errors"

// Domain errors for the dispatch package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, dispatch.ErrHalted) {
//	    // reboot requested; shut the loop down
//	}
var (
	// ErrUnexpectedMessage is returned for a decoded message whose
	// type/payload combination has no handler.
	ErrUnexpectedMessage = errors.New("dispatch: unexpected message")

	// ErrInboxFull is returned by Enqueue when the inbound buffer is full.
	ErrInboxFull = errors.New("dispatch: inbox full")

	// ErrHalted is returned by Pump after a reboot command; no further
	// messages are processed.
	ErrHalted = errors.New("dispatch: halted by reboot")

	// ErrRebootUnsupported is returned when the platform cannot reboot.
	ErrRebootUnsupported = errors.New("dispatch: reboot not supported on this platform")
)
