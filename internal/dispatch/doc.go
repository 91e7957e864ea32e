// Package dispatch is the command loop of the aim controller: it owns the
// device state (pattern selection, fresnel power, working wavelength) and
// processes every inbound MQTT message to completion.
//
// # Architecture
//
//	MQTT handler ──Enqueue──▶ inbox ──Pump──▶ process ──▶ engine.Compute
//	   (callback goroutine)     │    (frame loop tick)         │
//	reconnect ──RequestAnnounce─┘                          sink.Present
//	                                                           │
//	                                            publish reports on <root>/aim
//
// The frame loop (the display window) calls Pump once per tick. Pump first
// runs a pending announce, then drains the inbox without blocking. Each
// message is handled synchronously, filesystem I/O included; arrival rate is
// operator-paced, so a tick occasionally running long is fine.
//
// # State discipline
//
// Every state change is transactional: compute the candidate state's frame,
// present it, then commit. A message that fails anywhere (decode, file
// resolution, I/O) is logged with a payload preview and dropped; the state,
// the cache and the modulator keep showing the previous pattern.
//
// The reboot command is terminal. The dispatcher halts before invoking the
// OS reboot and every later Pump returns ErrHalted, which the frame loop
// surfaces to shut the process down.
//
// # Thread Safety
//
// Enqueue and RequestAnnounce are safe from transport callbacks. Everything
// else, Refresh and Pump included, must run on the frame loop goroutine.
package dispatch
