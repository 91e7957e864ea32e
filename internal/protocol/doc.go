// Package protocol defines the JSON message surface the controller shares
// with its peers (GUI, embedded laser subsystem, calibration tool) and the
// MQTT topic scheme those messages travel on.
//
// # Envelope
//
// Every message is a two-level tagged union:
//
//	{"type": "log"|"device"|"status",
//	 "data": {"device": "embedded"|"lasers"|"aim", "command": "...", ...}}
//
// The "device" tag selects the payload family, the "command" tag the variant
// within it. Both levels are closed sets: Decode rejects unknown tags, and
// every variant is a distinct Go type implementing Data so dispatch code can
// type-switch exhaustively.
//
// # Pattern selectors
//
// The pattern selection carried by set/setpattern commands is itself a closed
// three-variant union keyed by a single-entry JSON object: {"spot": {...}},
// {"custom": {...}}, or {"<family>": {"<prop>": "<value>", ...}} for
// file-based patterns, whose property order is meaningful and preserved by
// the parser. The same shapes are accepted from YAML configuration for the
// startup default.
//
// Decode is strict where the peers are strict: missing required fields,
// empty or multi-entry selector objects, and non-string property values are
// parse errors, not defaults.
package protocol
