package protocol

import "errors"

// Decode errors. Checked with errors.Is by the dispatcher, which logs and
// drops the offending message.
var (
	// ErrUnknownType is returned for a message "type" outside log/device/status.
	ErrUnknownType = errors.New("protocol: unknown message type")

	// ErrUnknownDevice is returned for a data "device" outside embedded/lasers/aim.
	ErrUnknownDevice = errors.New("protocol: unknown device")

	// ErrUnknownCommand is returned for a "command" not defined for its device.
	ErrUnknownCommand = errors.New("protocol: unknown command")

	// ErrMissingField is returned when a command payload lacks a required field.
	ErrMissingField = errors.New("protocol: missing field")

	// ErrBadSelector is returned for a pattern selector that is not a
	// single-entry object with a valid variant payload.
	ErrBadSelector = errors.New("protocol: bad pattern selector")

	// ErrBadDataURL is returned for an upload payload without the
	// ";base64," separator expected of a data URL.
	ErrBadDataURL = errors.New("protocol: bad data url")
)
