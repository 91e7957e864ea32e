//go:build !linux

package dispatch

// osReboot on non-instrument platforms refuses; bench hosts are not rebooted
// over MQTT.
func osReboot() error {
	return ErrRebootUnsupported
}
