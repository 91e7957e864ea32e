//go:build linux

package dispatch

import "golang.org/x/sys/unix"

// osReboot restarts the instrument host. Requires CAP_SYS_BOOT; the
// controller runs as root on deployed instruments.
func osReboot() error {
	unix.Sync()
	return unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART)
}
