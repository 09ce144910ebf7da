//go:build windows

package sensors

import "os/exec"

// runWirelessStatusCommand invokes `netsh wlan show interfaces`, the
// platform's wireless-status command (§4.A). Console window creation is
// suppressed via SysProcAttr so a background process never flashes a
// window (§4.A, §6).
func runWirelessStatusCommand() ([]byte, error) {
	cmd := exec.Command("netsh", "wlan", "show", "interfaces")
	hideConsoleWindow(cmd)
	return cmd.Output()
}
