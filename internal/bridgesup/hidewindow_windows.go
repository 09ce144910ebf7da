//go:build windows

package bridgesup

import (
	"os/exec"
	"syscall"
)

// hideConsoleWindowCmd suppresses console-window creation for the spawned
// bridge child, mirroring the sensors package's probe-command treatment
// (§4.A, §4.B, §6).
func hideConsoleWindowCmd(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
