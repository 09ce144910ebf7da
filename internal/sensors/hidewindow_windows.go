//go:build windows

package sensors

import (
	"os/exec"
	"syscall"
)

// hideConsoleWindow suppresses console-window creation for a spawned
// command, required for every probe that shells out (§4.A, §6) so an
// unprivileged background process never flashes a window on screen.
func hideConsoleWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
