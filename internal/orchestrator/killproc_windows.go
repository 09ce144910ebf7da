//go:build windows

package orchestrator

import (
	"os/exec"
	"strconv"
)

// killByPID force-terminates a process by PID, grounded on taskkill since
// os.Process.Kill requires holding the original *os.Process, which the
// orchestrator doesn't have across a supervisor respawn.
func killByPID(pid int) error {
	if pid <= 0 {
		return nil
	}
	cmd := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid))
	return cmd.Run()
}
