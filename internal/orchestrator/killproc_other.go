//go:build !windows

package orchestrator

import "syscall"

// killByPID force-terminates a process by PID (§4.K).
func killByPID(pid int) error {
	if pid <= 0 {
		return nil
	}
	return syscall.Kill(pid, syscall.SIGKILL)
}
