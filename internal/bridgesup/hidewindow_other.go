//go:build !windows

package bridgesup

import "os/exec"

// hideConsoleWindowCmd is a no-op on POSIX platforms; there is no console
// window to suppress (§1 cross-platform Non-goal).
func hideConsoleWindowCmd(cmd *exec.Cmd) {}
