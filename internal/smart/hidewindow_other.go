//go:build !windows

package smart

import "os/exec"

func hideConsoleWindow(cmd *exec.Cmd) {}
