//go:build windows

package privilege

import (
	"os"
	"syscall"

	"golang.org/x/sys/windows"
)

// IsElevated reports whether the current process token is a member of
// the built-in Administrators group, following the standard
// CheckTokenMembership pattern (§6).
func IsElevated() bool {
	var sid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	token := windows.Token(0)
	member, err := token.IsMember(sid)
	if err != nil {
		return false
	}
	return member
}

// relaunchElevated spawns a copy of the current executable via
// ShellExecute's "runas" verb, which triggers the UAC consent prompt,
// and returns; the current process is left running and EnsureElevated's
// caller does the exit.
func relaunchElevated() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	verb, _ := syscall.UTF16PtrFromString("runas")
	file, _ := syscall.UTF16PtrFromString(exe)
	cwd, _ := syscall.UTF16PtrFromString(workingDir())
	args, _ := syscall.UTF16PtrFromString(commandLineArgs())

	return windows.ShellExecute(0, verb, file, args, cwd, windows.SW_SHOWNORMAL)
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

func commandLineArgs() string {
	var b []byte
	for i, a := range os.Args[1:] {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, a...)
	}
	return string(b)
}
