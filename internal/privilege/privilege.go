// Package privilege implements the startup elevation check (§6): outside
// dev mode, an unprivileged process relaunches itself elevated and exits
// with code 0, since several probes (vendor performance counters, SMART
// IOCTLs, the hardware bridge) need administrator rights on Windows.
package privilege

import "os"

// DevMode reports whether the process is running in development mode,
// where the elevation check is skipped (§6). It is controlled by an
// environment variable rather than a build flag so a developer can flip
// it without recompiling. It is separate from internal/bridgesup's
// dev-mode bridge search, which looks for a go.work marker instead.
func DevMode() bool {
	return os.Getenv("SYSMETRYD_DEV") != ""
}

// EnsureElevated checks whether the process holds administrator rights;
// if not and not in dev mode, it relaunches itself elevated and returns
// ErrRelaunched so the caller can exit(0) without doing further work. If
// already elevated, in dev mode, or on a platform where elevation is not
// meaningful, it returns nil and the caller proceeds normally.
func EnsureElevated() error {
	if DevMode() {
		return nil
	}
	if IsElevated() {
		return nil
	}
	if err := relaunchElevated(); err != nil {
		return err
	}
	return ErrRelaunched
}

// relaunchError is a sentinel the caller checks with errors.Is to tell
// "successfully relaunched, exit now" apart from a real failure.
type relaunchError struct{}

func (relaunchError) Error() string { return "relaunched elevated; exiting" }

// ErrRelaunched is returned by EnsureElevated when the process
// successfully spawned an elevated copy of itself and the caller should
// exit(0) immediately.
var ErrRelaunched error = relaunchError{}
