//go:build !windows

package sensors

import "errors"

// runWirelessStatusCommand is a POSIX stub: cross-platform parity is an
// explicit Non-goal (§1), so non-Windows builds simply report the probe
// as unavailable.
func runWirelessStatusCommand() ([]byte, error) {
	return nil, errors.New("wireless status probe is windows-only")
}
