package bridgesup

import (
	"os"
	"path/filepath"
)

// projectMarker is the well-known file the dev-mode search looks for
// while walking up parent directories (§4.B step 1).
const projectMarker = "go.work"

// LocateOptions configures executable resolution.
type LocateOptions struct {
	// HostSuppliedPath is a path the host process was told to use at
	// startup (a packaged resource), tried first.
	HostSuppliedPath string
	// ExecutableDir is the directory containing the current executable,
	// used for the portable-fallback and dev-mode search.
	ExecutableDir string
	// PortableRelativePath is the bridge binary's name/relative path next
	// to the host executable.
	PortableRelativePath string
	// DevBuildOutputs are candidate paths (relative to a discovered
	// project root) for release/debug build outputs, tried in order.
	DevBuildOutputs []string
	// GenericCommand is the last-resort invocation — e.g. a "run this
	// project" command — used when no file candidate exists.
	GenericCommand []string
}

// Candidate is a fully resolved way to start the bridge.
type Candidate struct {
	Path string
	Args []string
	Dir  string
}

// Locate resolves the bridge executable following the documented order
// (§4.B step 1): host-supplied path, portable fallback, dev-mode search up
// to 6 parent directories for projectMarker then its build outputs, and
// finally a generic invocation. Each attempt uses the first existing
// candidate.
func Locate(opts LocateOptions) Candidate {
	if opts.HostSuppliedPath != "" {
		if fileExists(opts.HostSuppliedPath) {
			return Candidate{Path: opts.HostSuppliedPath, Dir: filepath.Dir(opts.HostSuppliedPath)}
		}
	}

	if opts.ExecutableDir != "" && opts.PortableRelativePath != "" {
		candidate := filepath.Join(opts.ExecutableDir, opts.PortableRelativePath)
		if fileExists(candidate) {
			return Candidate{Path: candidate, Dir: opts.ExecutableDir}
		}
	}

	if root, ok := findProjectRoot(opts.ExecutableDir, projectMarker, 6); ok {
		for _, rel := range opts.DevBuildOutputs {
			candidate := filepath.Join(root, rel)
			if fileExists(candidate) {
				return Candidate{Path: candidate, Dir: root}
			}
		}
		if len(opts.GenericCommand) > 0 {
			return Candidate{Path: opts.GenericCommand[0], Args: opts.GenericCommand[1:], Dir: root}
		}
	}

	if len(opts.GenericCommand) > 0 {
		return Candidate{Path: opts.GenericCommand[0], Args: opts.GenericCommand[1:], Dir: opts.ExecutableDir}
	}

	return Candidate{}
}

// findProjectRoot walks up from start looking for marker, at most
// maxLevels parent directories up.
func findProjectRoot(start, marker string, maxLevels int) (string, bool) {
	dir := start
	for i := 0; i <= maxLevels; i++ {
		if dir == "" {
			return "", false
		}
		if fileExists(filepath.Join(dir, marker)) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
