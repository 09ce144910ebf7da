package bridgesup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLocatePrefersHostSuppliedPath(t *testing.T) {
	dir := t.TempDir()
	hostPath := filepath.Join(dir, "bridge-host")
	writeExecutable(t, hostPath)

	c := Locate(LocateOptions{HostSuppliedPath: hostPath})
	if c.Path != hostPath {
		t.Errorf("expected host-supplied path to win, got %q", c.Path)
	}
}

func TestLocateFallsBackToPortableRelativePath(t *testing.T) {
	dir := t.TempDir()
	portable := filepath.Join(dir, "bridge.exe")
	writeExecutable(t, portable)

	c := Locate(LocateOptions{
		HostSuppliedPath:     filepath.Join(dir, "does-not-exist"),
		ExecutableDir:        dir,
		PortableRelativePath: "bridge.exe",
	})
	if c.Path != portable {
		t.Errorf("expected portable fallback, got %q", c.Path)
	}
}

func TestLocateDevModeFindsBuildOutputViaProjectMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, projectMarker), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	buildOut := filepath.Join(root, "bridge", "bin", "bridge")
	if err := os.MkdirAll(filepath.Dir(buildOut), 0o755); err != nil {
		t.Fatal(err)
	}
	writeExecutable(t, buildOut)

	c := Locate(LocateOptions{
		ExecutableDir:   nested,
		DevBuildOutputs: []string{filepath.Join("bridge", "bin", "bridge")},
	})
	if c.Path != buildOut {
		t.Errorf("expected dev-mode build output %q, got %q", buildOut, c.Path)
	}
	if c.Dir != root {
		t.Errorf("expected working dir to be discovered project root, got %q", c.Dir)
	}
}

func TestLocateGivesUpBeyondSixLevels(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, projectMarker), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}
	deep := root
	for i := 0; i < 8; i++ {
		deep = filepath.Join(deep, "d")
	}
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	c := Locate(LocateOptions{ExecutableDir: deep})
	if c.Path != "" {
		t.Errorf("expected no candidate beyond search depth, got %q", c.Path)
	}
}

func TestLocateGenericCommandIsLastResort(t *testing.T) {
	c := Locate(LocateOptions{GenericCommand: []string{"bridge-launcher", "--run"}})
	if c.Path != "bridge-launcher" || len(c.Args) != 1 || c.Args[0] != "--run" {
		t.Errorf("expected generic command fallback, got %+v", c)
	}
}

func TestLocateReturnsEmptyCandidateWhenNothingResolves(t *testing.T) {
	c := Locate(LocateOptions{})
	if c.Path != "" {
		t.Errorf("expected empty candidate, got %+v", c)
	}
}

func writeExecutable(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
}
