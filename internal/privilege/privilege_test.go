package privilege

import "testing"

func TestEnsureElevatedSkipsInDevMode(t *testing.T) {
	t.Setenv("SYSMETRYD_DEV", "1")
	if !DevMode() {
		t.Fatalf("expected DevMode() true with SYSMETRYD_DEV set")
	}
	if err := EnsureElevated(); err != nil {
		t.Fatalf("EnsureElevated in dev mode: %v", err)
	}
}

func TestDevModeDefaultsFalse(t *testing.T) {
	t.Setenv("SYSMETRYD_DEV", "")
	if DevMode() {
		t.Fatalf("expected DevMode() false with SYSMETRYD_DEV unset")
	}
}
