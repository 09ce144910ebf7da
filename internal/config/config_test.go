package config

import (
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.TrayBottomMode != TrayBottomCPU {
		t.Errorf("expected default tray mode cpu, got %s", c.TrayBottomMode)
	}
	if c.RTTTimeoutMS != 300 {
		t.Errorf("expected default rtt timeout 300ms, got %d", c.RTTTimeoutMS)
	}
	if c.TopN != 5 {
		t.Errorf("expected default top_n 5, got %d", c.TopN)
	}
	if !c.PublicNetEnabled {
		t.Errorf("expected public net enabled by default")
	}
}

func TestEffectiveModeLegacyOverride(t *testing.T) {
	c := AppConfig{TrayBottomMode: TrayBottomFan, TrayShowMemory: true}
	if got := c.EffectiveMode(); got != TrayBottomMem {
		t.Errorf("legacy tray_show_mem should force mem mode, got %s", got)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(filepath.Join(dir, "nope.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Get(); got.RTTTimeoutMS != 300 {
		t.Errorf("expected defaults when file missing, got %+v", got)
	}
}

func TestSetPersistsAndRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	newCfg := Default()
	newCfg.TrayBottomMode = TrayBottomFan
	newCfg.TopN = 8
	if err := s.Set(newCfg); err != nil {
		t.Fatalf("set: %v", err)
	}

	s2, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := s2.Get()
	if got.TrayBottomMode != TrayBottomFan || got.TopN != 8 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestSetRejectsInvalidMode(t *testing.T) {
	dir := t.TempDir()
	s, _ := Load(filepath.Join(dir, "config.json"))
	bad := Default()
	bad.TrayBottomMode = "bogus"
	if err := s.Set(bad); err == nil {
		t.Fatalf("expected validation error for bogus tray mode")
	}
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	dir := t.TempDir()
	s, _ := Load(filepath.Join(dir, "config.json"))
	cfg := Default()
	cfg.NetInterfaces = []string{"eth0"}
	_ = s.Set(cfg)

	got := s.Get()
	got.NetInterfaces[0] = "mutated"

	got2 := s.Get()
	if got2.NetInterfaces[0] != "eth0" {
		t.Errorf("Get() leaked internal slice, mutation visible: %v", got2.NetInterfaces)
	}
}
