// Package config holds AppConfig, the persisted user-editable settings the
// orchestrator and its consumers read. Following the teacher's
// collector.CollectorConfig idiom, defaults live in one constructor and
// mutation goes through explicit Set calls; the actual
// shared instance the rest of the process touches is a *Store guarded by
// a single mutex that clones out on every read (§5).
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// TrayBottomMode selects what the tray icon's second line shows.
type TrayBottomMode string

const (
	TrayBottomCPU TrayBottomMode = "cpu"
	TrayBottomMem TrayBottomMode = "mem"
	TrayBottomFan TrayBottomMode = "fan"
)

// AppConfig is the full set of persisted settings (§3, §6).
type AppConfig struct {
	TrayBottomMode  TrayBottomMode `json:"tray_bottom_mode"`
	TrayShowMemory  bool           `json:"tray_show_mem"`
	NetInterfaces   []string       `json:"net_interfaces"`
	PublicNetEnabled bool          `json:"public_net_enabled"`
	PublicNetAPI    string         `json:"public_net_api"`
	RTTTargets      []string       `json:"rtt_targets"`
	RTTTimeoutMS    int            `json:"rtt_timeout_ms"`
	TopN            int            `json:"top_n"`
}

// Default returns the documented defaults (§3).
func Default() AppConfig {
	return AppConfig{
		TrayBottomMode:   TrayBottomCPU,
		TrayShowMemory:   false,
		NetInterfaces:    nil,
		PublicNetEnabled: true,
		PublicNetAPI:     "",
		RTTTargets:       []string{"1.1.1.1:443"},
		RTTTimeoutMS:     300,
		TopN:             5,
	}
}

// EffectiveMode resolves the legacy tray_show_mem boolean: when set, it is
// equivalent to mode "mem" even if TrayBottomMode says otherwise, matching
// §3's documented legacy compatibility.
func (c AppConfig) EffectiveMode() TrayBottomMode {
	if c.TrayShowMemory {
		return TrayBottomMem
	}
	if c.TrayBottomMode == "" {
		return TrayBottomCPU
	}
	return c.TrayBottomMode
}

// applyDefaults fills in zero-valued fields with documented defaults, so a
// config file that's missing keys (or predates a field) still behaves
// per-spec rather than zeroing RTT timeout to 0ms etc.
func applyDefaults(c *AppConfig) {
	def := Default()
	if c.TrayBottomMode == "" {
		c.TrayBottomMode = def.TrayBottomMode
	}
	if c.RTTTimeoutMS <= 0 {
		c.RTTTimeoutMS = def.RTTTimeoutMS
	}
	if c.TopN <= 0 {
		c.TopN = def.TopN
	}
	if len(c.RTTTargets) == 0 {
		c.RTTTargets = def.RTTTargets
	}
}

// ValidationError mirrors the teacher's ConfigError: a typed, field-named
// validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}

// Validate checks invariants beyond JSON-decodability.
func (c AppConfig) Validate() error {
	switch c.TrayBottomMode {
	case TrayBottomCPU, TrayBottomMem, TrayBottomFan, "":
	default:
		return &ValidationError{Field: "TrayBottomMode", Message: "must be one of cpu, mem, fan"}
	}
	if c.RTTTimeoutMS < 0 {
		return &ValidationError{Field: "RTTTimeoutMS", Message: "must not be negative"}
	}
	if c.TopN < 0 {
		return &ValidationError{Field: "TopN", Message: "must not be negative"}
	}
	return nil
}

// Store is the process-wide, mutex-guarded holder of the live config.
// Reads clone the struct out; NetInterfaces/RTTTargets slices are copied
// too so callers never see a shared backing array mutated under them.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  AppConfig
}

// Load reads path if it exists, applying documented defaults for missing
// keys; a missing file is not an error — it yields all-default config.
func Load(path string) (*Store, error) {
	s := &Store{path: path, cfg: Default()}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var c AppConfig
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	applyDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s.cfg = c
	return s, nil
}

// Get returns a deep-enough copy of the current config for reading.
func (s *Store) Get() AppConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.cfg
	cfg.NetInterfaces = append([]string(nil), s.cfg.NetInterfaces...)
	cfg.RTTTargets = append([]string(nil), s.cfg.RTTTargets...)
	return cfg
}

// Set validates and stores new, then persists it to disk. A write
// failure is returned as a descriptive error to the caller (Config-io-
// failure, §7) but the in-memory config is updated regardless, matching
// spec's "in-memory config is still updated" clause.
func (s *Store) Set(newCfg AppConfig) error {
	applyDefaults(&newCfg)
	if err := newCfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.cfg = newCfg
	path := s.path
	s.mu.Unlock()

	if path == "" {
		return nil
	}
	if err := persist(path, newCfg); err != nil {
		return &PersistError{Path: path, Err: err}
	}
	return nil
}

// PersistError wraps a config-file write failure with its path.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return "failed to write config to " + e.Path + ": " + e.Err.Error()
}

func (e *PersistError) Unwrap() error { return e.Err }

func persist(path string, c AppConfig) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// DefaultPath returns the per-user config file location, matching the
// "OS's per-user config directory" language in §3/§6.
func DefaultPath(appName string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.json"), nil
}
