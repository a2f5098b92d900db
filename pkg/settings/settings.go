// Package settings manages run configuration for the netauto CLI.
//
// Precedence, lowest to highest: built-in defaults, the JSON settings
// file, environment variables, CLI flag overrides applied by the
// caller. The resolved struct is passed explicitly into the
// orchestrator; nothing reads the environment past this package.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v9"
)

// Settings holds the run configuration.
type Settings struct {
	// InventoryDir holds hosts.yaml, groups.yaml, defaults.yaml.
	InventoryDir string `json:"inventory_dir,omitempty" env:"NETAUTO_INVENTORY_DIR"`

	// TemplatesDir holds the role templates (*.tmpl).
	TemplatesDir string `json:"templates_dir,omitempty" env:"NETAUTO_TEMPLATES_DIR"`

	// OutputDir receives generated <hostname>.cfg files.
	OutputDir string `json:"output_dir,omitempty" env:"NETAUTO_OUTPUT_DIR"`

	// LockAddr is the Redis lock registry address. Empty disables
	// device run locking.
	LockAddr string `json:"lock_addr,omitempty" env:"NETAUTO_LOCK_ADDR"`

	// AuditLog is the audit trail path. Empty disables auditing.
	AuditLog string `json:"audit_log,omitempty" env:"NETAUTO_AUDIT_LOG"`

	// Workers bounds concurrent per-host operations.
	Workers int `json:"workers,omitempty" env:"NETAUTO_WORKERS"`

	// CommandTimeoutSec bounds each remote call, in seconds.
	CommandTimeoutSec int `json:"command_timeout_sec,omitempty" env:"NETAUTO_COMMAND_TIMEOUT"`
}

// DefaultSettingsPath returns the default path for the settings file.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "netauto_settings.json"
	}
	return filepath.Join(home, ".netauto", "settings.json")
}

// Load reads settings from the default location and applies
// environment overrides.
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from path and applies environment overrides.
// A missing file yields defaults, not an error.
func LoadFrom(path string) (*Settings, error) {
	s, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := env.Parse(s); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFile reads only the settings file, without environment
// overrides. Used when mutating the persisted file so env values are
// not written back into it.
func LoadFile(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, s); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

// Save writes settings to the default location.
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path.
func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GetInventoryDir returns the inventory directory (with fallback).
func (s *Settings) GetInventoryDir() string {
	if s.InventoryDir != "" {
		return s.InventoryDir
	}
	return "inventory"
}

// GetTemplatesDir returns the templates directory (with fallback).
func (s *Settings) GetTemplatesDir() string {
	if s.TemplatesDir != "" {
		return s.TemplatesDir
	}
	return "templates"
}

// GetOutputDir returns the generated-config directory (with fallback).
func (s *Settings) GetOutputDir() string {
	if s.OutputDir != "" {
		return s.OutputDir
	}
	return "generated"
}

// GetWorkers returns the worker pool size (with fallback).
func (s *Settings) GetWorkers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return 10
}

// CommandTimeout returns the per-call deadline (with fallback).
func (s *Settings) CommandTimeout() time.Duration {
	if s.CommandTimeoutSec > 0 {
		return time.Duration(s.CommandTimeoutSec) * time.Second
	}
	return 60 * time.Second
}
