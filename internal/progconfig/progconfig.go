// Package progconfig implements the persisted per-program JSON config of
// spec.md section 6 ("Persisted state"): last-device, log-level,
// max-speed-hz, and a per-device-name max-speed-hz override map.
package progconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DeviceConfig is one entry of device-configs/<name> (spec.md section 6).
type DeviceConfig struct {
	MaxSpeedHz uint32 `json:"max-speed-hz,omitempty"`
}

// Config mirrors the JSON document spec.md section 6 names.
type Config struct {
	LastDevice     string                  `json:"last-device,omitempty"`
	LogLevel       string                  `json:"log-level,omitempty"`
	MaxSpeedHz     uint32                  `json:"max-speed-hz,omitempty"`
	DeviceConfigs  map[string]DeviceConfig `json:"device-configs,omitempty"`

	path string
}

// Default returns an empty config with no associated file.
func Default() *Config {
	return &Config{DeviceConfigs: make(map[string]DeviceConfig)}
}

// Load reads path, returning a Default() config (bound to path for a later
// Save) if the file does not yet exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.DeviceConfigs == nil {
		cfg.DeviceConfigs = make(map[string]DeviceConfig)
	}
	cfg.path = path
	return cfg, nil
}

// Save writes the config back to its bound path, creating parent
// directories as needed.
func (c *Config) Save() error {
	if c.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

// DeviceMaxSpeedHz resolves the effective speed cap for name: the
// per-device override if present, else the global max-speed-hz, else 0
// (no cap).
func (c *Config) DeviceMaxSpeedHz(name string) uint32 {
	if dc, ok := c.DeviceConfigs[name]; ok && dc.MaxSpeedHz != 0 {
		return dc.MaxSpeedHz
	}
	return c.MaxSpeedHz
}

// SetDeviceMaxSpeedHz records a per-device override.
func (c *Config) SetDeviceMaxSpeedHz(name string, hz uint32) {
	if c.DeviceConfigs == nil {
		c.DeviceConfigs = make(map[string]DeviceConfig)
	}
	dc := c.DeviceConfigs[name]
	dc.MaxSpeedHz = hz
	c.DeviceConfigs[name] = dc
}

// DefaultPath returns the conventional config file location under the
// user's config directory (~/.config/flashprog/config.json or platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "flashprog", "config.json"), nil
}
