// Package config handles the tool's persistent settings and the
// discovery of the OpenPnP configuration directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Default configuration values.
const (
	DefaultCacheTTLHours = 24
	DefaultWorkers       = 4
	DefaultKeepBackups   = 10
)

// PackagesFileName and PartsFileName are the OpenPnP document names
// inside the configuration directory.
const (
	PackagesFileName = "packages.xml"
	PartsFileName    = "parts.xml"
)

// Config represents the flat pnpimport configuration.
type Config struct {
	Version       string `json:"version"`
	OpenPnPDir    string `json:"openpnp_dir" validate:"required"`
	BackupDir     string `json:"backup_dir" validate:"required"`
	CacheTTLHours int    `json:"cache_ttl_hours" validate:"gte=0"`
	Workers       int    `json:"workers" validate:"gte=1,lte=16"`
	KeepBackups   int    `json:"keep_backups" validate:"gte=1"`
}

var validate = validator.New()

// Default returns a configuration pointing at the discovered OpenPnP
// directory and the standard dotdir locations.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	openpnpDir, err := DiscoverOpenPnPDir()
	if err != nil {
		// Still usable for init; the doctor command reports the gap.
		openpnpDir = filepath.Join(home, ".openpnp2")
	}

	return &Config{
		Version:       "1",
		OpenPnPDir:    openpnpDir,
		BackupDir:     filepath.Join(home, ".pnpimport", "backups"),
		CacheTTLHours: DefaultCacheTTLHours,
		Workers:       DefaultWorkers,
		KeepBackups:   DefaultKeepBackups,
	}, nil
}

// ConfigDir returns the tool's dotdir, ~/.pnpimport.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".pnpimport"), nil
}

// LoadConfig reads config.json from the given directory and validates it.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.KeepBackups == 0 {
		cfg.KeepBackups = DefaultKeepBackups
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes config.json to the given directory.
func SaveConfig(dir string, cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// PackagesPath returns the full path of packages.xml.
func (c *Config) PackagesPath() string {
	return filepath.Join(c.OpenPnPDir, PackagesFileName)
}

// PartsPath returns the full path of parts.xml.
func (c *Config) PartsPath() string {
	return filepath.Join(c.OpenPnPDir, PartsFileName)
}

// DiscoverOpenPnPDir locates the OpenPnP configuration directory. Only
// ~/.openpnp2 is checked; older OpenPnP 1.x layouts use a different
// schema this tool does not write.
func DiscoverOpenPnPDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, ".openpnp2")
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("OpenPnP configuration directory not found at %s", dir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s exists but is not a directory", dir)
	}
	return dir, nil
}
