// Package config loads the optional pdfpress configuration file.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional pdfpress configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds persistent flag defaults. Pointer fields distinguish
// "not set in the file" from an explicit zero.
type DefaultsConfig struct {
	Quality        *string  `toml:"quality"`
	Workers        *int     `toml:"workers"`
	MinSavings     *float64 `toml:"min_savings"`
	MaxAgeHours    *float64 `toml:"max_age_hours"`
	Tool           *string  `toml:"tool"`
	ToolTimeoutSec *int     `toml:"tool_timeout_sec"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "pdfpress", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads a config file from an explicit path.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
