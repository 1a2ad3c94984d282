// Package config provides configuration loading and the chart vocabulary tables.
package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config location.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "riskctl", "config.toml")
}

// DefaultSessionDBPath returns the default path for the session SQLite database.
func DefaultSessionDBPath() string {
	return filepath.Join(XDGDataHome(), "riskctl", "session.db")
}

// DefaultOutputDir returns the default directory for rendered dashboards and exports.
func DefaultOutputDir() string {
	return filepath.Join(XDGDataHome(), "riskctl", "dashboard")
}
