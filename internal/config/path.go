package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	ConfigPathEnvVar  = "INTERPRETER_CONFIG_PATH"
	defaultConfigDir  = ".interpreter"
	defaultConfigName = "config.yaml"
)

// ResolveConfigPath returns the configuration file path and its source label.
// Priority order:
//  1. Explicit INTERPRETER_CONFIG_PATH.
//  2. $HOME/.interpreter/config.yaml.
//  3. ./configs/config.yaml (fallback when the home directory is unavailable).
func ResolveConfigPath(envLookup EnvLookup, homeDir func() (string, error)) (string, string) {
	if envLookup == nil {
		envLookup = DefaultEnvLookup
	}
	if value, ok := envLookup(ConfigPathEnvVar); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed, ConfigPathEnvVar
		}
	}

	home := ""
	if homeDir != nil {
		if resolved, err := homeDir(); err == nil {
			home = strings.TrimSpace(resolved)
		}
	}
	if home == "" {
		if resolved, err := os.UserHomeDir(); err == nil {
			home = strings.TrimSpace(resolved)
		}
	}
	if home != "" {
		return filepath.Join(home, defaultConfigDir, defaultConfigName), "default"
	}

	return filepath.Join("configs", defaultConfigName), "fallback"
}
