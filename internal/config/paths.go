package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for an explicit config path
	EnvConfigPath = "OTPLACE_CONFIG"
	// ConfigBaseName is the config file name without extension
	ConfigBaseName = "otplace"
)

// configExtensions lists the working directory candidates in priority order
var configExtensions = []string{".toml", ".yaml", ".yml"}

// FindConfigPath searches for a config file in priority order:
// 1. $OTPLACE_CONFIG (explicit path)
// 2. ./otplace.toml
// 3. ./otplace.yaml, ./otplace.yml
//
// Returns empty string if no config file found
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	for _, ext := range configExtensions {
		name := ConfigBaseName + ext
		if fileExists(name) {
			if abs, err := filepath.Abs(name); err == nil {
				return abs
			}
			return name
		}
	}

	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
