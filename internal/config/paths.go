package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDirectory returns the directory holding the config and token files.
//   - Windows: %USERPROFILE%\.config\nabotix
//   - Unix: ~/.config/nabotix
func ConfigDirectory() string {
	if runtime.GOOS == "windows" {
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			return filepath.Join(profile, ".config", "nabotix")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "nabotix")
	}
	return filepath.Join(home, ".config", "nabotix")
}

// DefaultConfigPath returns the default INI config location.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDirectory(), "config")
}

// DefaultTokenPath returns the default location of the saved session token.
func DefaultTokenPath() string {
	return filepath.Join(ConfigDirectory(), "token")
}

// LogDirectory returns the directory for rotating log files.
func LogDirectory() string {
	return filepath.Join(ConfigDirectory(), "logs")
}
