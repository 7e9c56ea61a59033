package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// PlatformDataDir returns the platform-specific data directory.
//
// Platform paths:
//   - Linux:   $XDG_DATA_HOME/goanthy or ~/.local/share/goanthy/
//   - macOS:   ~/Library/Application Support/goanthy/
//
// Falls back to ~/.goanthy elsewhere.
func PlatformDataDir() string {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		return xdgDir("XDG_DATA_HOME", ".local", "share")
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", AppName)
	default:
		return fallbackDataDir()
	}
}

// PlatformConfigDir returns the platform-specific config directory.
//
// Platform paths:
//   - Linux:   $XDG_CONFIG_HOME/goanthy or ~/.config/goanthy/
//   - macOS:   ~/Library/Application Support/goanthy/
func PlatformConfigDir() string {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		return xdgDir("XDG_CONFIG_HOME", ".config")
	default:
		return PlatformDataDir()
	}
}

func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(append(append([]string{home}, fallback...), AppName)...)
}

func fallbackDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "."+AppName)
}

// SupportedConfigFormats returns the list of supported config file formats.
func SupportedConfigFormats() []string {
	return []string{"toml", "json", "yaml", "yml"}
}

// FindConfigFile searches the config directory for config.<ext> and returns
// the first match, or the default path.
func FindConfigFile() string {
	dir := PlatformConfigDir()
	for _, ext := range SupportedConfigFormats() {
		path := filepath.Join(dir, "config."+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ConfigPath()
}
