// Package config resolves marksync settings from flags, environment, config
// files and defaults.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the marksync configuration directory.
//
// Resolution:
//   - $MARKSYNC_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/marksync if set (respects XDG on any platform)
//   - %AppData%/marksync on Windows
//   - ~/.config/marksync on macOS and Linux
func Dir() string {
	if dir := os.Getenv("MARKSYNC_CONFIG_HOME"); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}
