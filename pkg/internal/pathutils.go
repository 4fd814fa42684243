package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// GetConfigDir returns the default configuration directory path for the given
// appName on the current operating system.
//
// Behavior:
//   - Windows: if the APPDATA environment variable is set, returns
//     APPDATA\<appName>. If APPDATA is not set, an error is returned.
//   - Unix-like systems: if XDG_CONFIG_HOME is set, returns
//     XDG_CONFIG_HOME/<appName>. Otherwise falls back to $HOME/.config/<appName>.
//     If the user's home directory cannot be determined, an error is returned.
//
// The returned path is not created by this function.
func GetConfigDir(appName string) (string, error) {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName), nil
		}
		return "", fmt.Errorf("APPDATA environment variable not set")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
