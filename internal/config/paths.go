package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// LogDirectory returns the directory holding FreeDroid logs.
//
// Locations:
//   - Windows: %LOCALAPPDATA%\FreeDroid\logs
//   - Unix: ~/.config/freedroid/logs
func LogDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "freedroid-logs")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "FreeDroid", "logs")
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "freedroid-logs")
		}
		return filepath.Join(homeDir, ".config", "freedroid", "logs")
	}
	return filepath.Join(configDir, "freedroid", "logs")
}

// PreviewDirectory returns the temporary directory that receives pulled image previews.
func PreviewDirectory() string {
	return filepath.Join(os.TempDir(), "freedroid-preview")
}
