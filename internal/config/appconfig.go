// Package config provides configuration management for FreeDroid.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/freedroid/freedroid/internal/constants"
)

// Config is the user configuration.
//
// Config file location:
//   - Windows: %APPDATA%\FreeDroid\freedroid.conf
//   - Unix: ~/.config/freedroid/freedroid.conf
//
// INI format:
//
//	[bridge]
//	adb_path =
//	command_timeout_seconds = 300
//
//	[paths]
//	pull_folder = /Users/me/Pulled
//	push_folder = /sdcard/Download
//	start_folder = /sdcard
//
//	[browse]
//	follow_symlinks = true
//	hide_system_dirs = true
//
//	[device]
//	default_serial =
//	poll_interval_seconds = 3
//
//	[transfer]
//	check_disk_space = true
//
//	[notifications]
//	enabled = true
//	show_batch_complete = true
//	show_batch_failed = true
//
//	[logging]
//	file =
//	level = warn
type Config struct {
	Bridge        BridgeConfig
	Paths         PathsConfig
	Browse        BrowseConfig
	Device        DeviceConfig
	Transfer      TransferConfig
	Notifications NotificationConfig
	Logging       LoggingConfig
}

// BridgeConfig locates and bounds the adb client.
type BridgeConfig struct {
	// ADBPath is an explicit adb executable. Empty means search next to the
	// executable, then PATH.
	ADBPath string `ini:"adb_path"`

	// CommandTimeoutSeconds bounds how long a command waits for the device lock.
	// Minimum: 1, Default: 300
	CommandTimeoutSeconds int `ini:"command_timeout_seconds"`
}

// PathsConfig holds the default transfer destinations.
type PathsConfig struct {
	// PullFolder receives pulled files. Default: ~/Pulled
	PullFolder string `ini:"pull_folder"`

	// PushFolder is the device directory receiving pushed files. Default: /sdcard/Download
	PushFolder string `ini:"push_folder"`

	// StartFolder is the device directory listed when no path is given. Default: /sdcard
	StartFolder string `ini:"start_folder"`
}

// BrowseConfig tunes directory listings.
type BrowseConfig struct {
	// FollowSymlinks lists with `ls -lL` so link targets report their own type and size.
	FollowSymlinks bool `ini:"follow_symlinks"`

	// HideSystemDirs drops proc, sys, dev and friends when listing /.
	HideSystemDirs bool `ini:"hide_system_dirs"`
}

// DeviceConfig selects and watches devices.
type DeviceConfig struct {
	// DefaultSerial is used when several devices are attached and none is named.
	DefaultSerial string `ini:"default_serial"`

	// PollIntervalSeconds is the device watcher interval.
	// Minimum: 1, Maximum: 3600, Default: 3
	PollIntervalSeconds int `ini:"poll_interval_seconds"`
}

// TransferConfig holds batch options.
type TransferConfig struct {
	// CheckDiskSpace refuses a pull whose known size does not fit on the host.
	CheckDiskSpace bool `ini:"check_disk_space"`
}

// NotificationConfig controls desktop notifications.
type NotificationConfig struct {
	Enabled           bool `ini:"enabled"`
	ShowBatchComplete bool `ini:"show_batch_complete"`
	ShowBatchFailed   bool `ini:"show_batch_failed"`
}

// LoggingConfig controls the rotating log file.
type LoggingConfig struct {
	// File is the log file path. Empty means LogDirectory()/freedroid.log.
	File string `ini:"file"`

	// Level is one of debug, info, warn, error. Default: warn
	Level string `ini:"level"`
}

// Config validation errors
var (
	ErrMissingPullFolder    = errors.New("pull_folder is required")
	ErrMissingPushFolder    = errors.New("push_folder is required")
	ErrRelativeRemoteFolder = errors.New("push_folder and start_folder must be absolute device paths")
	ErrInvalidPollInterval  = errors.New("poll_interval_seconds must be between 1 and 3600")
	ErrInvalidTimeout       = errors.New("command_timeout_seconds must be at least 1")
	ErrInvalidLogLevel      = errors.New("level must be one of debug, info, warn, error")
	ErrUnknownKey           = errors.New("unknown configuration key")
)

// DefaultConfigPath returns the default path for the freedroid.conf file.
func DefaultConfigPath() (string, error) {
	dir, err := configDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "freedroid.conf"), nil
}

func configDirectory() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", errors.New("neither APPDATA nor USERPROFILE environment variable set")
			}
			appData = filepath.Join(userProfile, "AppData", "Roaming")
		}
		return filepath.Join(appData, "FreeDroid"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "freedroid"), nil
}

// DefaultPullFolder returns ~/Pulled.
func DefaultPullFolder() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), constants.DefaultPullFolderName)
	}
	return filepath.Join(home, constants.DefaultPullFolderName)
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			CommandTimeoutSeconds: int(constants.DefaultCommandTimeout / time.Second),
		},
		Paths: PathsConfig{
			PullFolder:  DefaultPullFolder(),
			PushFolder:  constants.DefaultPushFolder,
			StartFolder: constants.DefaultStartFolder,
		},
		Browse: BrowseConfig{
			FollowSymlinks: true,
			HideSystemDirs: true,
		},
		Device: DeviceConfig{
			PollIntervalSeconds: int(constants.DefaultDevicePollInterval / time.Second),
		},
		Transfer: TransferConfig{
			CheckDiskSpace: true,
		},
		Notifications: NotificationConfig{
			Enabled:           true,
			ShowBatchComplete: true,
			ShowBatchFailed:   true,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// LoadConfig loads configuration from the freedroid.conf file.
// If path is empty, uses the default path.
// If the file doesn't exist, returns a config with default values and no error.
// If the file exists but is invalid, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()
	defaults := NewConfig()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
	}

	bridge := iniFile.Section("bridge")
	cfg.Bridge.ADBPath = bridge.Key("adb_path").String()
	cfg.Bridge.CommandTimeoutSeconds = bridge.Key("command_timeout_seconds").MustInt(defaults.Bridge.CommandTimeoutSeconds)

	paths := iniFile.Section("paths")
	cfg.Paths.PullFolder = paths.Key("pull_folder").MustString(defaults.Paths.PullFolder)
	cfg.Paths.PushFolder = paths.Key("push_folder").MustString(defaults.Paths.PushFolder)
	cfg.Paths.StartFolder = paths.Key("start_folder").MustString(defaults.Paths.StartFolder)

	browse := iniFile.Section("browse")
	cfg.Browse.FollowSymlinks = browse.Key("follow_symlinks").MustBool(true)
	cfg.Browse.HideSystemDirs = browse.Key("hide_system_dirs").MustBool(true)

	device := iniFile.Section("device")
	cfg.Device.DefaultSerial = device.Key("default_serial").String()
	cfg.Device.PollIntervalSeconds = device.Key("poll_interval_seconds").MustInt(defaults.Device.PollIntervalSeconds)

	transfer := iniFile.Section("transfer")
	cfg.Transfer.CheckDiskSpace = transfer.Key("check_disk_space").MustBool(true)

	notify := iniFile.Section("notifications")
	cfg.Notifications.Enabled = notify.Key("enabled").MustBool(true)
	cfg.Notifications.ShowBatchComplete = notify.Key("show_batch_complete").MustBool(true)
	cfg.Notifications.ShowBatchFailed = notify.Key("show_batch_failed").MustBool(true)

	logging := iniFile.Section("logging")
	cfg.Logging.File = logging.Key("file").String()
	cfg.Logging.Level = logging.Key("level").MustString(defaults.Logging.Level)

	return cfg, nil
}

// SaveConfig saves configuration to the freedroid.conf file.
// If path is empty, uses the default path.
// Creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// ReflectFrom walks the ini tags on each section struct
	iniFile := ini.Empty()
	sections := []struct {
		name string
		src  interface{}
	}{
		{"bridge", &cfg.Bridge},
		{"paths", &cfg.Paths},
		{"browse", &cfg.Browse},
		{"device", &cfg.Device},
		{"transfer", &cfg.Transfer},
		{"notifications", &cfg.Notifications},
		{"logging", &cfg.Logging},
	}
	for _, s := range sections {
		section, err := iniFile.NewSection(s.name)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", s.name, err)
		}
		if err := section.ReflectFrom(s.src); err != nil {
			return fmt.Errorf("failed to write %s section: %w", s.name, err)
		}
	}

	// Temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
// Returns nil if valid, or an error describing what's wrong.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.Paths.PullFolder) == "" {
		return ErrMissingPullFolder
	}
	if strings.TrimSpace(cfg.Paths.PushFolder) == "" {
		return ErrMissingPushFolder
	}
	if !strings.HasPrefix(cfg.Paths.PushFolder, "/") || !strings.HasPrefix(cfg.Paths.StartFolder, "/") {
		return ErrRelativeRemoteFolder
	}
	if cfg.Device.PollIntervalSeconds < 1 || cfg.Device.PollIntervalSeconds > 3600 {
		return ErrInvalidPollInterval
	}
	if cfg.Bridge.CommandTimeoutSeconds < 1 {
		return ErrInvalidTimeout
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}

// PollInterval returns the device watcher interval.
func (cfg *Config) PollInterval() time.Duration {
	return time.Duration(cfg.Device.PollIntervalSeconds) * time.Second
}

// CommandTimeout returns the bound on waiting for the device lock.
func (cfg *Config) CommandTimeout() time.Duration {
	return time.Duration(cfg.Bridge.CommandTimeoutSeconds) * time.Second
}

// LogFile returns the configured log file or the default one.
func (cfg *Config) LogFile() string {
	if cfg.Logging.File != "" {
		return cfg.Logging.File
	}
	return filepath.Join(LogDirectory(), "freedroid.log")
}

// Keys lists every settable key as section.key.
func Keys() []string {
	return []string{
		"bridge.adb_path", "bridge.command_timeout_seconds",
		"paths.pull_folder", "paths.push_folder", "paths.start_folder",
		"browse.follow_symlinks", "browse.hide_system_dirs",
		"device.default_serial", "device.poll_interval_seconds",
		"transfer.check_disk_space",
		"notifications.enabled", "notifications.show_batch_complete", "notifications.show_batch_failed",
		"logging.file", "logging.level",
	}
}

// Set assigns one section.key from its string form.
func (cfg *Config) Set(key, value string) error {
	parseBool := func(dst *bool) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}
	parseInt := func(dst *int) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	switch key {
	case "bridge.adb_path":
		cfg.Bridge.ADBPath = value
	case "bridge.command_timeout_seconds":
		return parseInt(&cfg.Bridge.CommandTimeoutSeconds)
	case "paths.pull_folder":
		cfg.Paths.PullFolder = value
	case "paths.push_folder":
		cfg.Paths.PushFolder = value
	case "paths.start_folder":
		cfg.Paths.StartFolder = value
	case "browse.follow_symlinks":
		return parseBool(&cfg.Browse.FollowSymlinks)
	case "browse.hide_system_dirs":
		return parseBool(&cfg.Browse.HideSystemDirs)
	case "device.default_serial":
		cfg.Device.DefaultSerial = value
	case "device.poll_interval_seconds":
		return parseInt(&cfg.Device.PollIntervalSeconds)
	case "transfer.check_disk_space":
		return parseBool(&cfg.Transfer.CheckDiskSpace)
	case "notifications.enabled":
		return parseBool(&cfg.Notifications.Enabled)
	case "notifications.show_batch_complete":
		return parseBool(&cfg.Notifications.ShowBatchComplete)
	case "notifications.show_batch_failed":
		return parseBool(&cfg.Notifications.ShowBatchFailed)
	case "logging.file":
		cfg.Logging.File = value
	case "logging.level":
		cfg.Logging.Level = strings.ToLower(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}
