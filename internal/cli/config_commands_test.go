package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freedroid/freedroid/internal/config"
)

// TestConfigPath tests the config path command
func TestConfigPath(t *testing.T) {
	cmd := newConfigPathCmd()
	if cmd == nil {
		t.Fatal("newConfigPathCmd() returned nil")
	}

	if cmd.Use != "path" {
		t.Errorf("Expected Use='path', got '%s'", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Short description is empty")
	}
}

// TestConfigShow tests the config show command
func TestConfigShow(t *testing.T) {
	cmd := newConfigShowCmd()
	if cmd == nil {
		t.Fatal("newConfigShowCmd() returned nil")
	}

	if cmd.Use != "show" {
		t.Errorf("Expected Use='show', got '%s'", cmd.Use)
	}

	if cmd.RunE == nil {
		t.Error("RunE function is nil")
	}
}

// TestConfigInit tests the config init command structure
func TestConfigInit(t *testing.T) {
	cmd := newConfigInitCmd()
	if cmd == nil {
		t.Fatal("newConfigInitCmd() returned nil")
	}

	if cmd.Use != "init" {
		t.Errorf("Expected Use='init', got '%s'", cmd.Use)
	}

	if cmd.RunE == nil {
		t.Error("RunE function is nil")
	}

	if cmd.Flags().Lookup("force") == nil {
		t.Error("--force flag not found")
	}
}

// TestConfigCmd tests the config command group
func TestConfigCmd(t *testing.T) {
	cmd := newConfigCmd()
	if cmd == nil {
		t.Fatal("newConfigCmd() returned nil")
	}

	if cmd.Use != "config" {
		t.Errorf("Expected Use='config', got '%s'", cmd.Use)
	}

	subcommands := cmd.Commands()
	expectedSubs := []string{"init", "show", "set", "path"}

	if len(subcommands) != len(expectedSubs) {
		t.Errorf("Expected %d subcommands, got %d", len(expectedSubs), len(subcommands))
	}

	foundSubs := make(map[string]bool)
	for _, sub := range subcommands {
		foundSubs[sub.Name()] = true
	}

	for _, expected := range expectedSubs {
		if !foundSubs[expected] {
			t.Errorf("Subcommand '%s' not found", expected)
		}
	}
}

// TestConfigSet tests that set writes through to the file
func TestConfigSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freedroid.conf")
	var out bytes.Buffer

	if err := runConfigSet(&out, path, "transfer.check_disk_space", "false"); err != nil {
		t.Fatalf("runConfigSet failed: %v", err)
	}
	if err := runConfigSet(&out, path, "paths.push_folder", "/sdcard/Music"); err != nil {
		t.Fatalf("runConfigSet failed: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Transfer.CheckDiskSpace {
		t.Error("check_disk_space was not saved")
	}
	if cfg.Paths.PushFolder != "/sdcard/Music" {
		t.Errorf("push_folder = %q", cfg.Paths.PushFolder)
	}
	if !strings.Contains(out.String(), "paths.push_folder = /sdcard/Music") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

// TestConfigSet_Rejected tests unknown keys and invalid values
func TestConfigSet_Rejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freedroid.conf")
	var out bytes.Buffer

	if err := runConfigSet(&out, path, "paths.nope", "x"); !errors.Is(err, config.ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
	if err := runConfigSet(&out, path, "paths.push_folder", "relative/dir"); err == nil {
		t.Error("expected a relative push folder to be rejected")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("rejected settings must not create the file")
	}
}

// TestConfigInitInteractive drives init with scripted answers
func TestConfigInitInteractive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "freedroid.conf")
	pullDir := filepath.Join(dir, "Phone")
	adbPath := filepath.Join(dir, "adb")
	if err := os.WriteFile(adbPath, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	answers := strings.Join([]string{
		adbPath,        // adb executable
		pullDir,        // pull folder
		"",             // push folder, keep default
		"/sdcard/DCIM", // start folder
		"n",            // disk space check
		"",             // notifications, keep default
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := runConfigInit(strings.NewReader(answers), &out, path, false); err != nil {
		t.Fatalf("runConfigInit failed: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Paths.PullFolder != pullDir {
		t.Errorf("pull_folder = %q, want %q", cfg.Paths.PullFolder, pullDir)
	}
	if cfg.Paths.PushFolder != "/sdcard/Download" {
		t.Errorf("push_folder = %q", cfg.Paths.PushFolder)
	}
	if cfg.Paths.StartFolder != "/sdcard/DCIM" {
		t.Errorf("start_folder = %q", cfg.Paths.StartFolder)
	}
	if cfg.Transfer.CheckDiskSpace {
		t.Error("check_disk_space should be false")
	}
	if !cfg.Notifications.Enabled {
		t.Error("notifications should keep their default")
	}
}

// TestConfigInitKeepsExisting tests that declining leaves the file alone
func TestConfigInitKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freedroid.conf")
	if err := os.WriteFile(path, []byte("[paths]\npush_folder = /sdcard/Keep\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := runConfigInit(strings.NewReader("n\n"), &out, path, false); err != nil {
		t.Fatalf("runConfigInit failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "/sdcard/Keep") {
		t.Errorf("existing config was modified: %q", data)
	}
}
