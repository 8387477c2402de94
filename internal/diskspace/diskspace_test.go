package diskspace

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckAvailableSpace(t *testing.T) {
	dir := t.TempDir()

	t.Run("SmallRequest", func(t *testing.T) {
		if err := CheckAvailableSpace(dir, 1024, 1.05); err != nil {
			t.Errorf("Expected no error for 1KB, got: %v", err)
		}
	})

	t.Run("VeryLargeRequest", func(t *testing.T) {
		// 100PB exceeds any test machine
		err := CheckAvailableSpace(dir, 100*1024*1024*1024*1024*1024, 1.05)
		if err == nil {
			t.Skip("filesystem reports unknown or unlimited space")
		}
		if !IsInsufficientSpaceError(err) {
			t.Errorf("Expected InsufficientSpaceError, got: %T", err)
		}
	})

	t.Run("MissingDirectoryUsesAncestor", func(t *testing.T) {
		missing := filepath.Join(dir, "Pulled", "not", "yet")
		if err := CheckAvailableSpace(missing, 1024, 1.05); err != nil {
			t.Errorf("Expected no error for missing destination, got: %v", err)
		}
		if GetAvailableSpace(missing) != GetAvailableSpace(dir) {
			t.Error("Expected missing directory to report its ancestor's free space")
		}
	})

	t.Run("SafetyMargin", func(t *testing.T) {
		available := GetAvailableSpace(dir)
		if available == 0 {
			t.Skip("Could not determine available space")
		}
		if err := CheckAvailableSpace(dir, available/4, 1.05); err != nil {
			t.Errorf("Expected room for a quarter of free space, got: %v", err)
		}
		err := CheckAvailableSpace(dir, available, 1.05)
		if err != nil && !IsInsufficientSpaceError(err) {
			t.Errorf("Expected InsufficientSpaceError, got: %T", err)
		}
	})
}

func TestIsInsufficientSpaceError(t *testing.T) {
	err := &InsufficientSpaceError{Path: "/tmp/Pulled", RequiredBytes: 1000, AvailableBytes: 500}

	if !IsInsufficientSpaceError(err) {
		t.Error("Expected IsInsufficientSpaceError to return true")
	}
	if !IsInsufficientSpaceError(fmt.Errorf("pull: %w", err)) {
		t.Error("Expected wrapped error to be recognized")
	}
	if IsInsufficientSpaceError(fmt.Errorf("some other error")) {
		t.Error("Expected IsInsufficientSpaceError to return false for non-disk-space error")
	}
	if IsInsufficientSpaceError(nil) {
		t.Error("Expected IsInsufficientSpaceError to return false for nil")
	}
}

func TestInsufficientSpaceErrorMessage(t *testing.T) {
	err := &InsufficientSpaceError{
		Path:           "/tmp/Pulled",
		RequiredBytes:  1024 * 1024 * 100, // 100MB
		AvailableBytes: 1024 * 1024 * 50,  // 50MB
	}

	msg := err.Error()
	for _, want := range []string{"/tmp/Pulled", "100.00", "50.00"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error message %q should contain %q", msg, want)
		}
	}
}
