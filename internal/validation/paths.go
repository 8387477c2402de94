// Package validation checks names and paths that arrive from the device
// before they are used to build host paths.
package validation

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ValidateEntryName validates a single file name reported by the device.
//
// Returns an error if the name:
//   - Is empty, "." or ".."
//   - Contains a path separator (/ or \)
//   - Contains a null byte
//
// Names like "foo..bar.txt" are fine.
func ValidateEntryName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("name contains null byte: %q", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("name cannot contain path separators: %s", name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("name cannot be %q", name)
	}
	return nil
}

// ValidateRemoteRelative validates a "/"-separated path relative to a device
// directory, such as one derived from `find` output. It must not be
// absolute and must not climb out of its root.
func ValidateRemoteRelative(rel string) error {
	if rel == "" {
		return fmt.Errorf("relative path cannot be empty")
	}
	if strings.ContainsRune(rel, 0) {
		return fmt.Errorf("relative path contains null byte: %q", rel)
	}
	if strings.HasPrefix(rel, "/") {
		return fmt.Errorf("relative path cannot be absolute: %s", rel)
	}
	clean := path.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, "../") || clean == "." {
		return fmt.Errorf("relative path escapes its directory: %s", rel)
	}
	return nil
}

// ValidatePathInDirectory validates that a host path, when resolved, stays
// within baseDir. Relative paths are resolved against baseDir.
//
// Example:
//
//	ValidatePathInDirectory("../../etc/passwd", "/home/me/Pulled") // Error: escapes base dir
//	ValidatePathInDirectory("DCIM/a.jpg", "/home/me/Pulled")       // OK
func ValidatePathInDirectory(p string, baseDir string) error {
	if p == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if baseDir == "" {
		return fmt.Errorf("base directory cannot be empty")
	}

	cleanBase := filepath.Clean(baseDir)
	if !filepath.IsAbs(cleanBase) {
		abs, err := filepath.Abs(cleanBase)
		if err != nil {
			return fmt.Errorf("failed to resolve base directory: %w", err)
		}
		cleanBase = abs
	}

	resolved := filepath.Clean(p)
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(cleanBase, resolved)
	}

	rel, err := filepath.Rel(cleanBase, resolved)
	if err != nil {
		return fmt.Errorf("failed to compute relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path escapes base directory: %s (base: %s)", p, baseDir)
	}
	return nil
}
