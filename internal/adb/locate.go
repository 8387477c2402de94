package adb

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "adb.exe"
	}
	return "adb"
}

// LocateTool finds the adb executable. An explicitly configured path must
// exist. Otherwise platform-tools beside the running executable is tried,
// then PATH.
func LocateTool(configured string) (string, error) {
	if configured != "" {
		if info, err := os.Stat(configured); err == nil && !info.IsDir() {
			return configured, nil
		}
		return "", ErrToolUnavailable
	}

	if self, err := os.Executable(); err == nil {
		dir := filepath.Dir(self)
		candidates := []string{
			filepath.Join(dir, "platform-tools", binaryName()),
			filepath.Join(dir, "resources", "platform-tools", runtime.GOOS, binaryName()),
		}
		for _, c := range candidates {
			if info, err := os.Stat(c); err == nil && !info.IsDir() {
				return c, nil
			}
		}
	}

	if p, err := exec.LookPath(binaryName()); err == nil {
		return p, nil
	}
	return "", ErrToolUnavailable
}
