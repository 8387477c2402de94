// Package pathutil holds path helpers for both sides of a transfer: POSIX
// device paths and host paths, plus bounded local tree walks.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" (alone, or followed by a separator) with
// the user's home directory. Other paths, including "~user", are returned
// unchanged.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, p[1:]), nil
}

// Resolve expands ~ and makes p absolute; an empty p is the working
// directory. With followLinks, symlinks in the part of the path that
// exists are evaluated and the missing tail is appended as given.
func Resolve(p string, followLinks bool) (string, error) {
	if p == "" {
		p = "."
	}
	p, err := ExpandHome(p)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if !followLinks {
		return abs, nil
	}

	existing, tail := splitExisting(abs)
	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		resolved = existing
	}
	return filepath.Join(append([]string{resolved}, tail...)...), nil
}

// splitExisting returns the deepest existing ancestor of abs and the
// components below it, top-down.
func splitExisting(abs string) (string, []string) {
	var tail []string
	for cur := abs; ; {
		if _, err := os.Lstat(cur); err == nil {
			return cur, tail
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		tail = append([]string{filepath.Base(cur)}, tail...)
		cur = parent
	}
}

// ResolveDestination resolves a host directory that transfers are written
// into. The directory need not exist yet.
func ResolveDestination(p string) (string, error) {
	return Resolve(p, true)
}

// ResolveSources makes host source paths absolute without following
// symlinks, so a linked file or directory keeps its own name on the
// device. Paths that cannot be resolved are cleaned and kept, leaving the
// failure to be reported per file.
func ResolveSources(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		abs, err := Resolve(p, false)
		if err != nil {
			abs = filepath.Clean(p)
		}
		out[i] = abs
	}
	return out
}
