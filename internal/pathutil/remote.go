package pathutil

import (
	"fmt"
	"path"
	"strings"
)

// Device paths are always POSIX, whatever the host OS.

// CleanRemote normalizes a device path: duplicate separators collapse and
// trailing separators are dropped. An empty path becomes "/".
func CleanRemote(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean(p)
}

// JoinRemote joins device path elements with "/".
func JoinRemote(base string, elems ...string) string {
	parts := append([]string{base}, elems...)
	joined := path.Join(parts...)
	if joined == "" {
		return "/"
	}
	return joined
}

// RemoteBase returns the last element of a device path.
func RemoteBase(p string) string {
	return path.Base(CleanRemote(p))
}

// RemoteDir returns all but the last element of a device path.
func RemoteDir(p string) string {
	return path.Dir(CleanRemote(p))
}

// RemoteRel returns p relative to root. Both are device paths; p must lie
// strictly inside root.
func RemoteRel(root, p string) (string, error) {
	root = CleanRemote(root)
	p = CleanRemote(p)

	prefix := root
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(p, prefix) || p == root {
		return "", fmt.Errorf("%s is not inside %s", p, root)
	}
	return strings.TrimPrefix(p, prefix), nil
}
