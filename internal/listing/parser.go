// Package listing turns long-format directory listings (`ls -l`) captured
// from the device into DirectoryEntry values.
package listing

import (
	"sort"
	"strconv"
	"strings"

	"github.com/freedroid/freedroid/internal/models"
	"github.com/freedroid/freedroid/internal/pathutil"
)

// Token positions in a long-format line:
// perms links owner group size date time name...
const (
	minTokens  = 8
	sizeToken  = 4
	nameToken  = 7
	typeChars  = "-dlbcsp"
	linkMarker = "->"
)

// systemDirs are directories hidden when listing the filesystem root
var systemDirs = map[string]bool{
	"proc": true, "sys": true, "acct": true, "config": true, "d": true,
	"dev": true, "etc": true, "init.rc": true, "mnt": true, "odm": true,
	"oem": true, "product": true, "res": true, "root": true, "sbin": true,
	"vendor": true,
}

// Line is one parsed listing row, before it becomes an entry.
type Line struct {
	Type   byte // first permission character
	Size   int64
	Name   string
	Target string // symlink target, empty unless "->" was present
}

// ParseLine parses one listing row. ok is false for headers, blank lines,
// malformed rows and the "." / ".." entries.
func ParseLine(raw string) (Line, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "total ") {
		return Line{}, false
	}

	tokens := strings.Fields(raw)
	if len(tokens) < minTokens {
		return Line{}, false
	}
	if strings.IndexByte(typeChars, tokens[0][0]) < 0 {
		return Line{}, false
	}

	l := Line{Type: tokens[0][0]}
	if n, err := strconv.ParseInt(tokens[sizeToken], 10, 64); err == nil && n >= 0 {
		l.Size = n
	}

	nameParts := tokens[nameToken:]
	if i := indexOf(nameParts, linkMarker); i > 0 {
		l.Name = strings.Join(nameParts[:i], " ")
		l.Target = strings.Join(nameParts[i+1:], " ")
	} else {
		l.Name = strings.Join(nameParts, " ")
	}

	if l.Name == "" || l.Name == "." || l.Name == ".." {
		return Line{}, false
	}
	return l, true
}

func indexOf(tokens []string, s string) int {
	for i, t := range tokens {
		if t == s {
			return i
		}
	}
	return -1
}

// Parse converts the output of a long-format listing of dir into sorted
// entries. Unusable lines are skipped; an empty result is an empty
// directory, not an error. Symlinks are reported as files until resolved.
func Parse(output, dir string) []models.DirectoryEntry {
	entries := make([]models.DirectoryEntry, 0)
	for _, raw := range strings.Split(output, "\n") {
		l, ok := ParseLine(raw)
		if !ok {
			continue
		}
		isDir := l.Type == 'd'
		size := l.Size
		if isDir {
			size = 0
		}
		entries = append(entries, models.DirectoryEntry{
			Name:        l.Name,
			Path:        pathutil.JoinRemote(dir, l.Name),
			IsDirectory: isDir,
			Size:        size,
			IsSymlink:   l.Type == 'l',
		})
	}

	SortEntries(entries)
	return entries
}

// SortEntries orders directories first, then names case-insensitively.
func SortEntries(entries []models.DirectoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDirectory != b.IsDirectory {
			return a.IsDirectory
		}
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.Name < b.Name
	})
}

// IsSystemDir reports whether name is hidden at the filesystem root.
func IsSystemDir(name string) bool {
	return systemDirs[name]
}

// HideSystemDirs drops deny-listed directories from a listing of "/".
// Files keep their place whatever their name, so symlinks must be resolved
// first. Other directories are returned unchanged.
func HideSystemDirs(dir string, entries []models.DirectoryEntry) []models.DirectoryEntry {
	if pathutil.CleanRemote(dir) != "/" {
		return entries
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.IsDirectory && systemDirs[e.Name] {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
