package pathutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/freedroid/freedroid/internal/logging"
)

// WalkStats summarizes a local tree walk.
type WalkStats struct {
	Files           int64 `json:"files"`
	Bytes           int64 `json:"bytes"`
	SkippedSymlinks int64 `json:"skippedSymlinks"`
	SkippedDirs     int64 `json:"skippedDirs"` // unreadable subdirectories
}

// ErrRootUnreadable means the top of a walk could not be listed.
var ErrRootUnreadable = errors.New("cannot read directory")

// WalkFiles visits every regular file under root. Directories are held on an
// explicit stack, so depth is bounded by memory rather than by the call
// stack, and ctx is checked between directories. Symlinks are skipped and
// unreadable subdirectories are skipped; both are logged and counted. Only an
// unreadable root is an error. Within a directory entries are visited in
// lexical order.
func WalkFiles(ctx context.Context, root string, logger *logging.Logger, fn func(path string, info os.FileInfo)) (WalkStats, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	var stats WalkStats

	if _, err := os.ReadDir(root); err != nil {
		return stats, fmt.Errorf("%w %s: %v", ErrRootUnreadable, root, err)
	}

	stack := []string{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			stats.SkippedDirs++
			logger.Warn().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
			continue
		}

		// Push subdirectories in reverse so they pop in lexical order
		var subdirs []string
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())

			if entry.Type()&os.ModeSymlink != 0 {
				stats.SkippedSymlinks++
				logger.Debug().Str("path", full).Msg("skipping symlink")
				continue
			}
			if entry.IsDir() {
				subdirs = append(subdirs, full)
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				logger.Warn().Err(err).Str("path", full).Msg("skipping unreadable file")
				continue
			}
			stats.Files++
			stats.Bytes += info.Size()
			if fn != nil {
				fn(full, info)
			}
		}
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
	return stats, nil
}

// LocalFolderSize sums the sizes of all regular files under root.
// onProgress, when set, is called after each file with running totals.
func LocalFolderSize(ctx context.Context, root string, logger *logging.Logger, onProgress func(files, bytes int64)) (WalkStats, error) {
	var files, bytes int64
	return WalkFiles(ctx, root, logger, func(_ string, info os.FileInfo) {
		files++
		bytes += info.Size()
		if onProgress != nil {
			onProgress(files, bytes)
		}
	})
}

// LocalFile is one file found by ListLocalFiles.
type LocalFile struct {
	Path string // absolute host path
	Rel  string // path relative to the walk root, host separators
	Size int64
}

// ListLocalFiles returns every regular file under root in walk order.
func ListLocalFiles(ctx context.Context, root string, logger *logging.Logger) ([]LocalFile, WalkStats, error) {
	var files []LocalFile
	var relErr error
	stats, err := WalkFiles(ctx, root, logger, func(p string, info os.FileInfo) {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			relErr = err
			return
		}
		files = append(files, LocalFile{Path: p, Rel: rel, Size: info.Size()})
	})
	if err != nil {
		return nil, stats, err
	}
	if relErr != nil {
		return nil, stats, relErr
	}
	return files, stats, nil
}
