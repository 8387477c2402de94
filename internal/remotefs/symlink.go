package remotefs

import (
	"context"

	"github.com/freedroid/freedroid/internal/adb"
	"github.com/freedroid/freedroid/internal/logging"
	"github.com/freedroid/freedroid/internal/models"
)

// ResolveSymlinks sets IsDirectory on every symlink entry from a `test -d`
// round trip against its path. Results are not cached. It returns the
// number of entries whose classification changed.
func ResolveSymlinks(ctx context.Context, exec adb.Executor, deviceID string, entries []models.DirectoryEntry, logger *logging.Logger) int {
	changed := 0
	for i := range entries {
		e := &entries[i]
		if !e.IsSymlink {
			continue
		}

		dir, err := isDir(ctx, exec, deviceID, e.Path)
		if err != nil {
			logger.Warn().Err(err).Str("path", e.Path).Msg("symlink test failed, treating as file")
		}
		if dir != e.IsDirectory {
			changed++
		}
		e.IsDirectory = dir
		if dir {
			e.Size = 0
		}
	}
	return changed
}

func isDir(ctx context.Context, exec adb.Executor, deviceID, path string) (bool, error) {
	res, err := adb.Shell(ctx, exec, deviceID, "test -d "+adb.Quote(path))
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}
