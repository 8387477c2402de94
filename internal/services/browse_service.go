package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/freedroid/freedroid/internal/adb"
	"github.com/freedroid/freedroid/internal/events"
	"github.com/freedroid/freedroid/internal/logging"
	"github.com/freedroid/freedroid/internal/models"
	"github.com/freedroid/freedroid/internal/pathutil"
	"github.com/freedroid/freedroid/internal/remotefs"
)

// BrowseService lists device directories and measures sizes.
type BrowseService struct {
	exec     adb.Executor
	opts     remotefs.Options
	eventBus *events.EventBus
	logger   *logging.Logger

	wg sync.WaitGroup // background size computations
}

// NewBrowseService creates a BrowseService. eventBus may be nil.
func NewBrowseService(exec adb.Executor, opts remotefs.Options, eventBus *events.EventBus, logger *logging.Logger) *BrowseService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &BrowseService{
		exec:     exec,
		opts:     opts,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Provider returns the device filesystem view for deviceID.
func (bs *BrowseService) Provider(deviceID string) *remotefs.Provider {
	return remotefs.New(bs.exec, deviceID, bs.opts, bs.logger)
}

// Navigate lists dir and, on success, makes it the session's current
// directory. On failure the session keeps its previous listing.
func (bs *BrowseService) Navigate(ctx context.Context, sess *Session, dir string) ([]models.DirectoryEntry, error) {
	dir = pathutil.CleanRemote(dir)
	entries, err := bs.Provider(sess.DeviceID).List(ctx, dir)
	if err != nil {
		return nil, err
	}
	sess.setListing(dir, entries)
	return sess.Entries(), nil
}

// Up navigates to the parent of the current directory.
func (bs *BrowseService) Up(ctx context.Context, sess *Session) ([]models.DirectoryEntry, error) {
	return bs.Navigate(ctx, sess, pathutil.RemoteDir(sess.CurrentPath()))
}

// Select marks device paths for the next pull. Entries of the current
// listing are used as-is; other paths are checked on the device. A path
// that cannot be checked is still selected as a file so the pull reports it.
func (bs *BrowseService) Select(ctx context.Context, sess *Session, paths ...string) error {
	listed := make(map[string]models.DirectoryEntry)
	for _, e := range sess.Entries() {
		listed[e.Path] = e
	}

	provider := bs.Provider(sess.DeviceID)
	for _, p := range paths {
		p = pathutil.CleanRemote(p)
		if e, ok := listed[p]; ok {
			sess.Selection.Add(e)
			continue
		}

		isDir, err := provider.IsDir(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", p, err)
		}
		entry := models.DirectoryEntry{Name: pathutil.RemoteBase(p), Path: p, IsDirectory: isDir}
		if !isDir {
			if st, err := provider.Stat(ctx, p); err == nil {
				entry.Size = st.Size
			} else {
				bs.logger.Debug().Err(err).Str("path", p).Msg("stat failed, selecting with unknown size")
			}
		}
		sess.Selection.Add(entry)
	}
	return nil
}

// ComputeSize returns the approximate size of a device directory.
func (bs *BrowseService) ComputeSize(ctx context.Context, deviceID, path string) (int64, error) {
	return bs.Provider(deviceID).DirSize(ctx, path)
}

// ComputeSizeAsync measures path in the background. The result is
// published as a SizeComputedEvent, recorded in the selection if the item
// is selected, and written into the displayed listing only if the session
// has not navigated since the request.
func (bs *BrowseService) ComputeSizeAsync(ctx context.Context, sess *Session, path string) {
	path = pathutil.CleanRemote(path)
	gen := sess.Generation()

	bs.wg.Add(1)
	go func() {
		defer bs.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				bs.logger.Error().Msgf("PANIC computing size of %s: %v", path, r)
			}
		}()

		size, err := bs.ComputeSize(ctx, sess.DeviceID, path)
		if err != nil {
			bs.logger.Debug().Err(err).Str("path", path).Msg("size unavailable")
			bs.eventBus.PublishSizeComputed(sess.DeviceID, path, 0, err)
			return
		}

		sess.Selection.UpdateSize(path, size)
		if !sess.updateEntrySize(gen, path, size) {
			bs.logger.Debug().Str("path", path).Msg("listing changed, size not applied to entries")
		}
		bs.eventBus.PublishSizeComputed(sess.DeviceID, path, size, nil)
	}()
}

// Wait blocks until background size computations finish.
func (bs *BrowseService) Wait() {
	bs.wg.Wait()
}

// LocalSize walks a host directory and reports its file count and bytes.
func (bs *BrowseService) LocalSize(ctx context.Context, path string, onProgress func(files, bytes int64)) (pathutil.WalkStats, error) {
	abs, err := pathutil.Resolve(path, true)
	if err != nil {
		return pathutil.WalkStats{}, err
	}
	return pathutil.LocalFolderSize(ctx, abs, bs.logger, onProgress)
}
