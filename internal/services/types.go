// Package services provides frontend-agnostic orchestration for browsing a
// device and moving files to and from it. This layer sits between the CLI
// and the adb-backed packages and keeps all per-session state explicit.
package services

import (
	"context"
	"sync"

	"github.com/freedroid/freedroid/internal/models"
	"github.com/freedroid/freedroid/internal/pathutil"
	"github.com/freedroid/freedroid/internal/selection"
)

// Session is the browsing state of one user against one device. Every
// service call takes the session explicitly; nothing is kept globally.
type Session struct {
	DeviceID  string
	Selection *selection.Model

	mu          sync.RWMutex
	currentPath string
	entries     []models.DirectoryEntry

	// generation changes on every successful listing so late background
	// results for an old listing can be recognized and dropped
	generation uint64
}

// NewSession creates a session for deviceID positioned at startPath.
func NewSession(deviceID, startPath string) *Session {
	return &Session{
		DeviceID:    deviceID,
		Selection:   selection.New(),
		currentPath: pathutil.CleanRemote(startPath),
	}
}

// CurrentPath returns the directory being displayed.
func (s *Session) CurrentPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPath
}

// Entries returns a copy of the displayed listing.
func (s *Session) Entries() []models.DirectoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DirectoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Generation identifies the displayed listing.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Session) setListing(dir string, entries []models.DirectoryEntry) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPath = dir
	s.entries = entries
	s.generation++
	return s.generation
}

// updateEntrySize sets the size of a displayed entry if the listing has
// not been replaced since gen.
func (s *Session) updateEntrySize(gen uint64, path string, size int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	for i := range s.entries {
		if s.entries[i].Path == path {
			s.entries[i].Size = size
			return true
		}
	}
	return false
}

// Notifier is told about every finished operation.
type Notifier interface {
	BatchComplete(summary *models.OperationSummary)
}

// TransferOptions configures TransferService.
type TransferOptions struct {
	// PullRoot is the host directory pulls land in when the caller names none.
	PullRoot string

	// PushRoot is the device directory pushes land in when the caller names none.
	PushRoot string

	// CheckDiskSpace enables the free space preflight before a pull.
	CheckDiskSpace bool
}

// BrowseServiceInterface defines the browse service API.
type BrowseServiceInterface interface {
	// Navigate lists dir and makes it the session's current directory.
	Navigate(ctx context.Context, sess *Session, dir string) ([]models.DirectoryEntry, error)

	// ComputeSizeAsync measures a device directory in the background.
	ComputeSizeAsync(ctx context.Context, sess *Session, path string)

	// Select marks device paths for the next pull.
	Select(ctx context.Context, sess *Session, paths ...string) error
}

// TransferServiceInterface defines the transfer service API.
type TransferServiceInterface interface {
	// PullSelection copies the session's selection to the host.
	PullSelection(ctx context.Context, sess *Session, destRoot string) (*models.OperationSummary, error)

	// PushPaths copies host files and directories to the device.
	PushPaths(ctx context.Context, sess *Session, localPaths []string, remoteRoot string) (*models.OperationSummary, error)

	// PullFiles and PushFiles transfer raw file paths without directory expansion.
	PullFiles(ctx context.Context, deviceID string, remotePaths []string, destRoot string) (*models.OperationSummary, error)
	PushFiles(ctx context.Context, deviceID string, localPaths []string, remoteRoot string) (*models.OperationSummary, error)
}

var (
	_ BrowseServiceInterface   = (*BrowseService)(nil)
	_ TransferServiceInterface = (*TransferService)(nil)
)
