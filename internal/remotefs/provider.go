// Package remotefs reads the device filesystem through the adb shell. It is
// the only place that knows which shell commands produce listings, sizes and
// file lists; callers see DirectoryEntry values and plain errors.
package remotefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/freedroid/freedroid/internal/adb"
	"github.com/freedroid/freedroid/internal/listing"
	"github.com/freedroid/freedroid/internal/logging"
	"github.com/freedroid/freedroid/internal/models"
	"github.com/freedroid/freedroid/internal/pathutil"
)

// Lister produces the entries of one directory.
type Lister interface {
	List(ctx context.Context, dir string) ([]models.DirectoryEntry, error)
}

// ListingError means the listing command itself failed, as opposed to
// returning an empty directory.
type ListingError struct {
	Dir    string
	Reason string
	Err    error
}

func (e *ListingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot list %s: %v", e.Dir, e.Err)
	}
	return fmt.Sprintf("cannot list %s: %s", e.Dir, e.Reason)
}

func (e *ListingError) Unwrap() error { return e.Err }

var (
	// ErrSizeUnavailable means du produced no usable figure.
	ErrSizeUnavailable = errors.New("could not determine folder size")

	// ErrEnumeration means find could not list a directory tree.
	ErrEnumeration = errors.New("cannot enumerate directory")
)

// Options tunes listings.
type Options struct {
	// FollowSymlinks lists with -L so links report their target's type and size.
	FollowSymlinks bool
	HideSystemDirs bool
}

// DefaultOptions matches the default configuration.
var DefaultOptions = Options{FollowSymlinks: true, HideSystemDirs: true}

// Provider is the adb-backed view of one device's filesystem.
type Provider struct {
	exec     adb.Executor
	deviceID string
	opts     Options
	logger   *logging.Logger
}

// New creates a provider for deviceID.
func New(exec adb.Executor, deviceID string, opts Options, logger *logging.Logger) *Provider {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Provider{exec: exec, deviceID: deviceID, opts: opts, logger: logger}
}

func (p *Provider) shell(ctx context.Context, command string) (*adb.Result, error) {
	return adb.Shell(ctx, p.exec, p.deviceID, command)
}

// listingCommand lists dir with a trailing slash so a symlinked directory
// shows its contents rather than the link itself.
func (p *Provider) listingCommand(dir string) string {
	target := strings.TrimRight(pathutil.CleanRemote(dir), "/") + "/"
	flags := "-l"
	if p.opts.FollowSymlinks {
		flags = "-lL"
	}
	return fmt.Sprintf("ls %s %s 2>/dev/null", flags, adb.Quote(target))
}

// List implements Lister: run the listing, parse it, resolve symlinks and sort.
func (p *Provider) List(ctx context.Context, dir string) ([]models.DirectoryEntry, error) {
	dir = pathutil.CleanRemote(dir)

	res, err := p.shell(ctx, p.listingCommand(dir))
	if err != nil {
		return nil, &ListingError{Dir: dir, Err: err}
	}
	if !res.OK() {
		return nil, &ListingError{Dir: dir, Reason: res.FailureMessage(fmt.Sprintf("exit status %d", res.ExitCode))}
	}

	entries := listing.Parse(res.Stdout, dir)
	if n := ResolveSymlinks(ctx, p.exec, p.deviceID, entries, p.logger); n > 0 {
		listing.SortEntries(entries)
	}
	if p.opts.HideSystemDirs {
		entries = listing.HideSystemDirs(dir, entries)
	}

	p.logger.Debug().Str("dir", dir).Int("entries", len(entries)).Msg("listed directory")
	return entries, nil
}

// IsDir runs `test -d` against path.
func (p *Provider) IsDir(ctx context.Context, path string) (bool, error) {
	return isDir(ctx, p.exec, p.deviceID, path)
}

// FindFiles returns every regular file under dir, recursively, from one
// `find` invocation. A non-zero exit with partial output (typically
// permission errors in some subdirectory) keeps the partial list.
func (p *Provider) FindFiles(ctx context.Context, dir string) ([]string, error) {
	dir = pathutil.CleanRemote(dir)
	res, err := p.shell(ctx, fmt.Sprintf("find %s -type f 2>/dev/null", adb.Quote(dir)))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrEnumeration, dir, err)
	}

	var files []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		files = append(files, line)
	}

	if !res.OK() {
		if len(files) == 0 {
			return nil, fmt.Errorf("%w %s: %s", ErrEnumeration, dir, res.FailureMessage(fmt.Sprintf("exit status %d", res.ExitCode)))
		}
		p.logger.Warn().Str("dir", dir).Int("exit", res.ExitCode).Int("files", len(files)).
			Msg("find reported errors, continuing with partial file list")
	}
	return files, nil
}

// DirSize returns the disk usage of path in bytes. The figure comes from
// `du -s` (KiB blocks) and is an approximation for display only.
func (p *Provider) DirSize(ctx context.Context, path string) (int64, error) {
	path = pathutil.CleanRemote(path)
	res, err := p.shell(ctx, fmt.Sprintf("du -s %s 2>/dev/null", adb.Quote(path)))
	if err != nil {
		return 0, err
	}
	kb, ok := parseDuKilobytes(res.Stdout)
	if !ok || kb <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrSizeUnavailable, path)
	}
	return kb * 1024, nil
}

// parseDuKilobytes reads the first field of du's first non-empty line.
func parseDuKilobytes(out string) (int64, bool) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		n, err := strconv.ParseInt(fields[0], 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Mkdir creates dir and its parents on the device.
func (p *Provider) Mkdir(ctx context.Context, dir string) error {
	return Mkdir(ctx, p.exec, p.deviceID, dir)
}

// Mkdir creates dir and its parents on the device through exec.
func Mkdir(ctx context.Context, exec adb.Executor, deviceID, dir string) error {
	res, err := adb.Shell(ctx, exec, deviceID, "mkdir -p "+adb.Quote(pathutil.CleanRemote(dir)))
	if err != nil {
		return err
	}
	return res.Err("mkdir " + dir)
}

// FileStat is the subset of stat(1) the preview needs.
type FileStat struct {
	Size    int64
	ModTime time.Time
}

// Stat runs `stat -c '%s %Y'` against path.
func (p *Provider) Stat(ctx context.Context, path string) (*FileStat, error) {
	path = pathutil.CleanRemote(path)
	res, err := p.shell(ctx, fmt.Sprintf("stat -c '%%s %%Y' %s", adb.Quote(path)))
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, fmt.Errorf("stat %s: %s", path, res.FailureMessage("no such file"))
	}
	return parseStat(res.Stdout)
}

func parseStat(out string) (*FileStat, error) {
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return nil, fmt.Errorf("unexpected stat output %q", strings.TrimSpace(out))
	}
	size, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("unexpected stat size %q", fields[0])
	}
	mtime, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("unexpected stat mtime %q", fields[1])
	}
	return &FileStat{Size: size, ModTime: time.Unix(mtime, 0)}, nil
}

// ReadFile returns the contents of a small device file via cat.
func (p *Provider) ReadFile(ctx context.Context, path string) (string, error) {
	path = pathutil.CleanRemote(path)
	res, err := p.shell(ctx, "cat "+adb.Quote(path))
	if err != nil {
		return "", err
	}
	if !res.OK() {
		return "", fmt.Errorf("cat %s: %s", path, res.FailureMessage("failed"))
	}
	return res.Stdout, nil
}

var _ Lister = (*Provider)(nil)
