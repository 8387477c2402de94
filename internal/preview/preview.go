// Package preview produces file metadata and a small content preview for
// device and host files: text is read inline, images are made available as
// a host file.
package preview

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/freedroid/freedroid/internal/adb"
	"github.com/freedroid/freedroid/internal/constants"
	"github.com/freedroid/freedroid/internal/logging"
	"github.com/freedroid/freedroid/internal/pathutil"
	"github.com/freedroid/freedroid/internal/remotefs"
)

// Kind of preview content
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

var (
	textExtensions  = []string{".txt", ".md", ".json", ".xml", ".csv", ".log", ".js", ".py", ".java", ".html", ".css"}
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}
)

// Metadata describes a file.
type Metadata struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Type     string    `json:"type"` // upper-case extension, "TXT"
}

// Content is the previewable part of a file.
type Content struct {
	Kind      Kind   `json:"type"`
	Text      string `json:"content,omitempty"`
	Path      string `json:"path,omitempty"` // host path of an image
	MIME      string `json:"mime,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Result is metadata plus an optional preview. Preview is nil for
// unsupported types, files over the limits, or when fetching failed.
type Result struct {
	Metadata Metadata `json:"metadata"`
	Preview  *Content `json:"preview,omitempty"`
}

// Service previews device files.
type Service struct {
	exec   adb.Executor
	dir    string // host directory images are pulled into
	logger *logging.Logger
}

// New creates a Service that pulls image previews into dir.
func New(exec adb.Executor, dir string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{exec: exec, dir: dir, logger: logger}
}

// Remote previews a device file.
func (s *Service) Remote(ctx context.Context, deviceID, remotePath string) (*Result, error) {
	remotePath = pathutil.CleanRemote(remotePath)
	provider := remotefs.New(s.exec, deviceID, remotefs.DefaultOptions, s.logger)

	st, err := provider.Stat(ctx, remotePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file metadata: %w", err)
	}

	ext := strings.ToLower(path.Ext(remotePath))
	res := &Result{Metadata: Metadata{
		Name:     path.Base(remotePath),
		Size:     st.Size,
		Modified: st.ModTime,
		Type:     typeOf(ext),
	}}

	switch {
	case isText(ext) && st.Size < constants.MaxTextPreviewSize:
		text, err := provider.ReadFile(ctx, remotePath)
		if err != nil {
			s.logger.Debug().Err(err).Str("path", remotePath).Msg("text preview unavailable")
			break
		}
		res.Preview = textContent(text)

	case isImage(ext) && st.Size < constants.MaxImagePreviewSize:
		local, err := s.pullImage(ctx, deviceID, remotePath)
		if err != nil {
			s.logger.Debug().Err(err).Str("path", remotePath).Msg("image preview unavailable")
			break
		}
		res.Preview = imageContent(local)
	}
	return res, nil
}

func (s *Service) pullImage(ctx context.Context, deviceID, remotePath string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	local := filepath.Join(s.dir, path.Base(remotePath))
	out, err := s.exec.Execute(ctx, deviceID, "pull", remotePath, local)
	if err != nil {
		return "", err
	}
	if err := out.Err("pull " + remotePath); err != nil {
		return "", err
	}
	return local, nil
}

// Local previews a host file. Images are referenced in place.
func Local(localPath string) (*Result, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(localPath))
	res := &Result{Metadata: Metadata{
		Name:     filepath.Base(localPath),
		Size:     info.Size(),
		Modified: info.ModTime(),
		Type:     typeOf(ext),
	}}
	if info.IsDir() {
		return res, nil
	}

	switch {
	case isText(ext):
		f, err := os.Open(localPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, constants.MaxLocalTextReadSize))
		if err != nil {
			return nil, err
		}
		res.Preview = textContent(string(data))
		if info.Size() > constants.MaxLocalTextReadSize {
			res.Preview.Truncated = true
		}

	case isImage(ext):
		res.Preview = imageContent(localPath)
	}
	return res, nil
}

func textContent(text string) *Content {
	c := &Content{Kind: KindText, MIME: mimetype.Detect([]byte(text)).String()}
	c.Text, c.Truncated = truncateChars(text, constants.MaxTextPreviewChars)
	return c
}

func imageContent(localPath string) *Content {
	c := &Content{Kind: KindImage, Path: localPath}
	if m, err := mimetype.DetectFile(localPath); err == nil {
		c.MIME = m.String()
	}
	return c
}

// truncateChars cuts s to at most n characters.
func truncateChars(s string, n int) (string, bool) {
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}

func typeOf(ext string) string {
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}

func isText(ext string) bool {
	return slices.Contains(textExtensions, ext)
}

func isImage(ext string) bool {
	return slices.Contains(imageExtensions, ext)
}
