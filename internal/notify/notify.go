// Package notify provides cross-platform desktop notifications for finished
// transfers. It uses github.com/gen2brain/beeep for the platform backends.
package notify

import (
	"path/filepath"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/freedroid/freedroid/internal/logging"
	"github.com/freedroid/freedroid/internal/models"
)

// Notifier handles desktop notifications.
type Notifier struct {
	logger *logging.Logger
	cfg    Config
	mu     sync.RWMutex

	// send is replaced in tests
	send func(title, message string) error
}

// Config holds notification configuration.
type Config struct {
	// Enabled determines if notifications are sent at all.
	Enabled bool

	// ShowBatchComplete notifies when every file transferred.
	ShowBatchComplete bool

	// ShowBatchFailed notifies when some or all files failed.
	ShowBatchFailed bool
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:           true,
		ShowBatchComplete: true,
		ShowBatchFailed:   true,
	}
}

// NewNotifier creates a new notifier with the given configuration.
func NewNotifier(cfg *Config, logger *logging.Logger) *Notifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Notifier{
		logger: logger,
		cfg:    *cfg,
		send:   sendDesktop,
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cfg.Enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cfg.Enabled
}

// BatchComplete notifies about a finished pull or push.
func (n *Notifier) BatchComplete(summary *models.OperationSummary) {
	if summary == nil || !n.IsEnabled() {
		return
	}

	n.mu.RLock()
	cfg := n.cfg
	n.mu.RUnlock()

	title, message := compose(summary)
	if summary.Outcome == models.OutcomeFull && !cfg.ShowBatchComplete {
		return
	}
	if summary.Outcome != models.OutcomeFull && !cfg.ShowBatchFailed {
		return
	}

	if err := n.send(title, message); err != nil {
		n.logger.Warn().Err(err).Str("batch", summary.BatchID).Msg("Failed to send transfer notification")
	}
}

// compose builds the notification text for a summary.
func compose(s *models.OperationSummary) (title, message string) {
	switch s.Outcome {
	case models.OutcomeFull:
		title = "Transfer complete"
	case models.OutcomePartial:
		title = "Transfer finished with errors"
	default:
		title = "Transfer failed"
	}

	message = s.Headline()
	if s.Direction == models.DirectionPull && s.Totals != nil && s.Totals.DestinationRoot != "" {
		message += "\n" + shortenPath(s.Totals.DestinationRoot)
	}
	if firstErr := firstError(s); firstErr != "" {
		message += "\n" + truncate(firstErr, 100)
	}
	return title, message
}

func firstError(s *models.OperationSummary) string {
	for _, item := range s.Items {
		if !item.Success && item.Error != "" {
			return item.Name + ": " + item.Error
		}
	}
	return ""
}

func sendDesktop(title, message string) error {
	// beeep.Notify is cross-platform:
	// - Windows: toast notifications
	// - macOS: NSUserNotificationCenter
	// - Linux: D-Bus notifications
	return beeep.Notify(title, message, "")
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// shortenPath abbreviates a long path for display in notifications.
func shortenPath(path string) string {
	const maxLen = 60

	if len(path) <= maxLen {
		return path
	}

	// Keep the volume plus the last two components
	_, file := filepath.Split(path)
	parentDir := filepath.Base(filepath.Dir(path))
	short := filepath.Join("...", parentDir, file)

	vol := filepath.VolumeName(path)
	if vol != "" && len(vol)+len(short)+1 <= maxLen {
		short = vol + string(filepath.Separator) + short
	}

	if len(short) > maxLen {
		return "..." + path[len(path)-(maxLen-3):]
	}
	return short
}

// Alert sends a prominent notification, falling back to a regular one.
func (n *Notifier) Alert(message string) {
	if !n.IsEnabled() {
		return
	}

	title := "freedroid"
	if err := beeep.Alert(title, message, ""); err != nil {
		if err := n.send(title, message); err != nil {
			n.logger.Error().Err(err).Str("message", message).Msg("Failed to send alert notification")
		}
	}
}

