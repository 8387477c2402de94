package constants

import (
	"time"
)

// Device defaults
const (
	// DefaultStartFolder - the folder the browser opens on a freshly connected device
	DefaultStartFolder = "/sdcard"

	// DefaultPushFolder - where pushed files land on the device
	DefaultPushFolder = "/sdcard/Download"

	// DefaultPullFolderName - folder under the user's home that receives pulled files
	DefaultPullFolderName = "Pulled"

	// DefaultDevicePollInterval - how often the device watcher runs `adb devices`
	DefaultDevicePollInterval = 3 * time.Second

	// MinDevicePollInterval - lower bound accepted from configuration
	MinDevicePollInterval = 1 * time.Second
)

// Bridge invocation
const (
	// DefaultCommandTimeout - upper bound on waiting for the per-device bridge lock.
	// A started adb process is never killed; this only bounds queueing.
	DefaultCommandTimeout = 300 * time.Second

	// TransferQueueSize - buffered capacity of the engine's work queue
	TransferQueueSize = 64
)

// Preview limits
const (
	// MaxTextPreviewSize - remote text files larger than this are not read with cat (100 KB)
	MaxTextPreviewSize = 100000

	// MaxTextPreviewChars - text content is truncated to this many characters
	MaxTextPreviewChars = 50000

	// MaxLocalTextReadSize - bytes read from a local text file before truncation
	MaxLocalTextReadSize = 4 * MaxTextPreviewChars

	// MaxImagePreviewSize - images this large or larger are not pulled for preview (10 MB)
	MaxImagePreviewSize = 10000000
)

// Disk space safety margin
const (
	// DiskSpaceBufferPercent - additional space to require beyond the selection size (5%)
	DiskSpaceBufferPercent = 0.05
)

// Event System
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios (5000)
	EventBusMaxBuffer = 5000
)

// UI refresh
const (
	// ProgressUpdateInterval - how often terminal progress bars redraw
	ProgressUpdateInterval = 250 * time.Millisecond
)
