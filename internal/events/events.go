// Package events provides the in-process event bus that carries transfer
// progress, size results and device status to whatever surface is attached.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/freedroid/freedroid/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventLog EventType = "log"

	EventBatchStarted  EventType = "batch_started"  // Engine entered Running
	EventBatchProgress EventType = "batch_progress" // One task finished
	EventFileProgress  EventType = "file_progress"  // adb reported a percentage for the current file
	EventBatchComplete EventType = "batch_complete" // Engine returned a BatchResult

	EventSizeComputed EventType = "size_computed" // Background directory size finished
	EventDeviceStatus EventType = "device_status" // Device list changed
)

// LogLevel defines log severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

func newBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// LogEvent represents log messages
type LogEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
	Stage   string
	Error   error
}

// BatchStartedEvent is published when a batch enters Running
type BatchStartedEvent struct {
	BaseEvent
	BatchID   string
	DeviceID  string
	Direction string // "pull" or "push"
	Total     int
}

// BatchProgressEvent is published after each task of a batch completes.
// Status is "pulling" or "pushing".
type BatchProgressEvent struct {
	BaseEvent
	BatchID     string
	Current     int // 1-based index of the task that just finished
	Total       int
	CurrentFile string
	Status      string
	Success     bool
}

// FileProgressEvent carries the percentage adb prints while copying one file
type FileProgressEvent struct {
	BaseEvent
	BatchID     string
	Index       int // 1-based task index
	CurrentFile string
	Percent     int
}

// BatchCompleteEvent is published when a batch returns
type BatchCompleteEvent struct {
	BaseEvent
	BatchID      string
	Direction    string
	TotalFiles   int
	SuccessCount int
	FailedCount  int
	Duration     time.Duration
}

// SizeComputedEvent reports a background directory size result
type SizeComputedEvent struct {
	BaseEvent
	DeviceID string
	Path     string
	Size     int64
	Error    error
}

// DeviceStatusEvent reports the current set of online devices
type DeviceStatusEvent struct {
	BaseEvent
	Serials   []string
	Connected bool
	Error     error // non-nil when the bridge itself could not be queried
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer // Use optimized default (1000)
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer // Cap at maximum
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers (non-blocking with optimized buffer)
// A nil bus discards the event.
func (eb *EventBus) Publish(event Event) {
	if eb == nil {
		return
	}
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	// Send to specific type subscribers
	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
			// Successfully sent
		default:
			// Channel full - event dropped
			eb.droppedEvents.Add(1)
		}
	}

	// Send to all-events subscribers
	for _, ch := range eb.all {
		select {
		case ch <- event:
			// Successfully sent
		default:
			// Channel full - event dropped
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	// Close specific type channels
	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	// Close all-events channels
	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message, stage string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: newBase(EventLog),
		Level:     level,
		Message:   message,
		Stage:     stage,
		Error:     err,
	})
}

// PublishBatchProgress is a convenience method for publishing batch progress events
func (eb *EventBus) PublishBatchProgress(batchID string, current, total int, file, status string, success bool) {
	eb.Publish(&BatchProgressEvent{
		BaseEvent:   newBase(EventBatchProgress),
		BatchID:     batchID,
		Current:     current,
		Total:       total,
		CurrentFile: file,
		Status:      status,
		Success:     success,
	})
}

// PublishFileProgress is a convenience method for publishing per-file percentages
func (eb *EventBus) PublishFileProgress(batchID string, index int, file string, percent int) {
	eb.Publish(&FileProgressEvent{
		BaseEvent:   newBase(EventFileProgress),
		BatchID:     batchID,
		Index:       index,
		CurrentFile: file,
		Percent:     percent,
	})
}

// PublishSizeComputed is a convenience method for publishing size results
func (eb *EventBus) PublishSizeComputed(deviceID, path string, size int64, err error) {
	eb.Publish(&SizeComputedEvent{
		BaseEvent: newBase(EventSizeComputed),
		DeviceID:  deviceID,
		Path:      path,
		Size:      size,
		Error:     err,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
// This prevents memory leaks from abandoned subscriptions
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	// Find and remove the channel from the event type's subscribers
	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			// Remove channel by replacing with last element and truncating
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from all event types
// Use this when cleaning up a subscriber that subscribed to multiple event types
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	// Remove from all event type subscribers
	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	// Remove from all-events subscribers
	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
// Useful for monitoring and detecting if buffer sizes need adjustment
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}

// ResetDroppedEventCount resets the dropped event counter to zero
// Useful for periodic monitoring windows
func (eb *EventBus) ResetDroppedEventCount() int64 {
	return eb.droppedEvents.Swap(0)
}
