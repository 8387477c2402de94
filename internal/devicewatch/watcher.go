// Package devicewatch polls `adb devices` in the background and announces
// changes in the set of usable devices on the event bus.
package devicewatch

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/freedroid/freedroid/internal/adb"
	"github.com/freedroid/freedroid/internal/constants"
	"github.com/freedroid/freedroid/internal/events"
	"github.com/freedroid/freedroid/internal/logging"
)

// ErrAlreadyRunning is returned by Start on a running watcher.
var ErrAlreadyRunning = errors.New("device watcher is already running")

// Watcher polls the bridge for online devices and publishes a
// DeviceStatusEvent whenever the set of serials or the bridge error changes.
type Watcher struct {
	exec     adb.Executor
	bus      *events.EventBus
	logger   *logging.Logger
	interval time.Duration

	// Shutdown coordination
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.RWMutex

	// Last published state
	polled  bool
	serials []string
	lastErr string
}

// New creates a watcher polling every interval, clamped to
// MinDevicePollInterval. A zero interval selects the default.
func New(exec adb.Executor, interval time.Duration, bus *events.EventBus, logger *logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if interval == 0 {
		interval = constants.DefaultDevicePollInterval
	}
	if interval < constants.MinDevicePollInterval {
		interval = constants.MinDevicePollInterval
	}
	return &Watcher{
		exec:     exec,
		bus:      bus,
		logger:   logger,
		interval: interval,
	}
}

// Start polls once immediately and then on every tick until ctx is done
// or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.mu.Unlock()

	w.logger.Debug().Str("poll_interval", w.interval.String()).Msg("Device watcher starting")

	w.Poll(ctx)

	w.wg.Add(1)
	go w.pollLoop(ctx, w.stopChan)
	return nil
}

// Stop ends the polling loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Debug().Msg("Device watcher stopped")
}

// IsRunning returns whether the polling loop is active.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Serials returns the online serials seen by the last poll.
func (w *Watcher) Serials() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.serials)
}

func (w *Watcher) pollLoop(ctx context.Context, stop <-chan struct{}) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll queries the bridge once. It reports whether the observed state
// differs from the previous poll, in which case an event was published.
func (w *Watcher) Poll(ctx context.Context) bool {
	devices, err := adb.Devices(ctx, w.exec)
	serials := adb.OnlineSerials(devices)
	slices.Sort(serials)

	errText := ""
	if err != nil {
		errText = err.Error()
		serials = nil
	}

	w.mu.Lock()
	changed := !w.polled || errText != w.lastErr || !slices.Equal(serials, w.serials)
	w.polled = true
	w.serials = serials
	w.lastErr = errText
	w.mu.Unlock()

	if !changed {
		return false
	}

	if err != nil {
		w.logger.Warn().Err(err).Msg("device poll failed")
	} else {
		w.logger.Info().Strs("devices", serials).Msg("device list changed")
	}
	w.bus.Publish(&events.DeviceStatusEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventDeviceStatus, Time: time.Now()},
		Serials:   slices.Clone(serials),
		Connected: len(serials) > 0,
		Error:     err,
	})
	return true
}
