// Package engine executes transfer batches: an ordered list of single-file
// pull or push tasks run one at a time against a device.
//
// A failed task never stops the batch. Every task yields exactly one
// TransferResult, in plan order, so re-running a batch reproduces the same
// result shape.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/freedroid/freedroid/internal/adb"
	"github.com/freedroid/freedroid/internal/concurrency"
	"github.com/freedroid/freedroid/internal/constants"
	"github.com/freedroid/freedroid/internal/events"
	"github.com/freedroid/freedroid/internal/logging"
	"github.com/freedroid/freedroid/internal/models"
	"github.com/freedroid/freedroid/internal/remotefs"
)

// ErrBatchInProgress is returned by Run while another batch is executing.
var ErrBatchInProgress = concurrency.ErrBusy

// State of the engine
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Batch is one unit of execution.
type Batch struct {
	ID              string // generated when empty
	DeviceID        string
	Direction       models.Direction // taken from the first task when empty
	Tasks           []models.TransferTask
	DestinationRoot string
}

// Engine runs batches. It is safe for concurrent use; concurrent callers
// are rejected with ErrBatchInProgress rather than queued.
type Engine struct {
	exec   adb.Executor
	bus    *events.EventBus
	guard  *concurrency.Guard
	logger *logging.Logger
	state  atomic.Int32
}

// New creates an engine. bus may be nil.
func New(exec adb.Executor, bus *events.EventBus, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{
		exec:   exec,
		bus:    bus,
		guard:  concurrency.NewGuard(),
		logger: logger,
	}
}

// State returns the current engine state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Busy reports whether a batch is executing.
func (e *Engine) Busy() bool {
	return e.guard.Busy()
}

// Run executes tasks against deviceID as a new batch.
func (e *Engine) Run(ctx context.Context, deviceID string, tasks []models.TransferTask) (*models.BatchResult, error) {
	return e.RunBatch(ctx, Batch{DeviceID: deviceID, Tasks: tasks})
}

// RunBatch executes b. The only error is ErrBatchInProgress; per-file
// failures are reported inside the result.
func (e *Engine) RunBatch(ctx context.Context, b Batch) (*models.BatchResult, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Direction == "" && len(b.Tasks) > 0 {
		b.Direction = b.Tasks[0].Direction
	}

	var result *models.BatchResult
	err := e.guard.Execute(func() error {
		result = e.run(ctx, b)
		return nil
	})
	if errors.Is(err, concurrency.ErrBusy) {
		e.logger.Warn().Str("batch", b.ID).Msg("batch rejected, another batch is running")
		return nil, ErrBatchInProgress
	}
	return result, err
}

type job struct {
	index int
	task  models.TransferTask
}

func (e *Engine) run(ctx context.Context, b Batch) *models.BatchResult {
	e.state.Store(int32(StateRunning))
	defer e.state.Store(int32(StateCompleted))

	start := time.Now()
	total := len(b.Tasks)
	e.bus.Publish(&events.BatchStartedEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventBatchStarted, Time: start},
		BatchID:   b.ID,
		DeviceID:  b.DeviceID,
		Direction: string(b.Direction),
		Total:     total,
	})
	e.logger.Info().Str("batch", b.ID).Str("device", b.DeviceID).Str("direction", string(b.Direction)).
		Int("tasks", total).Msg("batch started")

	results := make([]models.TransferResult, total)
	queue := make(chan job, constants.TransferQueueSize)
	done := make(chan struct{})

	// Single consumer: tasks run strictly in plan order
	go func() {
		defer close(done)
		for j := range queue {
			res := e.runTask(ctx, b, j)
			results[j.index] = res
			e.bus.PublishBatchProgress(b.ID, j.index+1, total, j.task.Name, j.task.Direction.Status(), res.Success)
		}
	}()

	for i, t := range b.Tasks {
		queue <- job{index: i, task: t}
	}
	close(queue)
	<-done

	br := models.NewBatchResult(b.DestinationRoot, results)
	elapsed := time.Since(start)
	e.bus.Publish(&events.BatchCompleteEvent{
		BaseEvent:    events.BaseEvent{EventType: events.EventBatchComplete, Time: time.Now()},
		BatchID:      b.ID,
		Direction:    string(b.Direction),
		TotalFiles:   br.TotalFiles,
		SuccessCount: br.SuccessCount,
		FailedCount:  br.FailedCount,
		Duration:     elapsed,
	})

	ev := e.logger.Info()
	if br.FailedCount > 0 {
		ev = e.logger.Warn()
	}
	ev.Str("batch", b.ID).Int("succeeded", br.SuccessCount).Int("failed", br.FailedCount).
		Dur("elapsed", elapsed).Msg("batch finished")
	return br
}

// runTask executes one task and never panics past its caller.
func (e *Engine) runTask(ctx context.Context, b Batch, j job) (res models.TransferResult) {
	task := j.task
	res = models.TransferResult{FileName: displayName(task)}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Msgf("PANIC in %s for %s: %v", task.Direction, task.SourcePath, r)
			res = models.TransferResult{FileName: displayName(task), Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	// Cancellation is only honored between tasks
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}

	onStdout := func(chunk []byte) {
		if pct, ok := adb.LastPercent(chunk); ok {
			e.bus.PublishFileProgress(b.ID, j.index+1, task.Name, pct)
		}
	}

	switch task.Direction {
	case models.DirectionPull:
		return e.pull(ctx, b.DeviceID, task, res, onStdout)
	case models.DirectionPush:
		return e.push(ctx, b.DeviceID, task, res, onStdout)
	default:
		res.Error = fmt.Sprintf("unknown direction %q", task.Direction)
		return res
	}
}

func (e *Engine) pull(ctx context.Context, deviceID string, task models.TransferTask, res models.TransferResult, onStdout func([]byte)) models.TransferResult {
	if err := os.MkdirAll(filepath.Dir(task.DestinationPath), 0o755); err != nil {
		res.Error = fmt.Sprintf("cannot create %s: %v", filepath.Dir(task.DestinationPath), err)
		e.logger.Error().Err(err).Str("path", task.DestinationPath).Msg("Pull failed")
		return res
	}

	out, err := e.exec.ExecuteStreaming(ctx, deviceID, onStdout, "pull", task.SourcePath, task.DestinationPath)
	if err != nil {
		res.Error = err.Error()
		e.logger.Error().Err(err).Str("path", task.SourcePath).Msg("Pull failed")
		return res
	}
	if !out.OK() {
		res.Error = out.FailureMessage("Pull failed")
		e.logger.Error().Str("path", task.SourcePath).Str("reason", res.Error).Msg("Pull failed")
		return res
	}

	res.Success = true
	res.Message = "Pulled to " + task.DestinationPath
	res.LocalPath = task.DestinationPath
	e.logger.Debug().Str("path", task.SourcePath).Msg("File pulled")
	return res
}

func (e *Engine) push(ctx context.Context, deviceID string, task models.TransferTask, res models.TransferResult, onStdout func([]byte)) models.TransferResult {
	if _, err := os.Stat(task.SourcePath); err != nil {
		res.Error = "File not found"
		e.logger.Error().Err(err).Str("path", task.SourcePath).Msg("Push failed")
		return res
	}

	// adb push creates missing parents itself on most builds; mkdir covers the rest
	if err := remotefs.Mkdir(ctx, e.exec, deviceID, path.Dir(task.DestinationPath)); err != nil {
		e.logger.Debug().Err(err).Str("path", task.DestinationPath).Msg("mkdir before push failed, continuing")
	}

	out, err := e.exec.ExecuteStreaming(ctx, deviceID, onStdout, "push", task.SourcePath, task.DestinationPath)
	if err != nil {
		res.Error = err.Error()
		e.logger.Error().Err(err).Str("path", task.SourcePath).Msg("Push failed")
		return res
	}
	if !out.OK() {
		res.Error = out.FailureMessage("Push failed")
		e.logger.Error().Str("path", task.SourcePath).Str("reason", res.Error).Msg("Push failed")
		return res
	}

	res.Success = true
	res.Message = "Transferred to " + task.DestinationPath
	e.logger.Debug().Str("path", task.SourcePath).Msg("File pushed")
	return res
}

func displayName(t models.TransferTask) string {
	if t.Name != "" {
		return t.Name
	}
	if t.Direction == models.DirectionPull {
		return path.Base(t.SourcePath)
	}
	return filepath.Base(t.SourcePath)
}
