package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/freedroid/freedroid/internal/adb"
	"github.com/freedroid/freedroid/internal/constants"
	"github.com/freedroid/freedroid/internal/diskspace"
	"github.com/freedroid/freedroid/internal/engine"
	"github.com/freedroid/freedroid/internal/events"
	"github.com/freedroid/freedroid/internal/logging"
	"github.com/freedroid/freedroid/internal/models"
	"github.com/freedroid/freedroid/internal/pathutil"
	"github.com/freedroid/freedroid/internal/planner"
	"github.com/freedroid/freedroid/internal/remotefs"
)

// ErrNoDestination means neither the caller nor the configuration named a
// destination folder.
var ErrNoDestination = errors.New("no destination folder configured")

// TransferService turns pull and push requests into planned batches, runs
// them on the engine and reports one OperationSummary per request.
type TransferService struct {
	exec     adb.Executor
	engine   *engine.Engine
	eventBus *events.EventBus
	notifier Notifier
	logger   *logging.Logger
	opts     TransferOptions

	checkSpace func(dir string, required int64, margin float64) error
}

// NewTransferService creates a TransferService. eventBus and notifier may be nil.
func NewTransferService(exec adb.Executor, eventBus *events.EventBus, notifier Notifier, opts TransferOptions, logger *logging.Logger) *TransferService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.PushRoot == "" {
		opts.PushRoot = constants.DefaultPushFolder
	}
	return &TransferService{
		exec:       exec,
		engine:     engine.New(exec, eventBus, logger),
		eventBus:   eventBus,
		notifier:   notifier,
		logger:     logger,
		opts:       opts,
		checkSpace: diskspace.CheckAvailableSpace,
	}
}

// Engine exposes the batch engine, mainly for its state.
func (ts *TransferService) Engine() *engine.Engine {
	return ts.engine
}

// PullSelection copies every selected device item into destRoot (the
// configured pull folder when empty). Directories keep their structure
// beneath destRoot/<dirName>.
//
// The destination is created first; failing to create it, or failing the
// free space preflight, aborts the request with the selection untouched.
// Once a batch has run the selection is cleared whatever the outcome.
func (ts *TransferService) PullSelection(ctx context.Context, sess *Session, destRoot string) (*models.OperationSummary, error) {
	items := sess.Selection.Items()

	root, err := ts.prepareLocalRoot(destRoot)
	if err != nil {
		return nil, err
	}

	if ts.opts.CheckDiskSpace {
		if needed := sess.Selection.TotalSize(); needed > 0 {
			if err := ts.checkSpace(root, needed, 1+constants.DiskSpaceBufferPercent); err != nil {
				return nil, fmt.Errorf("pull aborted: %w", err)
			}
		}
	}

	plan, err := planner.New(ts.remote(sess.DeviceID), ts.logger).PlanPull(ctx, items, root)
	if err != nil {
		return nil, err
	}

	summary, err := ts.execute(ctx, sess.DeviceID, plan)
	if err != nil {
		return nil, err
	}
	sess.Selection.Clear()
	return summary, nil
}

// PushPaths copies host files and directories into remoteRoot on the
// device (the configured push folder when empty).
func (ts *TransferService) PushPaths(ctx context.Context, sess *Session, localPaths []string, remoteRoot string) (*models.OperationSummary, error) {
	plan, err := planner.New(nil, ts.logger).PlanPush(ctx, pathutil.ResolveSources(localPaths), ts.remoteRoot(remoteRoot))
	if err != nil {
		return nil, err
	}

	summary, err := ts.execute(ctx, sess.DeviceID, plan)
	if err != nil {
		return nil, err
	}
	sess.Selection.Clear()
	return summary, nil
}

// PullFiles copies device files into destRoot without expanding directories.
func (ts *TransferService) PullFiles(ctx context.Context, deviceID string, remotePaths []string, destRoot string) (*models.OperationSummary, error) {
	root, err := ts.prepareLocalRoot(destRoot)
	if err != nil {
		return nil, err
	}
	cleaned := make([]string, len(remotePaths))
	for i, p := range remotePaths {
		cleaned[i] = pathutil.CleanRemote(p)
	}
	return ts.execute(ctx, deviceID, planner.New(nil, ts.logger).PlanFlat(models.DirectionPull, cleaned, root))
}

// PushFiles copies host files into remoteRoot without expanding directories.
func (ts *TransferService) PushFiles(ctx context.Context, deviceID string, localPaths []string, remoteRoot string) (*models.OperationSummary, error) {
	plan := planner.New(nil, ts.logger).PlanFlat(models.DirectionPush, pathutil.ResolveSources(localPaths), ts.remoteRoot(remoteRoot))
	return ts.execute(ctx, deviceID, plan)
}

func (ts *TransferService) execute(ctx context.Context, deviceID string, plan *planner.Plan) (*models.OperationSummary, error) {
	batchID := uuid.NewString()
	ts.logger.Info().Str("batch", batchID).Str("direction", string(plan.Direction)).
		Int("items", len(plan.Groups)).Int("files", plan.TaskCount()).
		Int("duplicates", plan.Duplicates).Int("renamed", plan.Renamed).Msg("plan ready")

	result, err := ts.engine.RunBatch(ctx, engine.Batch{
		ID:              batchID,
		DeviceID:        deviceID,
		Direction:       plan.Direction,
		Tasks:           plan.Tasks(),
		DestinationRoot: plan.DestinationRoot,
	})
	if err != nil {
		return nil, err
	}

	summary := Summarize(batchID, plan, result)
	ev := ts.logger.Info()
	if summary.Outcome != models.OutcomeFull {
		ev = ts.logger.Warn()
	}
	ev.Str("batch", batchID).Str("outcome", string(summary.Outcome)).Msg(summary.Headline())

	if ts.notifier != nil {
		ts.notifier.BatchComplete(summary)
	}
	return summary, nil
}

func (ts *TransferService) remote(deviceID string) *remotefs.Provider {
	return remotefs.New(ts.exec, deviceID, remotefs.DefaultOptions, ts.logger)
}

// prepareLocalRoot resolves and creates the host destination root.
func (ts *TransferService) prepareLocalRoot(destRoot string) (string, error) {
	if destRoot == "" {
		destRoot = ts.opts.PullRoot
	}
	if destRoot == "" {
		return "", ErrNoDestination
	}
	root, err := pathutil.ResolveDestination(destRoot)
	if err != nil {
		return "", fmt.Errorf("failed to resolve destination %s: %w", destRoot, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create destination %s: %w", root, err)
	}
	return root, nil
}

func (ts *TransferService) remoteRoot(remoteRoot string) string {
	if remoteRoot == "" {
		remoteRoot = ts.opts.PushRoot
	}
	return pathutil.CleanRemote(remoteRoot)
}
