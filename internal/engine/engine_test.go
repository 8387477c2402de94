package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/freedroid/freedroid/internal/adb/adbtest"
	"github.com/freedroid/freedroid/internal/events"
	"github.com/freedroid/freedroid/internal/models"
)

const device = "R58M12345"

func pullTask(dir, name string) models.TransferTask {
	return models.TransferTask{
		SourcePath:      "/sdcard/" + name,
		DestinationPath: filepath.Join(dir, name),
		Direction:       models.DirectionPull,
		Name:            name,
	}
}

func run(t *testing.T, e *Engine, ctx context.Context, tasks ...models.TransferTask) *models.BatchResult {
	t.Helper()
	res, err := e.Run(ctx, device, tasks)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.SuccessCount+res.FailedCount != res.TotalFiles || res.TotalFiles != len(res.Results) {
		t.Fatalf("inconsistent counts: %+v", res)
	}
	return res
}

func TestEngine_PartialFailureKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	fake := adbtest.New().
		On("pull /sdcard/a.txt", 0, "/sdcard/a.txt: 1 file pulled\n", "").
		On("pull /sdcard/b.txt", 1, "", "adb: error: remote object '/sdcard/b.txt' does not exist\n").
		On("pull /sdcard/c.txt", 0, "", "")

	res := run(t, New(fake, nil, nil), context.Background(),
		pullTask(dir, "a.txt"), pullTask(dir, "b.txt"), pullTask(dir, "c.txt"))

	if res.TotalFiles != 3 || res.SuccessCount != 2 || res.FailedCount != 1 {
		t.Fatalf("counts = %d/%d/%d, want 3/2/1", res.TotalFiles, res.SuccessCount, res.FailedCount)
	}
	if res.Success {
		t.Error("Success should be false with a failed task")
	}

	a := res.Results[0]
	if a.FileName != "a.txt" || !a.Success || a.Message != "Pulled to "+filepath.Join(dir, "a.txt") || a.LocalPath != filepath.Join(dir, "a.txt") {
		t.Errorf("result[0] = %+v", a)
	}

	b := res.Results[1]
	if b.FileName != "b.txt" || b.Success || b.Error != "adb: error: remote object '/sdcard/b.txt' does not exist" {
		t.Errorf("result[1] = %+v", b)
	}

	// A failure must not stop the batch
	if c := res.Results[2]; c.FileName != "c.txt" || !c.Success {
		t.Errorf("result[2] = %+v", c)
	}

	want := []string{
		"pull /sdcard/a.txt " + filepath.Join(dir, "a.txt"),
		"pull /sdcard/b.txt " + filepath.Join(dir, "b.txt"),
		"pull /sdcard/c.txt " + filepath.Join(dir, "c.txt"),
	}
	if got := fake.CallLines(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %q, want %q", got, want)
	}
	for _, c := range fake.Calls() {
		if c.DeviceID != device {
			t.Errorf("call %q went to %q", c.Line(), c.DeviceID)
		}
	}
}

func TestEngine_FallbackFailureMessage(t *testing.T) {
	fake := adbtest.New().On("pull", 1, "", "")

	res := run(t, New(fake, nil, nil), context.Background(), pullTask(t.TempDir(), "a.txt"))
	if res.Results[0].Error != "Pull failed" {
		t.Errorf("Error = %q, want %q", res.Results[0].Error, "Pull failed")
	}
}

func TestEngine_RerunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	fake := adbtest.New().
		On("pull /sdcard/a.txt", 0, "", "").
		On("pull /sdcard/b.txt", 1, "", "permission denied")
	tasks := []models.TransferTask{pullTask(dir, "a.txt"), pullTask(dir, "b.txt")}

	eng := New(fake, nil, nil)
	first := run(t, eng, context.Background(), tasks...)
	second := run(t, eng, context.Background(), tasks...)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-run differs:\n first  %+v\n second %+v", first, second)
	}
	if eng.State() != StateCompleted {
		t.Errorf("State = %s, want completed", eng.State())
	}
}

func TestEngine_RejectsConcurrentBatch(t *testing.T) {
	dir := t.TempDir()
	fake := adbtest.New().On("pull", 0, "", "")
	fake.Delay = 50 * time.Millisecond

	eng := New(fake, nil, nil)
	if eng.State() != StateIdle {
		t.Fatalf("State = %s, want idle", eng.State())
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := eng.Run(context.Background(), device, []models.TransferTask{pullTask(dir, "a.txt"), pullTask(dir, "b.txt")}); err != nil {
			t.Errorf("first batch failed: %v", err)
		}
	}()

	deadline := time.Now().Add(time.Second)
	for eng.State() != StateRunning {
		if time.Now().After(deadline) {
			t.Fatal("first batch never started")
		}
		time.Sleep(time.Millisecond)
	}
	if !eng.Busy() {
		t.Error("engine should be busy while a batch runs")
	}

	res, err := eng.Run(context.Background(), device, []models.TransferTask{pullTask(dir, "c.txt")})
	if !errors.Is(err, ErrBatchInProgress) {
		t.Errorf("expected ErrBatchInProgress, got %v", err)
	}
	if res != nil {
		t.Errorf("rejected batch returned %+v", res)
	}

	wg.Wait()
	if eng.Busy() {
		t.Error("engine still busy after the batch finished")
	}
	for _, line := range fake.CallLines() {
		if line == "pull /sdcard/c.txt "+filepath.Join(dir, "c.txt") {
			t.Error("rejected batch ran a task")
		}
	}
}

func TestEngine_RunsOneTaskAtATime(t *testing.T) {
	dir := t.TempDir()
	fake := adbtest.New().On("pull", 0, "", "")
	fake.Delay = 5 * time.Millisecond

	var tasks []models.TransferTask
	for _, n := range []string{"1", "2", "3", "4", "5"} {
		tasks = append(tasks, pullTask(dir, n+".jpg"))
	}
	res := run(t, New(fake, nil, nil), context.Background(), tasks...)
	if res.SuccessCount != 5 {
		t.Errorf("SuccessCount = %d, want 5", res.SuccessCount)
	}
	if n := fake.MaxInFlight(); n != 1 {
		t.Errorf("MaxInFlight = %d, want 1", n)
	}
}

func TestEngine_PublishesProgress(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewEventBus(100)
	defer bus.Close()
	started := bus.Subscribe(events.EventBatchStarted)
	progress := bus.Subscribe(events.EventBatchProgress)
	files := bus.Subscribe(events.EventFileProgress)
	complete := bus.Subscribe(events.EventBatchComplete)

	fake := adbtest.New().
		OnStream("pull /sdcard/a.txt", 0, "[ 50%] /sdcard/a.txt", "[100%] /sdcard/a.txt\n").
		On("pull /sdcard/b.txt", 1, "", "boom")

	res, err := New(fake, bus, nil).RunBatch(context.Background(), Batch{
		ID:       "batch-1",
		DeviceID: device,
		Tasks:    []models.TransferTask{pullTask(dir, "a.txt"), pullTask(dir, "b.txt")},
	})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if res.FailedCount != 1 {
		t.Fatalf("FailedCount = %d, want 1", res.FailedCount)
	}

	s := (<-started).(*events.BatchStartedEvent)
	if s.BatchID != "batch-1" || s.Direction != "pull" || s.Total != 2 {
		t.Errorf("started = %+v", s)
	}

	p1 := (<-progress).(*events.BatchProgressEvent)
	p2 := (<-progress).(*events.BatchProgressEvent)
	if p1.Current != 1 || p1.Total != 2 || p1.CurrentFile != "a.txt" || p1.Status != "pulling" || !p1.Success {
		t.Errorf("first progress = %+v", p1)
	}
	if p2.Current != 2 || p2.Success {
		t.Errorf("second progress = %+v", p2)
	}

	f1 := (<-files).(*events.FileProgressEvent)
	f2 := (<-files).(*events.FileProgressEvent)
	if f1.Percent != 50 || f2.Percent != 100 || f2.Index != 1 {
		t.Errorf("file progress = %+v, %+v", f1, f2)
	}

	c := (<-complete).(*events.BatchCompleteEvent)
	if c.TotalFiles != 2 || c.SuccessCount != 1 || c.FailedCount != 1 {
		t.Errorf("complete = %+v", c)
	}
}

func TestEngine_PushMissingSource(t *testing.T) {
	fake := adbtest.New().On("push", 0, "", "")
	task := models.TransferTask{
		SourcePath:      filepath.Join(t.TempDir(), "gone.txt"),
		DestinationPath: "/sdcard/Download/gone.txt",
		Direction:       models.DirectionPush,
		Name:            "gone.txt",
	}

	res := run(t, New(fake, nil, nil), context.Background(), task)
	if r := res.Results[0]; r.Success || r.Error != "File not found" {
		t.Errorf("result = %+v, want File not found", r)
	}
	if n := len(fake.Calls()); n != 0 {
		t.Errorf("made %d adb calls for a missing source", n)
	}
}

func TestEngine_Push(t *testing.T) {
	src := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	fake := adbtest.New().
		On("shell mkdir -p '/sdcard/Download/docs'", 0, "", "").
		On("push "+src, 0, src+": 1 file pushed\n", "")
	task := models.TransferTask{
		SourcePath:      src,
		DestinationPath: "/sdcard/Download/docs/notes.txt",
		Direction:       models.DirectionPush,
		Name:            "notes.txt",
	}

	res := run(t, New(fake, nil, nil), context.Background(), task)
	if r := res.Results[0]; !r.Success || r.Message != "Transferred to /sdcard/Download/docs/notes.txt" {
		t.Errorf("result = %+v", r)
	}
	want := []string{
		"shell mkdir -p '/sdcard/Download/docs'",
		"push " + src + " /sdcard/Download/docs/notes.txt",
	}
	if got := fake.CallLines(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %q, want %q", got, want)
	}
}

func TestEngine_PushIgnoresMkdirFailure(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.bin")
	if err := os.WriteFile(src, []byte{1}, 0o644); err != nil {
		t.Fatal(err)
	}

	fake := adbtest.New().
		On("shell mkdir", 1, "", "mkdir: read-only file system").
		On("push", 1, "", "")
	task := models.TransferTask{SourcePath: src, DestinationPath: "/system/a.bin", Direction: models.DirectionPush}

	res := run(t, New(fake, nil, nil), context.Background(), task)
	if r := res.Results[0]; r.FileName != "a.bin" || r.Error != "Push failed" {
		t.Errorf("result = %+v", r)
	}
	// Push is attempted even when mkdir fails
	if n := len(fake.Calls()); n != 2 {
		t.Errorf("made %d calls, want 2", n)
	}
}

func TestEngine_PullCreatesParents(t *testing.T) {
	dir := t.TempDir()
	fake := adbtest.New().On("pull", 0, "", "")
	task := models.TransferTask{
		SourcePath:      "/sdcard/DCIM/Camera/2024/img.jpg",
		DestinationPath: filepath.Join(dir, "DCIM", "Camera", "2024", "img.jpg"),
		Direction:       models.DirectionPull,
		Name:            "Camera/2024/img.jpg",
	}

	res := run(t, New(fake, nil, nil), context.Background(), task)
	if !res.Results[0].Success {
		t.Errorf("result = %+v", res.Results[0])
	}
	if info, err := os.Stat(filepath.Join(dir, "DCIM", "Camera", "2024")); err != nil || !info.IsDir() {
		t.Errorf("parent directory not created: %v", err)
	}
}

func TestEngine_PullParentBlockedIsPerFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	fake := adbtest.New().On("pull", 0, "", "")
	res := run(t, New(fake, nil, nil), context.Background(),
		models.TransferTask{SourcePath: "/sdcard/x/a.txt", DestinationPath: filepath.Join(blocker, "a.txt"), Direction: models.DirectionPull, Name: "a.txt"},
		pullTask(dir, "b.txt"),
	)

	if r := res.Results[0]; r.Success || r.Error == "" {
		t.Errorf("blocked result = %+v", r)
	}
	if !res.Results[1].Success {
		t.Errorf("second result = %+v", res.Results[1])
	}
	if n := len(fake.Calls()); n != 1 {
		t.Errorf("made %d calls, want 1", n)
	}
}

func TestEngine_ExecutorError(t *testing.T) {
	fake := adbtest.New().OnError("pull", errors.New("exec: adb: not found"))

	res := run(t, New(fake, nil, nil), context.Background(), pullTask(t.TempDir(), "a.txt"))
	if res.Results[0].Error != "exec: adb: not found" {
		t.Errorf("Error = %q", res.Results[0].Error)
	}
}

func TestEngine_CancelledBeforeStart(t *testing.T) {
	dir := t.TempDir()
	fake := adbtest.New().On("pull", 0, "", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := run(t, New(fake, nil, nil), ctx, pullTask(dir, "a.txt"), pullTask(dir, "b.txt"))
	if res.TotalFiles != 2 || res.FailedCount != 2 {
		t.Errorf("counts = %d total, %d failed; want 2, 2", res.TotalFiles, res.FailedCount)
	}
	if res.Results[1].Error != context.Canceled.Error() {
		t.Errorf("Error = %q, want %q", res.Results[1].Error, context.Canceled.Error())
	}
	if n := len(fake.Calls()); n != 0 {
		t.Errorf("made %d calls after cancellation", n)
	}
}

func TestEngine_EmptyBatch(t *testing.T) {
	res := run(t, New(adbtest.New(), nil, nil), context.Background())
	if res.TotalFiles != 0 || res.Results == nil || !res.Success {
		t.Errorf("empty batch = %+v, want successful with no results", res)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateRunning, "running"},
		{StateCompleted, "completed"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
