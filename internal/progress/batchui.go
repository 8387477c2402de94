package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/freedroid/freedroid/internal/events"
	"github.com/freedroid/freedroid/internal/style"
)

// BatchUI renders engine batch events. On a terminal it draws an overall bar
// plus one bar for the file being copied; otherwise it prints one line per
// finished file.
type BatchUI struct {
	progress   *mpb.Progress
	out        io.Writer
	isTerminal bool

	mu        sync.Mutex
	total     int
	verb      string
	overall   *mpb.Bar
	file      *mpb.Bar
	fileIndex int
}

// NewBatchUI creates a UI on stderr, drawing bars only when stderr is a TTY.
func NewBatchUI() *BatchUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))
	if isTerminal {
		enableANSI(os.Stderr)
	}
	return newBatchUI(os.Stderr, isTerminal)
}

func newBatchUI(out io.Writer, isTerminal bool) *BatchUI {
	u := &BatchUI{out: out, isTerminal: isTerminal}
	if isTerminal {
		u.progress = mpb.New(
			mpb.WithOutput(out),
			mpb.WithRefreshRate(150*time.Millisecond),
			mpb.WithWidth(60),
		)
	}
	return u
}

// Follow subscribes to bus and renders events until the returned stop
// function is called. stop drains events already delivered before returning.
func (u *BatchUI) Follow(bus *events.EventBus) (stop func()) {
	ch := bus.SubscribeAll()
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					return
				}
				u.Handle(ev)
			case <-quit:
				for {
					select {
					case ev, ok := <-ch:
						if !ok {
							return
						}
						u.Handle(ev)
					default:
						return
					}
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			<-done
			bus.UnsubscribeAll(ch)
		})
	}
}

// Handle renders one event. Events unrelated to batches are ignored.
func (u *BatchUI) Handle(ev events.Event) {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch e := ev.(type) {
	case *events.BatchStartedEvent:
		u.started(e)
	case *events.FileProgressEvent:
		u.fileProgress(e)
	case *events.BatchProgressEvent:
		u.taskDone(e)
	case *events.BatchCompleteEvent:
		u.complete(e)
	}
}

func (u *BatchUI) started(e *events.BatchStartedEvent) {
	u.total = e.Total
	u.verb = "Pulling"
	if e.Direction == "push" {
		u.verb = "Pushing"
	}

	if !u.isTerminal {
		fmt.Fprintf(u.out, "%s %d file(s)\n", u.verb, e.Total)
		return
	}

	u.overall = u.progress.New(int64(e.Total),
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(u.verb, decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncSpace),
			decor.Name("  "),
			decor.Elapsed(decor.ET_STYLE_GO),
		),
	)
}

func (u *BatchUI) fileProgress(e *events.FileProgressEvent) {
	if !u.isTerminal {
		return
	}
	if e.Index != u.fileIndex || u.file == nil {
		u.closeFileBar(false)
		u.fileIndex = e.Index
		name := style.PadRight(e.CurrentFile, 32)
		u.file = u.progress.New(100,
			mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
			mpb.PrependDecorators(decor.Name("  "+name, decor.WCSyncSpaceR)),
			mpb.AppendDecorators(decor.Percentage(decor.WCSyncSpace)),
			mpb.BarRemoveOnComplete(),
		)
	}
	u.file.SetCurrent(int64(e.Percent))
}

func (u *BatchUI) taskDone(e *events.BatchProgressEvent) {
	line := fmt.Sprintf("%s [%d/%d] %s\n", style.Mark(e.Success), e.Current, e.Total, e.CurrentFile)

	if !u.isTerminal {
		fmt.Fprint(u.out, line)
		return
	}
	if e.Current == u.fileIndex {
		u.closeFileBar(!e.Success)
	}
	if u.overall != nil {
		u.overall.SetCurrent(int64(e.Current))
	}
	_, _ = u.progress.Write([]byte(line))
}

func (u *BatchUI) complete(e *events.BatchCompleteEvent) {
	if !u.isTerminal {
		return
	}
	u.closeFileBar(e.FailedCount > 0)
	if u.overall != nil {
		u.overall.SetTotal(int64(e.TotalFiles), true)
		u.overall = nil
	}
}

// closeFileBar completes or drops the current file bar. Caller holds mu.
func (u *BatchUI) closeFileBar(failed bool) {
	if u.file == nil {
		return
	}
	if failed {
		u.file.Abort(true)
	} else {
		u.file.SetTotal(100, true)
	}
	u.file = nil
}

// Finish settles any bar still open, as happens when the completion event
// was never seen. Call it before Wait.
func (u *BatchUI) Finish() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.isTerminal {
		return
	}
	u.closeFileBar(true)
	if u.overall != nil {
		u.overall.Abort(false)
		u.overall = nil
	}
}

// Wait blocks until all bars are drawn for the last time.
func (u *BatchUI) Wait() {
	if u.progress != nil {
		u.progress.Wait()
	}
}

// Writer returns a writer that prints above the bars when they are active.
func (u *BatchUI) Writer() io.Writer {
	if u.progress != nil {
		return u.progress
	}
	return u.out
}

// IsTerminal reports whether bars are drawn.
func (u *BatchUI) IsTerminal() bool {
	return u.isTerminal
}
