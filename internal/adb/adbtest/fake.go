// Package adbtest provides a scripted adb.Executor for tests.
package adbtest

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/freedroid/freedroid/internal/adb"
)

// Call records one invocation.
type Call struct {
	DeviceID string
	Args     []string
}

// Line is the invocation as one space-joined string.
func (c Call) Line() string {
	return strings.Join(c.Args, " ")
}

type rule struct {
	prefix string
	res    *adb.Result
	err    error
	chunks [][]byte
}

// Fake answers invocations from rules matched by argument prefix. The
// longest matching prefix wins. Unmatched invocations exit 1.
type Fake struct {
	mu    sync.Mutex
	rules []rule
	calls []Call

	// Delay is slept inside every invocation; used to observe overlap.
	Delay time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{}
}

// On registers the result for invocations whose joined args start with prefix.
func (f *Fake) On(prefix string, exitCode int, stdout, stderr string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{
		prefix: prefix,
		res:    &adb.Result{ExitCode: exitCode, Stdout: stdout, Stderr: stderr},
	})
	return f
}

// OnStream is On plus stdout chunks delivered to the streaming callback.
func (f *Fake) OnStream(prefix string, exitCode int, chunks ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := rule{prefix: prefix, res: &adb.Result{ExitCode: exitCode, Stdout: strings.Join(chunks, "")}}
	for _, c := range chunks {
		r.chunks = append(r.chunks, []byte(c))
	}
	f.rules = append(f.rules, r)
	return f
}

// OnError makes matching invocations fail to run.
func (f *Fake) OnError(prefix string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{prefix: prefix, err: err})
	return f
}

// Calls returns a copy of the recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallLines returns the recorded invocations as joined strings.
func (f *Fake) CallLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line()
	}
	return lines
}

// MaxInFlight reports the highest number of overlapping invocations seen.
func (f *Fake) MaxInFlight() int {
	return int(f.maxInFlight.Load())
}

// Execute implements adb.Executor.
func (f *Fake) Execute(ctx context.Context, deviceID string, args ...string) (*adb.Result, error) {
	return f.ExecuteStreaming(ctx, deviceID, nil, args...)
}

// ExecuteStreaming implements adb.Executor.
func (f *Fake) ExecuteStreaming(ctx context.Context, deviceID string, onStdout func([]byte), args ...string) (*adb.Result, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	call := Call{DeviceID: deviceID, Args: append([]string(nil), args...)}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	var match *rule
	for i := range f.rules {
		r := &f.rules[i]
		if strings.HasPrefix(call.Line(), r.prefix) && (match == nil || len(r.prefix) >= len(match.prefix)) {
			match = r
		}
	}
	f.mu.Unlock()

	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}

	if match == nil {
		return &adb.Result{ExitCode: 1, Stderr: "unexpected command: " + call.Line()}, nil
	}
	if match.err != nil {
		return nil, match.err
	}
	if onStdout != nil {
		for _, c := range match.chunks {
			onStdout(c)
		}
	}
	res := *match.res
	return &res, nil
}

var _ adb.Executor = (*Fake)(nil)
