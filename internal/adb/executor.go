// Package adb runs the Android Debug Bridge client on behalf of the rest of
// the program. Every invocation against one device is serialized.
package adb

import (
	"context"
	"strings"
)

// Result is the captured outcome of one adb invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// OK reports a zero exit code.
func (r *Result) OK() bool {
	return r != nil && r.ExitCode == 0
}

// FailureMessage picks the most useful text from a failed invocation:
// stderr, then stdout, then fallback.
func (r *Result) FailureMessage(fallback string) string {
	if r == nil {
		return fallback
	}
	if msg := strings.TrimSpace(r.Stderr); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(r.Stdout); msg != "" {
		return msg
	}
	return fallback
}

// Executor runs one adb invocation and waits for it to exit.
//
// A non-zero exit is reported through Result.ExitCode with a nil error; the
// error is reserved for invocations that could not run at all.
type Executor interface {
	Execute(ctx context.Context, deviceID string, args ...string) (*Result, error)

	// ExecuteStreaming is Execute plus a callback for each stdout chunk as it arrives.
	ExecuteStreaming(ctx context.Context, deviceID string, onStdout func([]byte), args ...string) (*Result, error)
}

// Shell runs a command through `adb shell`.
func Shell(ctx context.Context, exec Executor, deviceID, command string) (*Result, error) {
	return exec.Execute(ctx, deviceID, "shell", command)
}

// Quote wraps s in single quotes for the device shell.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
