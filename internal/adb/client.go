package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/freedroid/freedroid/internal/logging"
)

// Client executes the adb binary. It holds one lock per device serial so
// that listings, transfers and background size queries never interleave on
// the same device.
type Client struct {
	path        string
	logger      *logging.Logger
	lockTimeout time.Duration

	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

// NewClient creates a client for the adb executable at path.
// lockTimeout bounds how long an invocation may queue behind others; zero
// means wait for as long as ctx allows.
func NewClient(path string, lockTimeout time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Client{
		path:        path,
		logger:      logger,
		lockTimeout: lockTimeout,
		locks:       make(map[string]*semaphore.Weighted),
	}
}

func (c *Client) deviceLock(deviceID string) *semaphore.Weighted {
	c.mu.Lock()
	defer c.mu.Unlock()

	sem, ok := c.locks[deviceID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		c.locks[deviceID] = sem
	}
	return sem
}

// acquire waits for exclusive use of the device. Only the wait is
// cancelable; once the process starts it runs to completion.
func (c *Client) acquire(ctx context.Context, deviceID string) (func(), error) {
	waitCtx := ctx
	if c.lockTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.lockTimeout)
		defer cancel()
	}

	sem := c.deviceLock(deviceID)
	if err := sem.Acquire(waitCtx, 1); err != nil {
		return nil, fmt.Errorf("waiting for device %q: %w", deviceID, err)
	}
	return func() { sem.Release(1) }, nil
}

// Execute implements Executor.
func (c *Client) Execute(ctx context.Context, deviceID string, args ...string) (*Result, error) {
	return c.ExecuteStreaming(ctx, deviceID, nil, args...)
}

// ExecuteStreaming implements Executor.
func (c *Client) ExecuteStreaming(ctx context.Context, deviceID string, onStdout func([]byte), args ...string) (*Result, error) {
	release, err := c.acquire(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	defer release()

	argv := args
	if deviceID != "" {
		argv = append([]string{"-s", deviceID}, args...)
	}

	start := time.Now()
	res, err := c.run(argv, onStdout)
	c.logger.Debug().
		Str("device", deviceID).
		Strs("args", args).
		Dur("elapsed", time.Since(start)).
		Int("exit", exitCodeOf(res)).
		Err(err).
		Msg("adb")
	return res, err
}

func (c *Client) run(argv []string, onStdout func([]byte)) (*Result, error) {
	var stdout, stderr bytes.Buffer

	// exec.Command rather than CommandContext: a started copy is never killed
	cmd := exec.Command(c.path, argv...)
	cmd.Stderr = &stderr
	if onStdout != nil {
		cmd.Stdout = io.MultiWriter(&stdout, callbackWriter(onStdout))
	} else {
		cmd.Stdout = &stdout
	}

	err := cmd.Run()
	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("failed to run adb: %w", err)
	}
	return res, nil
}

func exitCodeOf(res *Result) int {
	if res == nil {
		return -1
	}
	return res.ExitCode
}

type callbackWriter func([]byte)

func (w callbackWriter) Write(p []byte) (int, error) {
	chunk := make([]byte, len(p))
	copy(chunk, p)
	w(chunk)
	return len(p), nil
}
