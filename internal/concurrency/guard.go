// Package concurrency holds the batch guard: at most one batch runs at a time.
package concurrency

import (
	"errors"
	"sync"
)

// ErrBusy is returned when a guarded task is already running.
var ErrBusy = errors.New("a transfer is already in progress")

// Guard runs at most one task at a time and rejects, rather than queues,
// any task offered while another is active.
type Guard struct {
	mu     sync.Mutex
	isBusy bool
}

// NewGuard returns an idle guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Execute runs task unless another task is running, in which case it
// returns ErrBusy without calling task.
func (g *Guard) Execute(task func() error) error {
	g.mu.Lock()
	if g.isBusy {
		g.mu.Unlock()
		return ErrBusy
	}
	g.isBusy = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.isBusy = false
		g.mu.Unlock()
	}()
	return task()
}

// Busy reports whether a task is running.
func (g *Guard) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isBusy
}
