package provision

import (
	"context"
	"sync"
)

// CancelRegistry tracks the cancel func of every in-flight operation,
// keyed by its update id, so a specific operation can be aborted
// independently of any other concurrent one and without tearing down
// the whole process.
type CancelRegistry struct {
	mu      sync.Mutex
	cancels map[int]context.CancelFunc
}

// NewCancelRegistry returns an empty CancelRegistry.
func NewCancelRegistry() *CancelRegistry {
	return &CancelRegistry{cancels: make(map[int]context.CancelFunc)}
}

// Run registers a child of ctx against updateID for the duration of fn.
// Cancel(updateID) aborts it: no further pool tasks are scheduled,
// in-flight HTTP requests abort at their next read, and a running
// preprocess command is killed, since every suspension point in
// Provisioner.Run already observes ctx.
func (r *CancelRegistry) Run(ctx context.Context, updateID int, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.cancels[updateID] = cancel
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.cancels, updateID)
		r.mu.Unlock()
		cancel()
	}()

	return fn(ctx)
}

// Cancel aborts the run registered under updateID, if one is still in
// flight. It reports whether a matching run was found.
func (r *CancelRegistry) Cancel(updateID int) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[updateID]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}
