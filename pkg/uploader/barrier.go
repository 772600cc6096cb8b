package uploader

import (
	"context"
	"errors"
	"sync"
)

// ErrSettleInProgress is returned when two lifecycle operations race
// on the same barrier; the contract allows one outstanding settle per
// caller.
var ErrSettleInProgress = errors.New("settle already in progress")

// Barrier is the upload completion barrier: a counting primitive that
// resolves once the pending set is empty. It deliberately tracks every
// in-flight upload, not just the most recent one, so two truly
// concurrent uploads are both awaited.
type Barrier struct {
	mu       sync.Mutex
	pending  int
	settling bool
	waiters  []chan struct{}
}

// Add registers one pending upload.
func (b *Barrier) Add() {
	b.mu.Lock()
	b.pending++
	b.mu.Unlock()
}

// Done marks one upload acknowledged (success, skip, or error all
// count). The last acknowledgment releases any waiter.
func (b *Barrier) Done() {
	b.mu.Lock()
	if b.pending > 0 {
		b.pending--
	}
	if b.pending == 0 {
		for _, w := range b.waiters {
			close(w)
		}
		b.waiters = nil
	}
	b.mu.Unlock()
}

// Pending reports the current in-flight count.
func (b *Barrier) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Wait blocks until the pending set is empty or ctx ends. At most one
// Wait may be outstanding at a time.
func (b *Barrier) Wait(ctx context.Context) error {
	b.mu.Lock()
	if b.settling {
		b.mu.Unlock()
		return ErrSettleInProgress
	}
	if b.pending == 0 {
		b.mu.Unlock()
		return nil
	}
	b.settling = true
	w := make(chan struct{})
	b.waiters = append(b.waiters, w)
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.settling = false
		b.mu.Unlock()
	}()

	select {
	case <-w:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
