package services

import (
	"context"
	"sync"
)

// SelectionTracker follows which email is currently open. Selecting a new
// email cancels the context handed out for the previous one, so a slow
// triage run cannot overwrite the state of a newer selection.
type SelectionTracker struct {
	mu      sync.Mutex
	current string
	seq     uint64
	cancel  context.CancelFunc
}

// NewSelectionTracker creates an empty tracker
func NewSelectionTracker() *SelectionTracker {
	return &SelectionTracker{}
}

// Select makes emailID the current selection. The returned context is
// cancelled when another email is selected or when release is called.
func (t *SelectionTracker) Select(parent context.Context, emailID string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.seq++
	seq := t.seq
	t.current = emailID
	t.cancel = cancel
	t.mu.Unlock()

	release := func() {
		cancel()
		t.mu.Lock()
		if t.seq == seq {
			t.cancel = nil
		}
		t.mu.Unlock()
	}
	return ctx, release
}

// Current returns the most recently selected email id
func (t *SelectionTracker) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
