package miner

import "sync"

// Cancelable is a running task that can be asked to stop. Cancel must be
// idempotent and safe to call from any goroutine.
type Cancelable interface {
	Cancel()
}

// cancelFunc adapts a plain function to Cancelable, calling it at most once.
type cancelFunc struct {
	once sync.Once
	fn   func()
}

func newCancelFunc(fn func()) *cancelFunc {
	return &cancelFunc{fn: fn}
}

func (c *cancelFunc) Cancel() {
	c.once.Do(c.fn)
}

// compositeCancelable holds at most one live Cancelable. Replacing it cancels
// whatever was previously held before installing the new one, matching the
// reference worker's discipline of closing its previous exitCh/interrupt
// signal before starting a new sealing cycle (miner/worker.go's newWorkCh
// interrupt handling).
type compositeCancelable struct {
	mu      sync.Mutex
	current Cancelable
}

// Replace cancels the previously held Cancelable, if any, and installs next.
func (c *compositeCancelable) Replace(next Cancelable) {
	c.mu.Lock()
	prev := c.current
	c.current = next
	c.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
}

// Cancel cancels whatever is currently held and clears it.
func (c *compositeCancelable) Cancel() {
	c.mu.Lock()
	prev := c.current
	c.current = nil
	c.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
}
