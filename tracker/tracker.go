// Package tracker wraps the pure status state machine with the one piece of
// policy the pure package leaves out: a bound on how long the node may sit
// in TransientResolving waiting for the data fetch that resolves a
// rollback. status.Apply itself stays pure and unbounded; this package owns
// the timer.
package tracker

import (
	"sync"
	"time"

	"github.com/berith-foundation/posnode/log"
	"github.com/berith-foundation/posnode/status"
)

// DefaultStashTimeout is used when a Tracker is constructed with a
// non-positive timeout.
const DefaultStashTimeout = 30 * time.Second

// Tracker serializes calls to status.Apply and starts a timer whenever the
// status enters TransientResolving. If the timer fires before the status
// leaves TransientResolving, Tracker folds in a synthetic status.SyncFailed
// at the height hinted by the stuck status, which moves the pure machine to
// TransientRollback rather than waiting forever for data that may never
// arrive. The StatusUpdate of that forced step is not returned to any caller.
type Tracker struct {
	mu      sync.Mutex
	current status.Status
	timeout time.Duration
	timer   *time.Timer

	// afterFunc is swappable for tests; defaults to time.AfterFunc.
	afterFunc func(time.Duration, func()) *time.Timer
}

// New creates a Tracker starting from initial, using timeout as the
// TransientResolving stash bound (DefaultStashTimeout if timeout <= 0).
func New(initial status.Status, timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = DefaultStashTimeout
	}
	t := &Tracker{
		current: initial,
		timeout: timeout,
	}
	t.afterFunc = time.AfterFunc
	t.armIfResolving()
	return t
}

// Apply feeds e to the current status under lock, rearms or disarms the
// stash timer as needed, and returns the resulting status.StatusUpdate.
func (t *Tracker) Apply(e status.Event) status.StatusUpdate {
	t.mu.Lock()
	defer t.mu.Unlock()

	update := status.Apply(t.current, e)
	t.current = update.NewStatus
	t.rearm()
	return update
}

// Current returns the tracker's current status.
func (t *Tracker) Current() status.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Stop disarms any pending stash timer. Call when shutting the node down.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// callers must hold t.mu.
func (t *Tracker) rearm() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.armIfResolving()
}

// callers must hold t.mu.
func (t *Tracker) armIfResolving() {
	resolving, ok := t.current.(status.TransientResolving)
	if !ok {
		return
	}
	height := resolving.CurrentHeightHint
	t.timer = t.afterFunc(t.timeout, func() { t.onStashTimeout(height) })
}

func (t *Tracker) onStashTimeout(height uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	resolving, stillResolving := t.current.(status.TransientResolving)
	if !stillResolving {
		return
	}
	log.Warn("stash wait timed out, forcing resync", "height", height)
	// status.Apply stashes every non-DataReceived event while resolving, so
	// the synthetic SyncFailed is applied to the resolving fork as a Normal
	// status; the stashed events are discarded.
	stuck := status.Normal{MainFork: resolving.MainFork, CurrentHeightHint: resolving.CurrentHeightHint}
	update := status.Apply(stuck, status.SyncFailed{Height: height})
	t.current = update.NewStatus
	t.timer = nil
	t.armIfResolving()
}
