package miner

import (
	"sync"
	"time"

	"github.com/berith-foundation/posnode/node"
)

// accountTask tracks the forging schedule for a single wallet account. Every
// mutable field is guarded by mu; cancel additionally owns its own lock so
// Cancel can be called without holding mu (mirroring the reference worker's
// separate coinbase/pendingTasks/snapshot locks rather than one global one).
type accountTask struct {
	account node.Account

	mu    sync.Mutex
	state AccountState

	cancel compositeCancelable

	// microParent is the latest total block the account is extending with
	// micro-blocks, set on entering MicroExtending and after each accepted
	// micro-block. It is not cleared when the account leaves that state.
	microParent *trackedBlock
}

// trackedBlock pairs a forged block with the time it was submitted. The
// micro-block cadence itself comes from the ticker in startMicroBlockChain,
// not from forgedAt.
type trackedBlock struct {
	totalSigHash [32]byte
	forgedAt     time.Time
}

func newAccountTask(account node.Account) *accountTask {
	return &accountTask{account: account, state: Idle}
}

func (t *accountTask) setState(s AccountState) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

func (t *accountTask) getState() AccountState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
