// Package status implements the blockchain-status state machine: a pure
// total function Apply(Status, Event) -> StatusUpdate driving the three-state
// Normal / TransientRollback / TransientResolving machine described in the
// component design. Apply never panics and never blocks; all policy that
// needs wall-clock time (notably the stash-starvation liveness hazard) lives
// one layer up, in package tracker.
package status

import (
	"github.com/berith-foundation/posnode/balance"
	"github.com/berith-foundation/posnode/chain"
	"github.com/berith-foundation/posnode/common"
)

// Status is the closed set of states the machine can be in. The only
// implementations are Normal, TransientRollback and TransientResolving.
type Status interface {
	isStatus()
}

// Normal is the steady state: the node tracks a single fork and believes it
// is caught up to the given height hint.
type Normal struct {
	MainFork          chain.WavesFork
	CurrentHeightHint uint32
}

func (Normal) isStatus() {}

// TransientRollback is entered while the node is unwinding a fork and has not
// yet observed a micro-block (which would promote it to resolving).
type TransientRollback struct {
	NewFork               chain.WavesFork
	NewForkChanges        balance.Balance
	PreviousForkHeight    uint32
	PreviousForkDiffIndex balance.Index
}

func (TransientRollback) isStatus() {}

// TransientResolving is entered once a rollback has produced at least one
// micro-block worth of new chain; it stashes further events until
// authoritative balances arrive via DataReceived.
type TransientResolving struct {
	MainFork          chain.WavesFork
	Stash             []Event
	CurrentHeightHint uint32
}

func (TransientResolving) isStatus() {}

// Event is the closed set of inputs the state machine reacts to.
type Event interface {
	isEvent()
}

// Appended signals that a new block or micro-block arrived from the network
// or was locally forged.
type Appended struct {
	Block chain.WavesBlock
}

func (Appended) isEvent() {}

// RolledBackTo signals that the chain source of truth rolled back to ref.
type RolledBackTo struct {
	Ref common.BlockRef
}

func (RolledBackTo) isEvent() {}

// SyncFailed signals that synchronization failed at or above height.
type SyncFailed struct {
	Height uint32
}

func (SyncFailed) isEvent() {}

// DataReceived delivers authoritative balances requested via a prior
// StatusUpdate.RequestBalances.
type DataReceived struct {
	Balances balance.Balance
}

func (DataReceived) isEvent() {}

// HeightKind distinguishes the three shapes UpdatedLastBlockHeight can take.
type HeightKind uint8

const (
	// NotChanged means no new last-block-height notification should be
	// emitted (e.g. a micro-block append).
	NotChanged HeightKind = iota
	// Updated means the last block height advanced to Height.
	Updated
	// RestartRequired tells the outer supervisor to re-sync the chain from
	// Height.
	RestartRequired
)

// HeightUpdate is the tagged updated_last_block_height field of a
// StatusUpdate.
type HeightUpdate struct {
	Kind   HeightKind
	Height uint32
}

func notChanged() HeightUpdate { return HeightUpdate{Kind: NotChanged} }

func updated(h uint32) HeightUpdate { return HeightUpdate{Kind: Updated, Height: h} }

func restartRequired(h uint32) HeightUpdate {
	return HeightUpdate{Kind: RestartRequired, Height: h}
}

// StatusUpdate is the result of applying one Event to a Status. StatusUpdate
// values form a monoid (see Merge): new_status replacement is left-biased
// (the later update wins), balances add and request indices union.
type StatusUpdate struct {
	NewStatus              Status
	UpdatedBalances        balance.Balance
	RequestBalances        balance.Index
	UpdatedLastBlockHeight HeightUpdate
}

func unchanged(s Status) StatusUpdate {
	return StatusUpdate{
		NewStatus:       s,
		UpdatedBalances: balance.New(),
		RequestBalances: balance.Index{},
	}
}

// Merge combines two StatusUpdates as a monoid: next's NewStatus wins
// (callers fold left-to-right, so the later update replaces the earlier
// one), balances are added componentwise, request indices union, and the
// height update of next wins unless next did not change it, in which case
// u's is kept.
func Merge(u, next StatusUpdate) StatusUpdate {
	height := next.UpdatedLastBlockHeight
	if height.Kind == NotChanged {
		height = u.UpdatedLastBlockHeight
	}
	return StatusUpdate{
		NewStatus:              next.NewStatus,
		UpdatedBalances:        balance.Add(u.UpdatedBalances, next.UpdatedBalances),
		RequestBalances:        u.RequestBalances.Union(next.RequestBalances),
		UpdatedLastBlockHeight: height,
	}
}
