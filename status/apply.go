package status

import (
	"github.com/berith-foundation/posnode/balance"
	"github.com/berith-foundation/posnode/chain"
)

// Apply is the single pure entry point of the state machine: given the
// current Status and an incoming Event, it returns the StatusUpdate
// describing the new status and whatever downstream notification that
// transition produces. Apply is total: every (Status, Event) pair is
// handled, and it never panics.
func Apply(s Status, e Event) StatusUpdate {
	switch st := s.(type) {
	case Normal:
		return applyNormal(st, e)
	case TransientRollback:
		return applyTransientRollback(st, e)
	case TransientResolving:
		return applyTransientResolving(st, e)
	default:
		// Unreachable for the closed set of Status implementations, but
		// Apply must never panic: treat unknown statuses as already stable.
		return unchanged(s)
	}
}

func dropTip(f chain.WavesFork) chain.DropResult {
	if parent, ok := f.Parent(1); ok {
		return f.DropAfter(parent.Ref)
	}
	return f.DropAll()
}

func applyNormal(s Normal, e Event) StatusUpdate {
	switch ev := e.(type) {
	case Appended:
		updatedFork, err := s.MainFork.WithBlock(ev.Block)
		if err == nil {
			u := StatusUpdate{
				NewStatus:       Normal{MainFork: updatedFork, CurrentHeightHint: ev.Block.Ref.Height},
				UpdatedBalances: ev.Block.Changes,
				RequestBalances: balance.Index{},
			}
			if ev.Block.Type == chain.Block {
				u.UpdatedLastBlockHeight = updated(ev.Block.Ref.Height)
			} else {
				u.UpdatedLastBlockHeight = notChanged()
			}
			return u
		}
		// Forced rollback: the announced block doesn't extend what we have.
		dropped := dropTip(s.MainFork)
		restartHeight := uint32(0)
		if s.CurrentHeightHint > 0 {
			restartHeight = s.CurrentHeightHint - 1
		}
		return StatusUpdate{
			NewStatus: TransientRollback{
				NewFork:               dropped.Fork,
				NewForkChanges:        balance.New(),
				PreviousForkHeight:    s.CurrentHeightHint,
				PreviousForkDiffIndex: s.MainFork.DiffIndex(),
			},
			UpdatedBalances:        balance.New(),
			RequestBalances:        balance.Index{},
			UpdatedLastBlockHeight: restartRequired(restartHeight),
		}

	case RolledBackTo:
		dropped := s.MainFork.DropAfter(ev.Ref)
		return StatusUpdate{
			NewStatus: TransientRollback{
				NewFork:               dropped.Fork,
				NewForkChanges:        balance.New(),
				PreviousForkHeight:    s.CurrentHeightHint,
				PreviousForkDiffIndex: balance.IndexOf(dropped.Dropped),
			},
			UpdatedBalances: balance.New(),
			RequestBalances: balance.Index{},
		}

	case SyncFailed:
		dropped := s.MainFork.DropFrom(ev.Height)
		return StatusUpdate{
			NewStatus: TransientRollback{
				NewFork:               dropped.Fork,
				NewForkChanges:        balance.New(),
				PreviousForkHeight:    s.CurrentHeightHint,
				PreviousForkDiffIndex: balance.IndexOf(dropped.Dropped),
			},
			UpdatedBalances: balance.New(),
			RequestBalances: balance.Index{},
		}

	default:
		return unchanged(s)
	}
}

func applyTransientRollback(s TransientRollback, e Event) StatusUpdate {
	switch ev := e.(type) {
	case Appended:
		updatedFork, err := s.NewFork.WithBlock(ev.Block)
		if err != nil {
			restartHeight := uint32(1)
			if s.PreviousForkHeight > 1 {
				restartHeight = s.PreviousForkHeight - 1
			}
			return StatusUpdate{
				NewStatus: TransientRollback{
					NewFork:               chain.WavesFork{},
					NewForkChanges:        balance.New(),
					PreviousForkHeight:    s.PreviousForkHeight,
					PreviousForkDiffIndex: s.PreviousForkDiffIndex,
				},
				UpdatedBalances:        balance.New(),
				RequestBalances:        balance.Index{},
				UpdatedLastBlockHeight: restartRequired(restartHeight),
			}
		}

		accumulated := balance.Add(s.NewForkChanges, ev.Block.Changes)

		if ev.Block.Type == chain.Block {
			return StatusUpdate{
				NewStatus: TransientRollback{
					NewFork:               updatedFork,
					NewForkChanges:        accumulated,
					PreviousForkHeight:    s.PreviousForkHeight,
					PreviousForkDiffIndex: s.PreviousForkDiffIndex,
				},
				UpdatedBalances: balance.New(),
				RequestBalances: balance.Index{},
			}
		}

		// A micro-block arrived: promote to resolving.
		return StatusUpdate{
			NewStatus: TransientResolving{
				MainFork:          updatedFork,
				Stash:             nil,
				CurrentHeightHint: ev.Block.Ref.Height,
			},
			UpdatedBalances: accumulated,
			RequestBalances: s.PreviousForkDiffIndex.Difference(balance.IndexOf(accumulated)),
		}

	case RolledBackTo:
		dropped := s.NewFork.DropAfter(ev.Ref)
		return StatusUpdate{
			NewStatus: TransientRollback{
				NewFork:               dropped.Fork,
				NewForkChanges:        s.NewForkChanges,
				PreviousForkHeight:    s.PreviousForkHeight,
				PreviousForkDiffIndex: s.PreviousForkDiffIndex.Union(balance.IndexOf(dropped.Dropped)),
			},
			UpdatedBalances: balance.New(),
			RequestBalances: balance.Index{},
		}

	case SyncFailed:
		dropped := s.NewFork.DropFrom(ev.Height)
		return StatusUpdate{
			NewStatus: TransientRollback{
				NewFork:               dropped.Fork,
				NewForkChanges:        s.NewForkChanges,
				PreviousForkHeight:    s.PreviousForkHeight,
				PreviousForkDiffIndex: s.PreviousForkDiffIndex.Union(balance.IndexOf(dropped.Dropped)),
			},
			UpdatedBalances: balance.New(),
			RequestBalances: balance.Index{},
		}

	default:
		return unchanged(s)
	}
}

func applyTransientResolving(s TransientResolving, e Event) StatusUpdate {
	dr, ok := e.(DataReceived)
	if !ok {
		stash := make([]Event, len(s.Stash)+1)
		copy(stash, s.Stash)
		stash[len(s.Stash)] = e
		return StatusUpdate{
			NewStatus: TransientResolving{
				MainFork:          s.MainFork,
				Stash:             stash,
				CurrentHeightHint: s.CurrentHeightHint,
			},
			UpdatedBalances: balance.New(),
			RequestBalances: balance.Index{},
		}
	}

	seed := StatusUpdate{
		NewStatus:       Normal{MainFork: s.MainFork, CurrentHeightHint: s.CurrentHeightHint},
		UpdatedBalances: dr.Balances,
		RequestBalances: balance.Index{},
	}
	for _, stashed := range s.Stash {
		next := Apply(seed.NewStatus, stashed)
		seed = Merge(seed, next)
	}
	return seed
}
