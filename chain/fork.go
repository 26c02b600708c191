package chain

import (
	"errors"
	"fmt"

	"github.com/berith-foundation/posnode/balance"
	"github.com/berith-foundation/posnode/common"
)

// ErrWrongParent is returned by WavesFork.WithBlock when the candidate block
// does not reference the current tip.
var ErrWrongParent = errors.New("chain: block does not reference fork head")

// WavesFork is an ordered sequence of blocks, oldest first, whose last
// element is the tip.
type WavesFork struct {
	blocks []WavesBlock
}

// NewFork builds a fork seeded with a single root block (typically the
// genesis or the block the node last trusted before this fork began).
func NewFork(root WavesBlock) WavesFork {
	return WavesFork{blocks: []WavesBlock{root}}
}

// Blocks returns a snapshot copy of the fork's blocks, oldest first.
func (f WavesFork) Blocks() []WavesBlock {
	out := make([]WavesBlock, len(f.blocks))
	copy(out, f.blocks)
	return out
}

// IsEmpty reports whether the fork holds no blocks.
func (f WavesFork) IsEmpty() bool {
	return len(f.blocks) == 0
}

// Head returns the fork's tip and true, or the zero value and false if the
// fork is empty.
func (f WavesFork) Head() (WavesBlock, bool) {
	if len(f.blocks) == 0 {
		return WavesBlock{}, false
	}
	return f.blocks[len(f.blocks)-1], true
}

// Parent returns the block at the given depth below the tip: depth 0 is the
// tip itself, depth 1 its parent, depth 2 its grandparent, and so on.
func (f WavesFork) Parent(depth int) (WavesBlock, bool) {
	idx := len(f.blocks) - 1 - depth
	if idx < 0 || idx >= len(f.blocks) {
		return WavesBlock{}, false
	}
	return f.blocks[idx], true
}

// Height returns the height of the tip, or 0 if the fork is empty.
func (f WavesFork) Height() uint32 {
	head, ok := f.Head()
	if !ok {
		return 0
	}
	return head.Ref.Height
}

// WithBlock appends b to the fork if it references the current tip. It
// returns a new WavesFork; f is left unmodified.
func (f WavesFork) WithBlock(b WavesBlock) (WavesFork, error) {
	head, ok := f.Head()
	if ok && b.Reference != head.Ref.ID {
		return f, fmt.Errorf("%w: want parent %s, got %s", ErrWrongParent, head.Ref.ID, b.Reference)
	}
	if !ok && !b.Reference.IsZero() {
		return f, fmt.Errorf("%w: fork empty, block references %s", ErrWrongParent, b.Reference)
	}
	next := make([]WavesBlock, len(f.blocks)+1)
	copy(next, f.blocks)
	next[len(f.blocks)] = b
	return WavesFork{blocks: next}, nil
}

// DiffIndex returns the DiffIndex of the fork's accumulated balance changes.
func (f WavesFork) DiffIndex() balance.Index {
	return balance.IndexOf(f.diff())
}

func (f WavesFork) diff() balance.Balance {
	acc := balance.New()
	for _, b := range f.blocks {
		acc = balance.Add(acc, b.Changes)
	}
	return acc
}

// DropResult is the fork truncated by a drop operation together with the
// accumulated balance diff of the blocks that were dropped.
type DropResult struct {
	Fork    WavesFork
	Dropped balance.Balance
}

// DropAfter truncates the fork to and including ref, returning the truncated
// fork and the accumulated diff of the dropped (newer) blocks. If ref is not
// present in the fork, the fork is returned unchanged with an empty diff:
// there is nothing to truncate to.
func (f WavesFork) DropAfter(ref common.BlockRef) DropResult {
	idx := -1
	for i, b := range f.blocks {
		if b.Ref.SameBlock(ref) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return DropResult{Fork: f, Dropped: balance.New()}
	}
	dropped := balance.New()
	for _, b := range f.blocks[idx+1:] {
		dropped = balance.Add(dropped, b.Changes)
	}
	kept := make([]WavesBlock, idx+1)
	copy(kept, f.blocks[:idx+1])
	return DropResult{Fork: WavesFork{blocks: kept}, Dropped: dropped}
}

// DropFrom drops every block with height >= height, returning the truncated
// fork and the accumulated diff of the dropped blocks.
func (f WavesFork) DropFrom(height uint32) DropResult {
	idx := len(f.blocks)
	for i, b := range f.blocks {
		if b.Ref.Height >= height {
			idx = i
			break
		}
	}
	dropped := balance.New()
	for _, b := range f.blocks[idx:] {
		dropped = balance.Add(dropped, b.Changes)
	}
	kept := make([]WavesBlock, idx)
	copy(kept, f.blocks[:idx])
	return DropResult{Fork: WavesFork{blocks: kept}, Dropped: dropped}
}

// DropAll empties the fork, returning the empty fork and the accumulated diff
// of every block that was dropped.
func (f WavesFork) DropAll() DropResult {
	return DropResult{Fork: WavesFork{}, Dropped: f.diff()}
}
