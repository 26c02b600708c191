package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berith-foundation/posnode/balance"
	"github.com/berith-foundation/posnode/common"
)

func ref(h uint32, id byte) common.BlockRef {
	return common.BlockRef{Height: h, ID: common.Bytes32{id}}
}

func block(h uint32, id, parentID byte) WavesBlock {
	return WavesBlock{
		Ref:       ref(h, id),
		Reference: common.Bytes32{parentID},
		Type:      Block,
	}
}

func TestWithBlockAppendsWhenReferencingTip(t *testing.T) {
	root := block(1, 1, 0)
	fork := NewFork(root)

	next := block(2, 2, 1)
	updated, err := fork.WithBlock(next)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), updated.Height())
	assert.Equal(t, uint32(1), fork.Height(), "WithBlock must not mutate the receiver")
}

func TestWithBlockRejectsWrongParent(t *testing.T) {
	fork := NewFork(block(1, 1, 0))
	_, err := fork.WithBlock(block(2, 2, 9))
	assert.ErrorIs(t, err, ErrWrongParent)
}

func TestWithBlockOnEmptyForkRequiresZeroReference(t *testing.T) {
	var empty WavesFork
	_, err := empty.WithBlock(block(1, 1, 9))
	assert.ErrorIs(t, err, ErrWrongParent)

	genesis := WavesBlock{Ref: ref(0, 1), Reference: common.Bytes32{}, Type: Block}
	updated, err := empty.WithBlock(genesis)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), updated.Height())
}

func TestDropAfterTruncatesAndSumsDroppedChanges(t *testing.T) {
	addr := common.Address{1}
	b1 := block(1, 1, 0)
	b1.Changes = balance.Of(addr, common.WavesAsset, 10)
	b2 := block(2, 2, 1)
	b2.Changes = balance.Of(addr, common.WavesAsset, -3)

	fork := NewFork(b1)
	fork, err := fork.WithBlock(b2)
	require.NoError(t, err)

	result := fork.DropAfter(b1.Ref)
	assert.Equal(t, uint32(1), result.Fork.Height())
	assert.Equal(t, int64(-3), result.Dropped.Get(addr, common.WavesAsset))
}

func TestDropAfterUnknownRefLeavesForkUnchanged(t *testing.T) {
	fork := NewFork(block(1, 1, 0))
	result := fork.DropAfter(ref(99, 99))
	assert.Equal(t, fork.Height(), result.Fork.Height())
	assert.True(t, result.Dropped.IsEmpty())
}

func TestDropFromDropsInclusive(t *testing.T) {
	fork := NewFork(block(1, 1, 0))
	fork, _ = fork.WithBlock(block(2, 2, 1))
	fork, _ = fork.WithBlock(block(3, 3, 2))

	result := fork.DropFrom(2)
	assert.Equal(t, uint32(1), result.Fork.Height())
}

func TestDropAllEmptiesFork(t *testing.T) {
	fork := NewFork(block(1, 1, 0))
	result := fork.DropAll()
	assert.True(t, result.Fork.IsEmpty())
}

func TestParentDepth(t *testing.T) {
	fork := NewFork(block(1, 1, 0))
	fork, _ = fork.WithBlock(block(2, 2, 1))

	tip, ok := fork.Parent(0)
	require.True(t, ok)
	assert.Equal(t, uint32(2), tip.Ref.Height)

	parent, ok := fork.Parent(1)
	require.True(t, ok)
	assert.Equal(t, uint32(1), parent.Ref.Height)

	_, ok = fork.Parent(2)
	assert.False(t, ok)
}
