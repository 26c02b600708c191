package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berith-foundation/posnode/balance"
	"github.com/berith-foundation/posnode/chain"
	"github.com/berith-foundation/posnode/common"
)

func ref(h uint32, id byte) common.BlockRef {
	return common.BlockRef{Height: h, ID: common.Bytes32{id}}
}

func keyBlock(h uint32, id, parentID byte) chain.WavesBlock {
	return chain.WavesBlock{Ref: ref(h, id), Reference: common.Bytes32{parentID}, Type: chain.Block}
}

func microBlock(h uint32, id, parentID byte) chain.WavesBlock {
	b := keyBlock(h, id, parentID)
	b.Type = chain.MicroBlock
	return b
}

func TestNormalAppendExtendsForkAndUpdatesHeight(t *testing.T) {
	fork := chain.NewFork(keyBlock(1, 1, 0))
	s := Normal{MainFork: fork, CurrentHeightHint: 1}

	u := Apply(s, Appended{Block: keyBlock(2, 2, 1)})
	newNormal, ok := u.NewStatus.(Normal)
	require.True(t, ok)
	assert.Equal(t, uint32(2), newNormal.MainFork.Height())
	assert.Equal(t, Updated, u.UpdatedLastBlockHeight.Kind)
	assert.Equal(t, uint32(2), u.UpdatedLastBlockHeight.Height)
}

func TestNormalAppendMicroBlockDoesNotChangeHeightNotification(t *testing.T) {
	fork := chain.NewFork(keyBlock(1, 1, 0))
	s := Normal{MainFork: fork, CurrentHeightHint: 1}

	u := Apply(s, Appended{Block: microBlock(1, 2, 1)})
	assert.Equal(t, NotChanged, u.UpdatedLastBlockHeight.Kind)
}

func TestNormalAppendWrongParentForcesRollback(t *testing.T) {
	fork := chain.NewFork(keyBlock(5, 5, 4))
	s := Normal{MainFork: fork, CurrentHeightHint: 5}

	u := Apply(s, Appended{Block: keyBlock(9, 9, 0xFF)})
	rb, ok := u.NewStatus.(TransientRollback)
	require.True(t, ok)
	assert.Equal(t, uint32(5), rb.PreviousForkHeight)
	assert.Equal(t, RestartRequired, u.UpdatedLastBlockHeight.Kind)
	assert.Equal(t, uint32(4), u.UpdatedLastBlockHeight.Height)
}

func TestNormalRolledBackToEntersTransientRollback(t *testing.T) {
	addr := common.Address{1}
	b1 := keyBlock(1, 1, 0)
	b2 := keyBlock(2, 2, 1)
	b2.Changes = balance.Of(addr, common.WavesAsset, 7)

	fork := chain.NewFork(b1)
	fork, err := fork.WithBlock(b2)
	require.NoError(t, err)

	s := Normal{MainFork: fork, CurrentHeightHint: 2}
	u := Apply(s, RolledBackTo{Ref: b1.Ref})

	rb, ok := u.NewStatus.(TransientRollback)
	require.True(t, ok)
	assert.Equal(t, uint32(1), rb.NewFork.Height())
	assert.False(t, rb.PreviousForkDiffIndex.IsEmpty())
}

func TestTransientRollbackPromotesToResolvingOnMicroBlock(t *testing.T) {
	addr := common.Address{1}
	b1 := keyBlock(1, 1, 0)
	rb := TransientRollback{
		NewFork:               chain.NewFork(b1),
		NewForkChanges:        balance.New(),
		PreviousForkHeight:    1,
		PreviousForkDiffIndex: balance.IndexOf(balance.Of(addr, common.WavesAsset, 5)),
	}

	micro := microBlock(1, 2, 1)
	micro.Changes = balance.Of(addr, common.WavesAsset, 5)

	u := Apply(rb, Appended{Block: micro})
	_, ok := u.NewStatus.(TransientResolving)
	require.True(t, ok)
	assert.Equal(t, int64(5), u.UpdatedBalances.Get(addr, common.WavesAsset))
	assert.True(t, u.RequestBalances.IsEmpty(), "the one touched key was already covered by the micro-block's own changes")
}

func TestTransientRollbackStaysOnKeyBlockAppend(t *testing.T) {
	b1 := keyBlock(1, 1, 0)
	rb := TransientRollback{NewFork: chain.NewFork(b1), NewForkChanges: balance.New(), PreviousForkHeight: 1}

	u := Apply(rb, Appended{Block: keyBlock(2, 2, 1)})
	next, ok := u.NewStatus.(TransientRollback)
	require.True(t, ok)
	assert.Equal(t, uint32(2), next.NewFork.Height())
	assert.True(t, u.UpdatedBalances.IsEmpty())
}

func TestTransientResolvingStashesNonDataEvents(t *testing.T) {
	s := TransientResolving{MainFork: chain.NewFork(keyBlock(1, 1, 0)), CurrentHeightHint: 1}
	u := Apply(s, SyncFailed{Height: 2})
	resolving, ok := u.NewStatus.(TransientResolving)
	require.True(t, ok)
	assert.Len(t, resolving.Stash, 1)
}

func TestTransientResolvingFoldsStashOnDataReceived(t *testing.T) {
	addr := common.Address{1}
	s := TransientResolving{
		MainFork:          chain.NewFork(keyBlock(1, 1, 0)),
		Stash:             []Event{Appended{Block: keyBlock(2, 2, 1)}},
		CurrentHeightHint: 1,
	}

	u := Apply(s, DataReceived{Balances: balance.Of(addr, common.WavesAsset, 3)})
	normal, ok := u.NewStatus.(Normal)
	require.True(t, ok)
	assert.Equal(t, uint32(2), normal.MainFork.Height())
	assert.Equal(t, int64(3), u.UpdatedBalances.Get(addr, common.WavesAsset))
}

func TestMergeUnionsBalancesAndPrefersNextHeightUnlessNotChanged(t *testing.T) {
	addr := common.Address{1}
	a := StatusUpdate{
		UpdatedBalances:        balance.Of(addr, common.WavesAsset, 1),
		RequestBalances:        balance.Index{},
		UpdatedLastBlockHeight: updated(5),
	}
	b := StatusUpdate{
		NewStatus:              Normal{CurrentHeightHint: 6},
		UpdatedBalances:        balance.Of(addr, common.WavesAsset, 2),
		RequestBalances:        balance.Index{},
		UpdatedLastBlockHeight: notChanged(),
	}

	merged := Merge(a, b)
	assert.Equal(t, int64(3), merged.UpdatedBalances.Get(addr, common.WavesAsset))
	assert.Equal(t, Updated, merged.UpdatedLastBlockHeight.Kind)
	assert.Equal(t, uint32(5), merged.UpdatedLastBlockHeight.Height)
}
