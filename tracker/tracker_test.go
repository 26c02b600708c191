package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berith-foundation/posnode/chain"
	"github.com/berith-foundation/posnode/common"
	"github.com/berith-foundation/posnode/status"
)

// fakeTimer lets the test fire the stash timeout deterministically instead
// of waiting on a real time.Timer.
type fakeTimer struct {
	fn func()
}

func newFakeAfterFunc() (func(time.Duration, func()) *time.Timer, *fakeTimer) {
	ft := &fakeTimer{}
	return func(_ time.Duration, f func()) *time.Timer {
		ft.fn = f
		return time.NewTimer(time.Hour) // never fires on its own
	}, ft
}

func TestTrackerRearmsOnlyWhileResolving(t *testing.T) {
	normal := status.Normal{MainFork: chain.NewFork(chain.WavesBlock{Ref: common.BlockRef{Height: 1}}), CurrentHeightHint: 1}
	tr := New(normal, time.Hour)
	require.Nil(t, tr.timer)

	afterFunc, ft := newFakeAfterFunc()
	tr.mu.Lock()
	tr.afterFunc = afterFunc
	tr.mu.Unlock()

	resolving := status.TransientResolving{
		MainFork:          normal.MainFork,
		Stash:             nil,
		CurrentHeightHint: 9,
	}
	tr.mu.Lock()
	tr.current = resolving
	tr.rearm()
	tr.mu.Unlock()

	require.NotNil(t, ft.fn)
}

func TestTrackerStashTimeoutForcesSyncFailed(t *testing.T) {
	root := chain.WavesBlock{Ref: common.BlockRef{Height: 1}}
	resolving := status.TransientResolving{
		MainFork:          chain.NewFork(root),
		Stash:             nil,
		CurrentHeightHint: 9,
	}
	tr := New(resolving, time.Hour)

	afterFunc, ft := newFakeAfterFunc()
	tr.mu.Lock()
	tr.afterFunc = afterFunc
	tr.rearm()
	tr.mu.Unlock()

	require.NotNil(t, ft.fn)
	ft.fn()

	cur := tr.Current()
	_, stillResolving := cur.(status.TransientResolving)
	assert.False(t, stillResolving)
}

func TestTrackerStopDisarmsTimer(t *testing.T) {
	root := chain.WavesBlock{Ref: common.BlockRef{Height: 1}}
	resolving := status.TransientResolving{MainFork: chain.NewFork(root), CurrentHeightHint: 1}
	tr := New(resolving, time.Hour)
	tr.Stop()
	tr.mu.Lock()
	defer tr.mu.Unlock()
	assert.Nil(t, tr.timer)
}
