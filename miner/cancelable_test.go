package miner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompositeCancelableReplaceCancelsPrior(t *testing.T) {
	var c compositeCancelable

	firstCanceled := false
	c.Replace(newCancelFunc(func() { firstCanceled = true }))
	assert.False(t, firstCanceled)

	secondCanceled := false
	c.Replace(newCancelFunc(func() { secondCanceled = true }))
	assert.True(t, firstCanceled, "replacing must cancel the previous cancelable")
	assert.False(t, secondCanceled)

	c.Cancel()
	assert.True(t, secondCanceled)
}

func TestCancelFuncOnlyFiresOnce(t *testing.T) {
	count := 0
	cf := newCancelFunc(func() { count++ })
	cf.Cancel()
	cf.Cancel()
	assert.Equal(t, 1, count)
}

func TestCompositeCancelableCancelIsIdempotent(t *testing.T) {
	var c compositeCancelable
	calls := 0
	c.Replace(newCancelFunc(func() { calls++ }))
	c.Cancel()
	c.Cancel()
	assert.Equal(t, 1, calls)
}
