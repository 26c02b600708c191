package miner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalcOffsetFloorsAtMinimal(t *testing.T) {
	assert.Equal(t, 50*time.Millisecond, calcOffset(50*time.Millisecond, 1000, 1000))
}

func TestCalcOffsetAlignsToNextWholeSecond(t *testing.T) {
	got := calcOffset(10*time.Millisecond, 1500, 1000)
	assert.Equal(t, 1000*time.Millisecond, got)
}

func TestCalcOffsetNeverBelowMinimalWhenTsInPast(t *testing.T) {
	got := calcOffset(25*time.Millisecond, 500, 5000)
	assert.Equal(t, 25*time.Millisecond, got)
}

func TestCalcOffsetExceedsMinimalWhenAlignmentDominates(t *testing.T) {
	got := calcOffset(time.Millisecond, 2001, 1000)
	assert.Equal(t, 2000*time.Millisecond, got)
	assert.GreaterOrEqual(t, got, time.Millisecond)
}
