package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWavesAssetStringIsWAVES(t *testing.T) {
	assert.Equal(t, "WAVES", WavesAsset.String())
}

func TestNonZeroAssetStringIsHex(t *testing.T) {
	a := Asset{1}
	assert.Equal(t, "01", a.String()[:2])
	assert.NotEqual(t, "WAVES", a.String())
}

func TestAddressFromHexRoundTrips(t *testing.T) {
	full := Address{}
	for i := range full {
		full[i] = byte(i)
	}
	a, err := AddressFromHex(full.String())
	require.NoError(t, err)
	assert.Equal(t, full, a)
}

func TestAddressFromHexRejectsTooLong(t *testing.T) {
	tooLong := make([]byte, 60)
	for i := range tooLong {
		tooLong[i] = '0'
	}
	_, err := AddressFromHex(string(tooLong))
	assert.Error(t, err)
}

func TestBlockRefSameBlockIgnoresHeight(t *testing.T) {
	id := Bytes32{9}
	a := BlockRef{Height: 1, ID: id}
	b := BlockRef{Height: 2, ID: id}
	assert.True(t, a.SameBlock(b))
}

func TestBytes32IsZero(t *testing.T) {
	var z Bytes32
	assert.True(t, z.IsZero())
	z[0] = 1
	assert.False(t, z.IsZero())
}
