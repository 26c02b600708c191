// Package testutil generates distinct fixture identifiers for tests across
// the module, grounded on the reference corpus's own test fixtures
// (signer/core/api_test.go constructs ad hoc accounts/addresses per case);
// github.com/pborman/uuid supplies the randomness rather than hand-rolled
// counters, so fixture ids collide only as likely as two random UUIDs would.
package testutil

import "github.com/pborman/uuid"

// NewTxID returns a pseudo-random 32-byte id suitable as a common.TxID or
// common.Bytes32 fixture; callers convert via common.TxID(NewTxID()).
func NewTxID() [32]byte {
	var out [32]byte
	u := uuid.NewRandom()
	copy(out[:], u)
	copy(out[16:], uuid.NewRandom())
	return out
}

// NewAddressBytes returns 26 pseudo-random bytes suitable as a
// common.Address fixture.
func NewAddressBytes() [26]byte {
	var out [26]byte
	u := uuid.NewRandom()
	copy(out[:], u)
	copy(out[16:], uuid.NewRandom())
	return out
}
