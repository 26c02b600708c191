// Package common holds the small value types shared across the node: addresses,
// asset identifiers, and block references. Cryptographic derivation of these
// values (hashing, signing) is explicitly out of scope and lives behind the
// collaborator interfaces in package node.
package common

import (
	"encoding/hex"
	"fmt"
)

// Bytes32 is a fixed 32-byte value used for block and signature identifiers.
type Bytes32 [32]byte

func (b Bytes32) String() string {
	return hex.EncodeToString(b[:])
}

// IsZero reports whether b is the zero value.
func (b Bytes32) IsZero() bool {
	return b == Bytes32{}
}

// Address identifies an account. Address derivation from a public key is a
// cryptographic concern and is not performed by this package.
type Address [26]byte

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// AddressFromHex decodes a hex-encoded address, for use in tests and fixtures.
func AddressFromHex(s string) (Address, error) {
	var a Address
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("decode address: %w", err)
	}
	if len(b) > len(a) {
		return a, fmt.Errorf("address too long: %d bytes", len(b))
	}
	copy(a[len(a)-len(b):], b)
	return a, nil
}

// Asset identifies a tradeable asset. The zero value is the chain's native
// asset, conventionally called "Waves".
type Asset [32]byte

// WavesAsset is the native asset identity: the zero Asset value.
var WavesAsset = Asset{}

func (a Asset) String() string {
	if a == WavesAsset {
		return "WAVES"
	}
	return hex.EncodeToString(a[:])
}

// TxID identifies an unconfirmed transaction.
type TxID Bytes32

func (id TxID) String() string {
	return Bytes32(id).String()
}

// BlockRef pairs a height with a block id. Equality is by id alone, per the
// data model: two refs naming the same id are the same ref even if a caller
// supplied different height hints.
type BlockRef struct {
	Height uint32
	ID     Bytes32
}

// SameBlock reports whether two refs name the same block, ignoring Height.
func (r BlockRef) SameBlock(other BlockRef) bool {
	return r.ID == other.ID
}

func (r BlockRef) String() string {
	return fmt.Sprintf("(%d,%s)", r.Height, r.ID)
}
