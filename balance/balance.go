// Package balance implements BlockchainBalance, a sparse Address->Asset->int64
// mapping that forms a commutative group under componentwise addition, and
// DiffIndex, the set of (address, asset) keys a balance touches.
package balance

import "github.com/berith-foundation/posnode/common"

// Key is a single (address, asset) coordinate in a Balance.
type Key struct {
	Address common.Address
	Asset   common.Asset
}

// Balance is a sparse Address -> Asset -> amount mapping. The zero value is
// the group identity (empty). Entries whose value settles to zero are always
// pruned so that Balance equality and iteration only ever see nonzero deltas.
type Balance map[common.Address]map[common.Asset]int64

// New returns an empty Balance (the group identity).
func New() Balance {
	return make(Balance)
}

// Of builds a Balance from a single (address, asset, amount) triple, pruning
// if amount is zero.
func Of(addr common.Address, asset common.Asset, amount int64) Balance {
	b := New()
	b.set(addr, asset, amount)
	return b
}

func (b Balance) set(addr common.Address, asset common.Asset, amount int64) {
	if amount == 0 {
		if assets, ok := b[addr]; ok {
			delete(assets, asset)
			if len(assets) == 0 {
				delete(b, addr)
			}
		}
		return
	}
	assets, ok := b[addr]
	if !ok {
		assets = make(map[common.Asset]int64)
		b[addr] = assets
	}
	assets[asset] = amount
}

// Get returns the amount stored for (addr, asset), or 0 if absent.
func (b Balance) Get(addr common.Address, asset common.Asset) int64 {
	if assets, ok := b[addr]; ok {
		return assets[asset]
	}
	return 0
}

// ForAddress returns a snapshot copy of the asset map for addr, or an empty
// map if the address has no entries.
func (b Balance) ForAddress(addr common.Address) map[common.Asset]int64 {
	out := make(map[common.Asset]int64)
	for asset, amount := range b[addr] {
		out[asset] = amount
	}
	return out
}

// IsEmpty reports whether b is the group identity.
func (b Balance) IsEmpty() bool {
	return len(b) == 0
}

// Clone returns a deep copy of b.
func (b Balance) Clone() Balance {
	out := make(Balance, len(b))
	for addr, assets := range b {
		cp := make(map[common.Asset]int64, len(assets))
		for asset, amount := range assets {
			cp[asset] = amount
		}
		out[addr] = cp
	}
	return out
}

// Add returns b ⊕ other, the componentwise sum, with zero entries pruned.
func Add(b, other Balance) Balance {
	out := b.Clone()
	for addr, assets := range other {
		for asset, amount := range assets {
			out.set(addr, asset, out.Get(addr, asset)+amount)
		}
	}
	return out
}

// Negate returns the group inverse of b (every amount negated).
func Negate(b Balance) Balance {
	out := New()
	for addr, assets := range b {
		for asset, amount := range assets {
			out.set(addr, asset, -amount)
		}
	}
	return out
}

// Sub returns b ⊖ other (i.e. Add(b, Negate(other))).
func Sub(b, other Balance) Balance {
	return Add(b, Negate(other))
}

// Index is the DiffIndex: the set of (address, asset) keys touched by a
// Balance.
type Index map[Key]struct{}

// IndexOf returns the DiffIndex of b.
func IndexOf(b Balance) Index {
	idx := make(Index, len(b))
	for addr, assets := range b {
		for asset := range assets {
			idx[Key{Address: addr, Asset: asset}] = struct{}{}
		}
	}
	return idx
}

// Union returns the union of two DiffIndex values.
func (idx Index) Union(other Index) Index {
	out := make(Index, len(idx)+len(other))
	for k := range idx {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Difference returns idx Δ other: the keys in idx that are not in other.
func (idx Index) Difference(other Index) Index {
	out := make(Index, len(idx))
	for k := range idx {
		if _, in := other[k]; !in {
			out[k] = struct{}{}
		}
	}
	return out
}

// IsEmpty reports whether idx has no entries.
func (idx Index) IsEmpty() bool {
	return len(idx) == 0
}
