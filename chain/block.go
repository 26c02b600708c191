// Package chain implements the block and fork model consumed by the status
// state machine: a WavesBlock-equivalent type, and WavesFork, the ordered
// sequence of blocks the node maintains as its local view of one branch.
package chain

import (
	"fmt"

	"github.com/berith-foundation/posnode/balance"
	"github.com/berith-foundation/posnode/common"
)

// Type distinguishes a primary key block from an incremental micro-block.
type Type uint8

const (
	// Block is a primary chain element carrying a consensus header.
	Block Type = iota
	// MicroBlock is an incremental extension of the most recent Block,
	// carrying further transactions but no new consensus header.
	MicroBlock
)

func (t Type) String() string {
	if t == MicroBlock {
		return "micro-block"
	}
	return "block"
}

// Tx is an opaque unconfirmed-transaction payload; its shape beyond identity
// is a collaborator concern (transaction validity, wire encoding).
type Tx struct {
	ID common.TxID
}

// ConsensusData is the per-key-block consensus header the PoS primitives
// operate on and derive the next block's hit/target/generator-signature
// from. Its shape is owned by the consensus engine, not by this package; a
// micro-block carries its parent key block's ConsensusData unchanged.
type ConsensusData struct {
	BaseTarget         uint64
	GeneratorSignature common.Bytes32
}

// WavesBlock is a single element of a fork: either a key block or a
// micro-block extending one.
type WavesBlock struct {
	Ref          common.BlockRef
	Reference    common.Bytes32 // parent id
	TimestampMs  uint64
	Type         Type
	Changes      balance.Balance
	Transactions []Tx
	Consensus    ConsensusData
}

func (b WavesBlock) String() string {
	return fmt.Sprintf("%s@%s(ref=%s)", b.Type, b.Ref, b.Reference)
}
