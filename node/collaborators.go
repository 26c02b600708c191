// Package node declares the collaborator interfaces the miner and status
// tracker depend on but do not implement: wallet key storage, transaction
// validity checking, cryptographic primitives, network I/O, on-disk state
// storage, and consensus arithmetic. Production wiring of these interfaces
// lives outside this module's scope.
package node

import (
	"math/big"

	"github.com/berith-foundation/posnode/chain"
	"github.com/berith-foundation/posnode/common"
)

// Account is the minimal shape the miner needs from a wallet entry; the
// private key material itself is opaque and never leaves the Wallet.
type Account struct {
	Address   common.Address
	PublicKey []byte
}

// History answers questions about the locally held chain.
type History interface {
	Height() uint32
	LastBlock() (chain.WavesBlock, bool)
	// Parent returns the ancestor of the current tip at the given depth (0
	// is the tip itself).
	Parent(depth int) (chain.WavesBlock, bool)
	// LastBlockTimestamp returns the timestamp of the most recent key block,
	// the input to the check_age staleness gate.
	LastBlockTimestamp() (uint64, bool)
	// TipConsensusData returns the consensus header of the current tip, the
	// input every hit/target/generator-signature calculation for the next
	// block is derived from.
	TipConsensusData() (chain.ConsensusData, bool)
}

// StateReader answers balance questions needed for consensus eligibility.
type StateReader interface {
	GeneratingBalance(account Account, height uint32) (uint64, error)
}

// UtxPool packs unconfirmed transactions for inclusion in a block.
type UtxPool interface {
	PackUnconfirmed(limit int) []chain.Tx
}

// Wallet exposes the accounts available for forging.
type Wallet interface {
	PrivateKeyAccounts() []Account
}

// Time supplies the node's network-corrected clock.
type Time interface {
	// CorrectedTimeMs returns milliseconds since the Unix epoch.
	CorrectedTimeMs() uint64
}

// Score is the cumulative chain score returned by the Coordinator on a
// successful append.
type Score = *big.Int

// Coordinator arbitrates block and micro-block submission against the rest
// of the node (validity checking, state application, fork choice).
type Coordinator interface {
	ProcessSingleBlock(block chain.WavesBlock, local bool) (Score, error)
	ProcessMicroBlock(micro chain.WavesBlock) error
}

// Message is the closed set of gossip messages the miner broadcasts after a
// successful forge.
type Message interface {
	isMessage()
}

// LocalScoreChanged announces the node's new cumulative score.
type LocalScoreChanged struct {
	Score Score
}

func (LocalScoreChanged) isMessage() {}

// BlockForged announces a newly forged key block.
type BlockForged struct {
	Block chain.WavesBlock
}

func (BlockForged) isMessage() {}

// MicroBlockInv announces a newly forged micro-block by its total and
// previous total signatures.
type MicroBlockInv struct {
	TotalSig common.Bytes32
	PrevSig  common.Bytes32
}

func (MicroBlockInv) isMessage() {}

// AllChannels is the peer-broadcast collaborator.
type AllChannels interface {
	Size() int
	Broadcast(msg Message)
}

// PoS groups the consensus arithmetic the miner treats as opaque: hit/target
// eligibility, base target recalculation, generator signature derivation,
// and the next eligible generation time. Their input/output contracts are
// exactly as used by the block generation task.
type PoS interface {
	CalcHit(parent chain.ConsensusData, account Account) (*big.Int, error)
	CalcTarget(parent chain.WavesBlock, nowMs uint64, balance uint64) (*big.Int, error)
	CalcBaseTarget(avgBlockDelaySec uint64, parentHeight uint32, parent, greatGrandparent chain.WavesBlock, nowMs uint64) (uint64, error)
	CalcGeneratorSignature(parent chain.ConsensusData, account Account) (common.Bytes32, error)
	NextBlockGenerationTime(height uint32, account Account) (uint64, error)
}
