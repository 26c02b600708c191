package miner

import "time"

// Config holds the tunables schedule_mining and the per-account forging
// tasks consult. Field names and defaults follow the reference miner's
// params.ChainConfig-adjacent tunables (gasFloor/gasCeil, recommit interval)
// generalized to this spec's key-block/micro-block cadence.
type Config struct {
	// AverageBlockDelay is the target average spacing between consecutive
	// key blocks, used by the base-target recalculation.
	AverageBlockDelay time.Duration

	// MicroBlockInterval is the cadence at which an account that holds the
	// current key-block lease packs a new micro-block.
	MicroBlockInterval time.Duration

	// MaxTransactionsPerMicroBlock bounds how many unconfirmed transactions
	// a single micro-block may carry.
	MaxTransactionsPerMicroBlock int

	// MaxTransactionsInKeyBlock bounds how many unconfirmed transactions a
	// freshly forged key block may carry, independent of the (usually
	// smaller) per-micro-block limit.
	MaxTransactionsInKeyBlock int

	// IntervalAfterLastBlockThenGenerationIsAllowed is the check_age
	// staleness cutoff: past genesis (height != 1), a forge attempt is
	// rejected once now - last_block.timestamp exceeds this.
	IntervalAfterLastBlockThenGenerationIsAllowed time.Duration

	// MinimalBlockGenerationOffset floors the delay scheduleMining arms
	// before a block generation task fires, regardless of how calc_offset's
	// whole-second alignment comes out.
	MinimalBlockGenerationOffset time.Duration

	// EnableMicroblocksAfterHeight is the feature-activation threshold: a
	// key block forged at a height at or below this stays Plain (no
	// micro-block chain); above it, the block is Ng and gets extended.
	EnableMicroblocksAfterHeight uint32

	// QuorumSize is the minimum number of connected peers required before a
	// forged block/micro-block is considered worth broadcasting.
	QuorumSize int

	// ForgeThreads is the number of goroutines in the forging workerpool; 0
	// selects numForgeThreads.
	ForgeThreads int
}

// DefaultConfig matches the reference miner's conservative defaults scaled
// to this spec's block/micro-block cadence.
var DefaultConfig = Config{
	AverageBlockDelay:                             60 * time.Second,
	MicroBlockInterval:                            5 * time.Second,
	MaxTransactionsPerMicroBlock:                  255,
	MaxTransactionsInKeyBlock:                     10000,
	IntervalAfterLastBlockThenGenerationIsAllowed: 5 * time.Minute,
	MinimalBlockGenerationOffset:                  100 * time.Millisecond,
	EnableMicroblocksAfterHeight:                  0,
	QuorumSize:                                    1,
	ForgeThreads:                                  numForgeThreads,
}

// maxRecentRejections bounds the per-account rejection-reason history that
// Miner.RecentRejections returns: a short recent trail, not a full log.
const maxRecentRejections = 5
