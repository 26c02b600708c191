// Package miner implements the key-block/micro-block forging scheduler: one
// goroutine-backed schedule per wallet account, each waiting for its next
// eligible forging slot, assembling and submitting a key block on success,
// then extending it with a cadence of micro-blocks until superseded.
//
// The concurrency shape follows the reference miner (miner/worker.go): a
// small fixed worker pool runs submitted forging jobs, an atomic flag tracks
// whether the miner is running, and a "replace cancels prior" discipline
// (compositeCancelable) stops a stale scheduled/forging task before starting
// its replacement, generalizing the reference worker's newWorkCh interrupt
// handling to per-account schedules instead of a single global one.
package miner

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set"
	lru "github.com/hashicorp/golang-lru"

	"github.com/berith-foundation/posnode/chain"
	"github.com/berith-foundation/posnode/common"
	"github.com/berith-foundation/posnode/log"
	"github.com/berith-foundation/posnode/metrics"
	"github.com/berith-foundation/posnode/node"
)

// Miner owns the per-account forging schedules. Its collaborators are all
// interfaces (package node); this package contains no consensus,
// networking, or storage logic of its own.
type Miner struct {
	cfg Config

	history     node.History
	state       node.StateReader
	utx         node.UtxPool
	wallet      node.Wallet
	clock       node.Time
	coordinator node.Coordinator
	channels    node.AllChannels
	pos         node.PoS
	metrics     *metrics.Registry

	pool *workerpool

	mu       sync.Mutex
	accounts map[common.Address]*accountTask

	// scheduled holds the addresses with a live scheduled/forging/extending
	// task, mirrored alongside accounts so callers can take a set snapshot
	// without walking the account map.
	scheduled mapset.Set

	// recentRejections remembers, per account, the last few human-readable
	// reasons a forge attempt was abandoned; purely diagnostic.
	recentRejections *lru.Cache

	running int32
	quit    chan struct{}
}

// New constructs a Miner; call Start to begin scheduling.
func New(cfg Config, history node.History, state node.StateReader, utx node.UtxPool, wallet node.Wallet, clock node.Time, coordinator node.Coordinator, channels node.AllChannels, pos node.PoS, reg *metrics.Registry) *Miner {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	rejections, _ := lru.New(maxRecentRejections * 64)
	return &Miner{
		cfg:              cfg,
		history:          history,
		state:            state,
		utx:              utx,
		wallet:           wallet,
		clock:            clock,
		coordinator:      coordinator,
		channels:         channels,
		pos:              pos,
		metrics:          reg,
		accounts:         make(map[common.Address]*accountTask),
		scheduled:        mapset.NewThreadUnsafeSet(),
		recentRejections: rejections,
		quit:             make(chan struct{}),
	}
}

// Start schedules every account currently in the wallet. Calling Start twice
// without an intervening Stop is a no-op.
func (m *Miner) Start() {
	if !atomic.CompareAndSwapInt32(&m.running, 0, 1) {
		return
	}
	m.pool = newWorkerpool(m.cfg.ForgeThreads)

	for _, acc := range m.wallet.PrivateKeyAccounts() {
		m.addAccount(acc)
	}
}

// Stop cancels every account's schedule and stops the worker pool.
func (m *Miner) Stop() {
	if !atomic.CompareAndSwapInt32(&m.running, 1, 0) {
		return
	}
	close(m.quit)
	m.quit = make(chan struct{})

	m.mu.Lock()
	tasks := make([]*accountTask, 0, len(m.accounts))
	for _, t := range m.accounts {
		tasks = append(tasks, t)
	}
	m.mu.Unlock()

	for _, t := range tasks {
		t.cancel.Cancel()
		t.setState(Idle)
	}

	m.mu.Lock()
	m.scheduled = mapset.NewThreadUnsafeSet()
	m.mu.Unlock()

	m.pool.Stop()
}

func (m *Miner) addAccount(acc node.Account) {
	m.mu.Lock()
	t, exists := m.accounts[acc.Address]
	if !exists {
		t = newAccountTask(acc)
		m.accounts[acc.Address] = t
	}
	m.mu.Unlock()

	if !exists {
		m.scheduleMining(t)
	}
}

// ScheduledAccounts returns the addresses with a live scheduled, forging, or
// micro-extending task.
func (m *Miner) ScheduledAccounts() []common.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]common.Address, 0, m.scheduled.Cardinality())
	for a := range m.scheduled.Iter() {
		out = append(out, a.(common.Address))
	}
	return out
}

// RecentRejections returns the last few forge-rejection reasons recorded for
// addr, most recent last. Returns nil if none are recorded.
func (m *Miner) RecentRejections(addr common.Address) []string {
	v, ok := m.recentRejections.Get(addr)
	if !ok {
		return nil
	}
	return v.([]string)
}

func (m *Miner) recordRejection(addr common.Address, reason string) {
	var reasons []string
	if v, ok := m.recentRejections.Get(addr); ok {
		reasons = v.([]string)
	}
	reasons = append(reasons, reason)
	if len(reasons) > maxRecentRejections {
		reasons = reasons[len(reasons)-maxRecentRejections:]
	}
	m.recentRejections.Add(addr, reasons)
}

// AccountState reports the current forging state of an account, for
// observability/CLI purposes. Returns Idle if the account is unknown.
func (m *Miner) AccountState(addr common.Address) AccountState {
	m.mu.Lock()
	t, ok := m.accounts[addr]
	m.mu.Unlock()
	if !ok {
		return Idle
	}
	return t.getState()
}

// scheduleMining arms a timer for t's next eligible block generation slot,
// per the consensus engine's next_block_generation_time. Firing the timer
// submits the account's block generation task to the worker pool. Scheduling
// replaces (and thereby cancels) whatever was previously scheduled for t.
func (m *Miner) scheduleMining(t *accountTask) {
	height := m.history.Height()

	next, err := m.pos.NextBlockGenerationTime(height, t.account)
	if err != nil {
		log.Warn("could not compute next generation time, retrying", "account", t.account.Address, "err", err)
		m.armRetry(t)
		return
	}

	now := m.clock.CorrectedTimeMs()
	delay := calcOffset(m.cfg.MinimalBlockGenerationOffset, next, now)

	t.setState(Scheduled)
	m.mu.Lock()
	m.scheduled.Add(t.account.Address)
	m.mu.Unlock()

	timer := time.AfterFunc(delay, func() {
		m.pool.Submit(func() { m.forgeBlockTask(t) })
	})
	t.cancel.Replace(newCancelFunc(func() { timer.Stop() }))
}

// armRetry reschedules t after a short fixed backoff, used when the
// consensus collaborator cannot presently answer a scheduling question.
func (m *Miner) armRetry(t *accountTask) {
	timer := time.AfterFunc(time.Second, func() { m.scheduleMining(t) })
	t.cancel.Replace(newCancelFunc(func() { timer.Stop() }))
}

// forgeBlockTask is the per-account block generation task: it re-checks
// eligibility against the current chain tip (which may have advanced since
// the task was scheduled), assembles a key block on success, submits it to
// the coordinator, broadcasts it, and starts the account's micro-block
// chain. On any failure it falls back to rescheduling.
func (m *Miner) forgeBlockTask(t *accountTask) {
	t.setState(Forging)
	start := time.Now()

	parent, ok := m.history.LastBlock()
	if !ok {
		m.recordRejection(t.account.Address, "no parent block available")
		log.Warn("no parent block available, rescheduling", "account", t.account.Address)
		m.scheduleMining(t)
		return
	}

	if height := m.history.Height(); height != 1 {
		lastTs, ok := m.history.LastBlockTimestamp()
		if !ok {
			m.recordRejection(t.account.Address, "last block timestamp unavailable")
			log.Warn("last block timestamp unavailable, rescheduling", "account", t.account.Address)
			m.scheduleMining(t)
			return
		}
		now := m.clock.CorrectedTimeMs()
		if now > lastTs {
			if age := time.Duration(now-lastTs) * time.Millisecond; age > m.cfg.IntervalAfterLastBlockThenGenerationIsAllowed {
				reason := fmt.Sprintf("chain stale: last block %s old", age)
				m.recordRejection(t.account.Address, reason)
				log.Warn(reason, "account", t.account.Address)
				m.scheduleMining(t)
				return
			}
		}
	}

	if peers := m.channels.Size(); peers < m.cfg.QuorumSize {
		reason := fmt.Sprintf("quorum not available (%d/%d peers)", peers, m.cfg.QuorumSize)
		m.recordRejection(t.account.Address, reason)
		log.Warn(reason, "account", t.account.Address)
		m.scheduleMining(t)
		return
	}

	balance, err := m.state.GeneratingBalance(t.account, parent.Ref.Height)
	if err != nil {
		m.recordRejection(t.account.Address, "generating balance unavailable: "+err.Error())
		log.Warn("could not read generating balance, rescheduling", "account", t.account.Address, "err", err)
		m.scheduleMining(t)
		return
	}

	target, err := m.pos.CalcTarget(parent, m.clock.CorrectedTimeMs(), balance)
	if err != nil {
		m.recordRejection(t.account.Address, "target calculation failed: "+err.Error())
		log.Warn("could not calculate target, rescheduling", "account", t.account.Address, "err", err)
		m.scheduleMining(t)
		return
	}

	parentConsensus, ok := m.history.TipConsensusData()
	if !ok {
		m.recordRejection(t.account.Address, "no consensus data for tip")
		log.Warn("no consensus data for tip, rescheduling", "account", t.account.Address)
		m.scheduleMining(t)
		return
	}

	hit, err := m.pos.CalcHit(parentConsensus, t.account)
	if err != nil {
		m.recordRejection(t.account.Address, "hit calculation failed: "+err.Error())
		log.Warn("could not calculate hit, rescheduling", "account", t.account.Address, "err", err)
		m.scheduleMining(t)
		return
	}

	if hit.Cmp(target) >= 0 {
		// Not this account's slot after all (another account's block landed
		// first, or the hit/target relation moved against it); wait for the
		// next eligible slot.
		m.recordRejection(t.account.Address, "hit at or above target")
		m.scheduleMining(t)
		return
	}

	genSig, err := m.pos.CalcGeneratorSignature(parentConsensus, t.account)
	if err != nil {
		m.recordRejection(t.account.Address, "generator signature derivation failed: "+err.Error())
		log.Warn("could not derive generator signature, rescheduling", "account", t.account.Address, "err", err)
		m.scheduleMining(t)
		return
	}

	greatGrandparent, _ := m.history.Parent(2)
	baseTarget, err := m.pos.CalcBaseTarget(uint64(m.cfg.AverageBlockDelay/time.Second), parent.Ref.Height, parent, greatGrandparent, m.clock.CorrectedTimeMs())
	if err != nil {
		m.recordRejection(t.account.Address, "base target calculation failed: "+err.Error())
		log.Warn("could not calculate base target, rescheduling", "account", t.account.Address, "err", err)
		m.scheduleMining(t)
		return
	}

	txs := m.utx.PackUnconfirmed(m.cfg.MaxTransactionsInKeyBlock)
	block := chain.WavesBlock{
		Ref:          common.BlockRef{Height: parent.Ref.Height + 1, ID: genSig},
		Reference:    parent.Ref.ID,
		TimestampMs:  m.clock.CorrectedTimeMs(),
		Type:         chain.Block,
		Transactions: txs,
		Consensus:    chain.ConsensusData{BaseTarget: baseTarget, GeneratorSignature: genSig},
	}

	score, err := m.coordinator.ProcessSingleBlock(block, true)
	if err != nil {
		m.recordRejection(t.account.Address, "block rejected by coordinator: "+err.Error())
		log.Warn("block rejected by coordinator, rescheduling", "account", t.account.Address, "err", err)
		m.scheduleMining(t)
		return
	}

	m.metrics.ForgeBlockTime.Update(time.Since(start).Milliseconds())

	ngEnabled := block.Ref.Height > m.cfg.EnableMicroblocksAfterHeight
	version := "plain"
	if ngEnabled {
		version = "ng"
	}
	log.Info("forged block", "account", t.account.Address, "height", block.Ref.Height, "txs", len(txs), "version", version)

	m.broadcastQuorumGated(node.BlockForged{Block: block})
	m.broadcastQuorumGated(node.LocalScoreChanged{Score: score})

	if !ngEnabled {
		// Plain blocks carry no micro-block chain; go straight back to
		// scheduling the next key-block slot.
		m.scheduleMining(t)
		return
	}

	t.setState(MicroExtending)
	t.mu.Lock()
	t.microParent = &trackedBlock{totalSigHash: block.Ref.ID, forgedAt: time.Now()}
	t.mu.Unlock()

	m.startMicroBlockChain(t, block)
}

// broadcastQuorumGated only broadcasts when the node has at least
// cfg.QuorumSize connected peers: a forged block/micro-block nobody can see
// isn't worth announcing.
func (m *Miner) broadcastQuorumGated(msg node.Message) {
	if m.channels.Size() < m.cfg.QuorumSize {
		log.Debug("quorum not met, suppressing broadcast", "have", m.channels.Size(), "want", m.cfg.QuorumSize)
		return
	}
	m.channels.Broadcast(msg)
}

// startMicroBlockChain runs the micro-block cadence for the key block t just
// forged: every MicroBlockInterval it packs newly arrived unconfirmed
// transactions into a micro-block extending the previous total block,
// submits it, and broadcasts an inventory announcement. The loop is
// cancelable and is replaced the moment scheduleMining arms the account's
// next key-block slot.
func (m *Miner) startMicroBlockChain(t *accountTask, keyBlock chain.WavesBlock) {
	stop := make(chan struct{})
	t.cancel.Replace(newCancelFunc(func() { close(stop) }))

	go func() {
		ticker := time.NewTicker(m.cfg.MicroBlockInterval)
		defer ticker.Stop()

		total := keyBlock
		for {
			select {
			case <-stop:
				return
			case <-m.quit:
				return
			case <-ticker.C:
				start := time.Now()
				txs := m.utx.PackUnconfirmed(m.cfg.MaxTransactionsPerMicroBlock)
				if len(txs) == 0 {
					continue
				}

				prevSig := total.Ref.ID
				micro := chain.WavesBlock{
					Ref:          common.BlockRef{Height: total.Ref.Height, ID: deriveMicroSig(prevSig, len(txs))},
					Reference:    prevSig,
					TimestampMs:  m.clock.CorrectedTimeMs(),
					Type:         chain.MicroBlock,
					Transactions: append(append([]chain.Tx{}, total.Transactions...), txs...),
					Consensus:    total.Consensus,
				}

				if err := m.coordinator.ProcessMicroBlock(micro); err != nil {
					log.Warn("micro-block rejected by coordinator", "account", t.account.Address, "err", err)
					continue
				}

				m.metrics.ForgeMicroBlockTime.Update(time.Since(start).Milliseconds())
				total = micro

				t.mu.Lock()
				t.microParent = &trackedBlock{totalSigHash: micro.Ref.ID, forgedAt: time.Now()}
				t.mu.Unlock()

				m.broadcastQuorumGated(node.MicroBlockInv{TotalSig: micro.Ref.ID, PrevSig: prevSig})
			}
		}
	}()
}

// deriveMicroSig produces a deterministic placeholder total signature for a
// micro-block. Real generator-signature derivation is a consensus
// collaborator concern (node.PoS); this only needs to be distinct per
// micro-block so downstream fork bookkeeping can tell them apart.
func deriveMicroSig(prev common.Bytes32, txCount int) common.Bytes32 {
	next := prev
	next[0]++
	next[31] = byte(txCount)
	return next
}
