package portfolio

import (
	"reflect"
	"sync"

	mapset "github.com/deckarep/golang-set"
	lru "github.com/hashicorp/golang-lru"

	"github.com/berith-foundation/posnode/balance"
	"github.com/berith-foundation/posnode/common"
)

// MaxForgedTransactions is the capacity of the forged-transaction FIFO
// cache: once a tx id is known forged, it is remembered for this many
// subsequent forged ids so a late-arriving duplicate from the unconfirmed
// pool is not re-added.
const MaxForgedTransactions = 10000

// Portfolios is PessimisticPortfolios: a thread-safe aggregation of the
// negative-only balance effects of unconfirmed transactions, per address.
//
// The returned address sets use mapset.Set, the same collection type the
// reference consensus engine's block-assembly environment already uses for
// its ancestor/family/uncle bookkeeping (miner/worker.go's environment.*
// mapset.Set fields), reused here instead of a hand-rolled set type.
type Portfolios struct {
	mu         sync.RWMutex
	portfolios balance.Balance
	txs        map[common.TxID]balance.Balance
	forged     *lru.Cache // common.TxID -> struct{}
}

// New returns an empty Portfolios with its forged-transaction cache sized to
// MaxForgedTransactions.
func New() *Portfolios {
	cache, err := lru.New(MaxForgedTransactions)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// MaxForgedTransactions never is.
		panic(err)
	}
	return &Portfolios{
		portfolios: balance.New(),
		txs:        make(map[common.TxID]balance.Balance),
		forged:     cache,
	}
}

// contribution computes the pessimistic_portfolio of a single transaction:
// negative balance updates, plus native-asset debits for outbound leases.
func contribution(tx *UtxTransaction) balance.Balance {
	acc := balance.New()
	if tx.Diff == nil {
		return acc
	}
	for _, bu := range tx.Diff.Balances {
		if bu.Amount < 0 {
			acc = balance.Add(acc, balance.Of(bu.Address, bu.Asset, bu.Amount))
		}
	}
	for _, lu := range tx.Diff.Leases {
		if lu.Out > 0 {
			acc = balance.Add(acc, balance.Of(lu.Address, common.WavesAsset, -lu.Out))
		}
	}
	return acc
}

func addressesOf(b balance.Balance) []common.Address {
	out := make([]common.Address, 0, len(b))
	for addr := range b {
		out = append(out, addr)
	}
	return out
}

// callers must hold p.mu for writing.
func (p *Portfolios) add(id common.TxID, contrib balance.Balance, affected mapset.Set) {
	if len(contrib) == 0 {
		p.txs[id] = contrib
		return
	}
	p.portfolios = balance.Add(p.portfolios, contrib)
	p.txs[id] = contrib
	for _, addr := range addressesOf(contrib) {
		affected.Add(addr)
	}
}

// callers must hold p.mu for writing.
func (p *Portfolios) remove(id common.TxID, contrib balance.Balance, affected mapset.Set) {
	if len(contrib) != 0 {
		p.portfolios = balance.Sub(p.portfolios, contrib)
		for _, addr := range addressesOf(contrib) {
			affected.Add(addr)
		}
	}
	delete(p.txs, id)
}

// ReplaceWith atomically replaces the in-flight transaction set with txs
// (minus any whose id is already known forged), returning the set of
// addresses whose aggregate changed.
func (p *Portfolios) ReplaceWith(txs []UtxTransaction) mapset.Set {
	p.mu.Lock()
	defer p.mu.Unlock()

	keep := make(map[common.TxID]UtxTransaction, len(txs))
	for _, tx := range txs {
		if p.forged.Contains(tx.ID) {
			continue
		}
		keep[tx.ID] = tx
	}

	affected := mapset.NewThreadUnsafeSet()

	for id, contrib := range p.txs {
		if _, ok := keep[id]; !ok {
			p.remove(id, contrib, affected)
		}
	}

	for id, tx := range keep {
		contrib := contribution(&tx)
		if existing, ok := p.txs[id]; ok {
			if reflect.DeepEqual(existing, contrib) {
				continue
			}
			p.remove(id, existing, affected)
		}
		p.add(id, contrib, affected)
	}

	return affected
}

// ProcessForged removes the contribution of each forged tx id that was being
// tracked, otherwise remembers the id so a later, stale ReplaceWith/AddPending
// doesn't re-add it. Returns the union of affected addresses.
func (p *Portfolios) ProcessForged(ids []common.TxID) mapset.Set {
	p.mu.Lock()
	defer p.mu.Unlock()

	affected := mapset.NewThreadUnsafeSet()
	for _, id := range ids {
		if contrib, ok := p.txs[id]; ok {
			p.remove(id, contrib, affected)
		} else {
			p.forged.Add(id, struct{}{})
		}
	}
	return affected
}

// AddPending adds each tx not already tracked and not already known forged,
// skipping exchange-type transactions, which contribute nothing pessimistic.
// The exclusion is inherited, unjustified behavior, kept here unchanged.
func (p *Portfolios) AddPending(txs []UtxTransaction) mapset.Set {
	p.mu.Lock()
	defer p.mu.Unlock()

	affected := mapset.NewThreadUnsafeSet()
	for _, tx := range txs {
		if _, tracked := p.txs[tx.ID]; tracked {
			continue
		}
		if p.forged.Contains(tx.ID) {
			continue
		}
		if tx.Transaction != nil && tx.Transaction.Kind == Exchange {
			continue
		}
		p.add(tx.ID, contribution(&tx), affected)
	}
	return affected
}

// GetAggregated returns a snapshot of the aggregated pessimistic portfolio
// for address, or an empty map if it has no in-flight negative effects.
func (p *Portfolios) GetAggregated(address common.Address) map[common.Asset]int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.portfolios.ForAddress(address)
}
