// Package portfolio implements PessimisticPortfolios: a thread-safe index
// that aggregates the negative-only balance effects of unconfirmed
// transactions per address, consulted by order-matching and exposed for
// external queries.
package portfolio

import "github.com/berith-foundation/posnode/common"

// TxKind distinguishes the one transaction shape pessimistic accounting
// ignores (exchange transactions) from every other kind, which is treated
// uniformly.
type TxKind uint8

const (
	// Other is any transaction kind whose balance effects should be
	// accounted for pessimistically.
	Other TxKind = iota
	// Exchange transactions contribute nothing to pessimistic portfolios.
	// Inherited, unjustified behavior: kept as-is, flagged rather than
	// rationalized.
	Exchange
)

// TxBody is the opaque transaction payload; only the Kind is inspected by
// this package. Validity checking and wire decoding are collaborator
// concerns.
type TxBody struct {
	Kind TxKind
}

// BalanceUpdate is a single per-address, per-asset delta reported by the
// state diff of an unconfirmed transaction.
type BalanceUpdate struct {
	Address common.Address
	Asset   common.Asset
	Amount  int64
}

// LeaseUpdate reports that Address leased Out additional native-asset units
// out, which pessimistically reduces its available balance even though the
// leased funds are not yet reflected as a negative balance update.
type LeaseUpdate struct {
	Address common.Address
	Out     int64
}

// StateUpdate is the state-diff payload of an unconfirmed transaction, as
// reported by the collaborator computing it (transaction validity / state
// application is out of scope here).
type StateUpdate struct {
	Balances []BalanceUpdate
	Leases   []LeaseUpdate
}

// UtxTransaction is a transaction as seen sitting in the unconfirmed pool:
// its diff may be absent (not yet computed) and its body may be absent (not
// yet decoded), both of which contribute nothing pessimistic.
type UtxTransaction struct {
	ID          common.TxID
	Diff        *StateUpdate
	Transaction *TxBody
}
