package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// SettlementLedger is the fungible-token ledger that holds the settlement
// asset on behalf of the engine.
type SettlementLedger interface {
	// Debit moves amount from the given account into the engine custody.
	Debit(ctx context.Context, from common.Address, amount uint64) error
	// Credit moves amount from the engine custody to the given account.
	Credit(ctx context.Context, to common.Address, amount uint64) error
}

// BalanceReader is implemented by ledgers that can report balances.
type BalanceReader interface {
	BalanceOf(ctx context.Context, account common.Address) (uint64, error)
}
