package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// MarketRepository is the abstraction for any kind of database intended to
// persist Markets.
type MarketRepository interface {
	// AddMarket adds a new market to the repository. It fails with
	// ErrMarketAlreadyExists if the proposal id is taken.
	AddMarket(ctx context.Context, market *Market) error
	// GetMarket returns the market of the given proposal, or
	// ErrMarketNotFound.
	GetMarket(ctx context.Context, proposalId common.Hash) (*Market, error)
	// GetAllMarkets returns all markets sorted by creation time.
	GetAllMarkets(ctx context.Context) ([]Market, error)
	// UpdateMarket updates the state of a market. The closure function let's
	// to commit multiple changes to a certain market in a transactional way.
	UpdateMarket(
		ctx context.Context, proposalId common.Hash,
		updateFn func(m *Market) (*Market, error),
	) error
}
