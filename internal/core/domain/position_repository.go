package domain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// PositionRepository is the abstraction for any kind of database intended
// to persist the Positions of traders.
type PositionRepository interface {
	// GetPosition returns the position of a trader on a market, or
	// ErrPositionNotFound if the pair never traded.
	GetPosition(
		ctx context.Context, proposalId common.Hash, trader common.Address,
	) (*Position, error)
	// GetPositionsForMarket returns all positions of a market.
	GetPositionsForMarket(
		ctx context.Context, proposalId common.Hash,
	) ([]Position, error)
	// UpdatePosition updates, or creates if missing, the position of a trader
	// on a market through the given closure.
	UpdatePosition(
		ctx context.Context, proposalId common.Hash, trader common.Address,
		updateFn func(p *Position) (*Position, error),
	) error
}
