package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/futarchy-daemon/pkg/mathutil"
)

// Position holds the shares a trader owns on both sides of a market.
type Position struct {
	ProposalId common.Hash
	Trader     common.Address
	YesShares  uint64
	NoShares   uint64
}

// NewPosition returns an empty position for the given market and trader.
func NewPosition(proposalId common.Hash, trader common.Address) *Position {
	return &Position{
		ProposalId: proposalId,
		Trader:     trader,
	}
}

// Shares returns the shares owned on the given side.
func (p *Position) Shares(side Side) uint64 {
	switch side {
	case SideYes:
		return p.YesShares
	case SideNo:
		return p.NoShares
	default:
		return 0
	}
}

// WinningShares returns the shares matching the given outcome. An
// unresolved outcome matches none.
func (p *Position) WinningShares(outcome Outcome) uint64 {
	side, ok := outcome.WinningSide()
	if !ok {
		return 0
	}
	return p.Shares(side)
}

// Credit adds amount shares to the given side.
func (p *Position) Credit(side Side, amount uint64) error {
	if !side.IsValid() {
		return ErrInvalidSide
	}
	shares, err := mathutil.Add(p.Shares(side), amount)
	if err != nil {
		return err
	}
	p.setShares(side, shares)
	return nil
}

// Debit removes amount shares from the given side.
func (p *Position) Debit(side Side, amount uint64) error {
	if !side.IsValid() {
		return ErrInvalidSide
	}
	if p.Shares(side) < amount {
		return ErrInsufficientShares
	}
	p.setShares(side, p.Shares(side)-amount)
	return nil
}

// Clear zeroes both sides. The position is kept as the idle state.
func (p *Position) Clear() {
	p.YesShares = 0
	p.NoShares = 0
}

func (p *Position) IsZero() bool {
	return p.YesShares == 0 && p.NoShares == 0
}

func (p *Position) setShares(side Side, shares uint64) {
	if side == SideYes {
		p.YesShares = shares
		return
	}
	p.NoShares = shares
}
