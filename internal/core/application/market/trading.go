package market

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/tdex-network/futarchy-daemon/pkg/mathutil"
)

// BuyShares spends amount of the caller's settlement asset to mint shares of
// the given side. It returns the minted shares.
func (s *Service) BuyShares(
	ctx context.Context, caller common.Address,
	proposalId common.Hash, side domain.Side, amount uint64,
) (uint64, error) {
	if !side.IsValid() {
		return 0, domain.ErrInvalidSide
	}

	var (
		market    domain.Market
		sharesOut uint64
	)
	unlock := s.locker.acquire(proposalId)
	_, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			now := s.clock()
			if err := s.repoManager.MarketRepository().UpdateMarket(
				ctx, proposalId, func(m *domain.Market) (*domain.Market, error) {
					out, err := m.Buy(side, amount, s.formula, now)
					if err != nil {
						return nil, err
					}
					sharesOut = out
					market = *m
					return m, nil
				},
			); err != nil {
				return nil, err
			}

			if err := s.repoManager.PositionRepository().UpdatePosition(
				ctx, proposalId, caller,
				func(p *domain.Position) (*domain.Position, error) {
					if err := p.Credit(side, sharesOut); err != nil {
						return nil, err
					}
					return p, nil
				},
			); err != nil {
				return nil, err
			}

			return nil, s.debit(ctx, caller, amount)
		},
	)
	unlock()
	if err != nil {
		return 0, err
	}

	log.Debugf(
		"%s bought %d %s shares of market %s for %d",
		caller.Hex(), sharesOut, side, proposalId.Hex(), amount,
	)
	s.publish(func() error {
		return s.pubsub.PublishSharesBoughtEvent(
			market, caller, side, sharesOut, amount,
		)
	})
	return sharesOut, nil
}

// SellShares burns shareAmount of the caller's shares of the given side and
// releases the quoted settlement asset to the caller. It returns the released
// amount. Selling zero shares fails with domain.ErrZeroOutput.
func (s *Service) SellShares(
	ctx context.Context, caller common.Address,
	proposalId common.Hash, side domain.Side, shareAmount uint64,
) (uint64, error) {
	if !side.IsValid() {
		return 0, domain.ErrInvalidSide
	}

	var (
		market    domain.Market
		tokensOut uint64
	)
	unlock := s.locker.acquire(proposalId)
	_, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			now := s.clock()
			held, err := s.heldShares(ctx, proposalId, caller, side)
			if err != nil {
				return nil, err
			}
			if err := s.repoManager.MarketRepository().UpdateMarket(
				ctx, proposalId, func(m *domain.Market) (*domain.Market, error) {
					if err := m.CheckTradable(now); err != nil {
						return nil, err
					}
					if held < shareAmount {
						return nil, domain.ErrInsufficientShares
					}
					out, err := m.Sell(side, shareAmount, s.formula, now)
					if err != nil {
						return nil, err
					}
					tokensOut = out
					market = *m
					return m, nil
				},
			); err != nil {
				return nil, err
			}

			if err := s.repoManager.PositionRepository().UpdatePosition(
				ctx, proposalId, caller,
				func(p *domain.Position) (*domain.Position, error) {
					if err := p.Debit(side, shareAmount); err != nil {
						return nil, err
					}
					return p, nil
				},
			); err != nil {
				return nil, err
			}

			return nil, s.credit(ctx, caller, tokensOut)
		},
	)
	unlock()
	if err != nil {
		return 0, err
	}

	log.Debugf(
		"%s sold %d %s shares of market %s for %d",
		caller.Hex(), shareAmount, side, proposalId.Hex(), tokensOut,
	)
	s.publish(func() error {
		return s.pubsub.PublishSharesSoldEvent(
			market, caller, side, shareAmount, tokensOut,
		)
	})
	return tokensOut, nil
}

// QuoteBuy previews BuyShares against the current state of the market.
func (s *Service) QuoteBuy(
	ctx context.Context, proposalId common.Hash, side domain.Side, amount uint64,
) (*Quote, error) {
	if !side.IsValid() {
		return nil, domain.ErrInvalidSide
	}
	market, err := s.repoManager.MarketRepository().GetMarket(ctx, proposalId)
	if err != nil {
		return nil, err
	}

	sharesOut, err := market.PreviewBuy(side, amount, s.formula, s.clock())
	if err != nil {
		return nil, err
	}
	return &Quote{
		Side:           side,
		AmountIn:       amount,
		AmountOut:      sharesOut,
		EffectivePrice: mathutil.Div(amount, sharesOut),
	}, nil
}

// QuoteSell previews SellShares against the current state of the market.
// The caller's holdings are not checked.
func (s *Service) QuoteSell(
	ctx context.Context, proposalId common.Hash,
	side domain.Side, shareAmount uint64,
) (*Quote, error) {
	if !side.IsValid() {
		return nil, domain.ErrInvalidSide
	}
	market, err := s.repoManager.MarketRepository().GetMarket(ctx, proposalId)
	if err != nil {
		return nil, err
	}

	tokensOut, err := market.PreviewSell(side, shareAmount, s.formula, s.clock())
	if err != nil {
		return nil, err
	}
	return &Quote{
		Side:           side,
		AmountIn:       shareAmount,
		AmountOut:      tokensOut,
		EffectivePrice: mathutil.Div(tokensOut, shareAmount),
	}, nil
}

// heldShares returns the shares of the given side owned by trader, zero if
// the pair never traded.
func (s *Service) heldShares(
	ctx context.Context, proposalId common.Hash,
	trader common.Address, side domain.Side,
) (uint64, error) {
	position, err := s.repoManager.PositionRepository().GetPosition(
		ctx, proposalId, trader,
	)
	if err != nil {
		if errors.Is(err, domain.ErrPositionNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return position.Shares(side), nil
}
