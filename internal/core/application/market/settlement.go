package market

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
)

// ResolveMarket fixes the outcome of the given market. Only the oracle
// authority can call it, at or after the end of the trading window.
func (s *Service) ResolveMarket(
	ctx context.Context, caller common.Address,
	proposalId common.Hash, outcome domain.Outcome,
) (*domain.Market, error) {
	if caller != s.Oracle() {
		return nil, domain.ErrUnauthorized
	}

	var market domain.Market
	unlock := s.locker.acquire(proposalId)
	_, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			now := s.clock()
			return nil, s.repoManager.MarketRepository().UpdateMarket(
				ctx, proposalId, func(m *domain.Market) (*domain.Market, error) {
					if err := m.Resolve(outcome, now); err != nil {
						return nil, err
					}
					market = *m
					return m, nil
				},
			)
		},
	)
	unlock()
	if err != nil {
		return nil, err
	}

	if outcome == domain.OutcomeUnresolved {
		log.Warnf(
			"market %s resolved without a winning side, its pool can't be claimed",
			proposalId.Hex(),
		)
	} else {
		log.Infof("resolved market %s with outcome %s", proposalId.Hex(), outcome)
	}
	s.publish(func() error {
		return s.pubsub.PublishMarketResolvedEvent(market, caller)
	})
	return &market, nil
}

// ClaimWinnings pays the caller the pro-rata share of the whole pool owed to
// its winning shares and clears both sides of its position.
func (s *Service) ClaimWinnings(
	ctx context.Context, caller common.Address, proposalId common.Hash,
) (uint64, error) {
	var (
		market domain.Market
		payout uint64
	)
	unlock := s.locker.acquire(proposalId)
	_, err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			m, err := s.repoManager.MarketRepository().GetMarket(ctx, proposalId)
			if err != nil {
				return nil, err
			}
			if !m.IsResolved() {
				return nil, domain.ErrMarketNotResolved
			}

			position, err := s.repoManager.PositionRepository().GetPosition(
				ctx, proposalId, caller,
			)
			if err != nil {
				if errors.Is(err, domain.ErrPositionNotFound) {
					return nil, domain.ErrNoWinnings
				}
				return nil, err
			}
			winningShares := position.WinningShares(m.Outcome)
			if winningShares == 0 {
				return nil, domain.ErrNoWinnings
			}

			amount, err := m.Payout(winningShares)
			if err != nil {
				return nil, err
			}

			if err := s.repoManager.PositionRepository().UpdatePosition(
				ctx, proposalId, caller,
				func(p *domain.Position) (*domain.Position, error) {
					p.Clear()
					return p, nil
				},
			); err != nil {
				return nil, err
			}

			if err := s.credit(ctx, caller, amount); err != nil {
				return nil, err
			}
			market = *m
			payout = amount
			return nil, nil
		},
	)
	unlock()
	if err != nil {
		return 0, err
	}

	log.Debugf(
		"%s claimed %d from market %s", caller.Hex(), payout, proposalId.Hex(),
	)
	s.publish(func() error {
		return s.pubsub.PublishWinningsClaimedEvent(market, caller, payout)
	})
	return payout, nil
}

// CalculateWinnings returns what ClaimWinnings would pay trader without
// changing any state. It's zero if the market is not resolved, if it has no
// winning side or if trader holds no winning shares.
func (s *Service) CalculateWinnings(
	ctx context.Context, proposalId common.Hash, trader common.Address,
) (uint64, error) {
	res, err := s.repoManager.RunTransaction(
		ctx, true, func(ctx context.Context) (interface{}, error) {
			m, err := s.repoManager.MarketRepository().GetMarket(ctx, proposalId)
			if err != nil {
				return nil, err
			}
			if !m.IsResolved() {
				return uint64(0), nil
			}

			position, err := s.repoManager.PositionRepository().GetPosition(
				ctx, proposalId, trader,
			)
			if err != nil {
				if errors.Is(err, domain.ErrPositionNotFound) {
					return uint64(0), nil
				}
				return nil, err
			}
			winningShares := position.WinningShares(m.Outcome)
			if winningShares == 0 {
				return uint64(0), nil
			}
			return m.Payout(winningShares)
		},
	)
	if err != nil {
		return 0, err
	}
	return res.(uint64), nil
}
