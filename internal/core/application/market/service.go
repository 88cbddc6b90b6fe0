package market

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/futarchy-daemon/internal/core/application/pubsub"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
	"github.com/tdex-network/futarchy-daemon/pkg/marketmaking"
)

// Clock returns the current time. It's injected so that trading windows can
// be driven by tests.
type Clock func() time.Time

// Service orchestrates the lifecycle of the markets. Every mutating operation
// runs in a single repository transaction whose last step is the call to the
// settlement ledger, so that a ledger refusal leaves no partial state.
type Service struct {
	repoManager ports.RepoManager
	ledger      ports.SettlementLedger
	pubsub      *pubsub.Service
	formula     marketmaking.MakingFormula
	clock       Clock

	seedLiquidity uint64
	governance    common.Address

	oracleLock sync.RWMutex
	oracle     common.Address

	locker *locker
}

func NewService(
	repoManager ports.RepoManager, ledger ports.SettlementLedger,
	pubsubSvc *pubsub.Service, governance, oracle common.Address,
	seedLiquidity, pricePrecision uint64, clock Clock,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if ledger == nil {
		return nil, fmt.Errorf("missing settlement ledger")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if governance == (common.Address{}) {
		return nil, fmt.Errorf("missing governance address")
	}
	if oracle == (common.Address{}) {
		return nil, fmt.Errorf("missing oracle address")
	}
	if seedLiquidity == 0 {
		return nil, domain.ErrMarketInvalidSeedLiquidity
	}
	if clock == nil {
		clock = time.Now
	}

	return &Service{
		repoManager:   repoManager,
		ledger:        ledger,
		pubsub:        pubsubSvc,
		formula:       marketmaking.NewConstantProductFormula(pricePrecision),
		clock:         clock,
		seedLiquidity: seedLiquidity,
		governance:    governance,
		oracle:        oracle,
		locker:        newLocker(),
	}, nil
}

func (s *Service) Governance() common.Address {
	return s.governance
}

func (s *Service) Oracle() common.Address {
	s.oracleLock.RLock()
	defer s.oracleLock.RUnlock()
	return s.oracle
}

// UpdateOracle replaces the authority allowed to resolve markets. Only the
// governance authority can call it.
func (s *Service) UpdateOracle(
	_ context.Context, caller, newOracle common.Address,
) error {
	if caller != s.governance {
		return domain.ErrUnauthorized
	}
	if newOracle == (common.Address{}) {
		return domain.ErrInvalidOracle
	}

	s.oracleLock.Lock()
	oldOracle := s.oracle
	s.oracle = newOracle
	s.oracleLock.Unlock()

	log.Infof("oracle updated from %s to %s", oldOracle.Hex(), newOracle.Hex())
	s.publish(func() error {
		return s.pubsub.PublishOracleUpdatedEvent(oldOracle, newOracle)
	})
	return nil
}

// CreateMarket opens a new market for the given proposal. The governance
// authority funds both sides with the seed liquidity.
func (s *Service) CreateMarket(
	ctx context.Context, caller common.Address,
	proposalId common.Hash, tradingPeriod time.Duration,
) (*domain.Market, error) {
	if caller != s.governance {
		return nil, domain.ErrUnauthorized
	}

	seedTotal := 2 * s.seedLiquidity
	if seedTotal < s.seedLiquidity {
		return nil, domain.ErrMarketInvalidSeedLiquidity
	}

	unlock := s.locker.acquire(proposalId)
	market, err := domain.NewMarket(
		proposalId, s.clock(), tradingPeriod, s.seedLiquidity,
	)
	if err != nil {
		unlock()
		return nil, err
	}

	_, err = s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) (interface{}, error) {
			if err := s.repoManager.MarketRepository().AddMarket(
				ctx, market,
			); err != nil {
				return nil, err
			}
			return nil, s.debit(ctx, caller, seedTotal)
		},
	)
	unlock()
	if err != nil {
		return nil, err
	}

	log.Infof("created market %s", proposalId.Hex())
	s.publish(func() error {
		return s.pubsub.PublishMarketCreatedEvent(
			*market, caller, s.seedLiquidity,
		)
	})
	return market, nil
}

// ListMarkets returns all markets sorted by creation time.
func (s *Service) ListMarkets(ctx context.Context) ([]MarketInfo, error) {
	markets, err := s.repoManager.MarketRepository().GetAllMarkets(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]MarketInfo, 0, len(markets))
	for _, m := range markets {
		info, err := s.marketInfo(m)
		if err != nil {
			return nil, err
		}
		list = append(list, info)
	}
	return list, nil
}

// GetMarketInfo returns the state of the given market along with its
// spot prices.
func (s *Service) GetMarketInfo(
	ctx context.Context, proposalId common.Hash,
) (*MarketInfo, error) {
	market, err := s.repoManager.MarketRepository().GetMarket(ctx, proposalId)
	if err != nil {
		return nil, err
	}
	info, err := s.marketInfo(*market)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// GetPosition returns the shares owned by trader on the given market. A
// trader that never traded gets an empty position.
func (s *Service) GetPosition(
	ctx context.Context, proposalId common.Hash, trader common.Address,
) (*domain.Position, error) {
	if _, err := s.repoManager.MarketRepository().GetMarket(
		ctx, proposalId,
	); err != nil {
		return nil, err
	}

	position, err := s.repoManager.PositionRepository().GetPosition(
		ctx, proposalId, trader,
	)
	if err != nil {
		if errors.Is(err, domain.ErrPositionNotFound) {
			return domain.NewPosition(proposalId, trader), nil
		}
		return nil, err
	}
	return position, nil
}

// ListPositions returns every position ever opened on the given market,
// including the ones zeroed by sells and claims.
func (s *Service) ListPositions(
	ctx context.Context, proposalId common.Hash,
) ([]domain.Position, error) {
	if _, err := s.repoManager.MarketRepository().GetMarket(
		ctx, proposalId,
	); err != nil {
		return nil, err
	}
	return s.repoManager.PositionRepository().GetPositionsForMarket(
		ctx, proposalId,
	)
}

func (s *Service) marketInfo(market domain.Market) (MarketInfo, error) {
	yesPrice, err := market.SpotPrice(domain.SideYes, s.formula)
	if err != nil {
		return MarketInfo{}, err
	}
	noPrice, err := market.SpotPrice(domain.SideNo, s.formula)
	if err != nil {
		return MarketInfo{}, err
	}
	return MarketInfo{
		Market:    market,
		YesPrice:  yesPrice,
		NoPrice:   noPrice,
		Precision: s.formula.Precision(),
	}, nil
}

func (s *Service) debit(
	ctx context.Context, from common.Address, amount uint64,
) error {
	if err := s.ledger.Debit(ctx, from, amount); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransferFailed, err)
	}
	return nil
}

func (s *Service) credit(
	ctx context.Context, to common.Address, amount uint64,
) error {
	if err := s.ledger.Credit(ctx, to, amount); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransferFailed, err)
	}
	return nil
}

// publish logs instead of failing: the operation is already committed when
// notifications go out.
func (s *Service) publish(fn func() error) {
	if err := fn(); err != nil {
		log.WithError(err).Warn("failed to publish event")
	}
}
