package application

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/futarchy-daemon/internal/core/application/market"
	"github.com/tdex-network/futarchy-daemon/internal/core/application/pubsub"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
)

type MarketInfo = market.MarketInfo
type Quote = market.Quote

type MarketService interface {
	// Authorities
	Governance() common.Address
	Oracle() common.Address
	UpdateOracle(ctx context.Context, caller, newOracle common.Address) error

	// Lifecycle
	CreateMarket(
		ctx context.Context, caller common.Address,
		proposalId common.Hash, tradingPeriod time.Duration,
	) (*domain.Market, error)
	BuyShares(
		ctx context.Context, caller common.Address,
		proposalId common.Hash, side domain.Side, amount uint64,
	) (uint64, error)
	SellShares(
		ctx context.Context, caller common.Address,
		proposalId common.Hash, side domain.Side, shareAmount uint64,
	) (uint64, error)
	ResolveMarket(
		ctx context.Context, caller common.Address,
		proposalId common.Hash, outcome domain.Outcome,
	) (*domain.Market, error)
	ClaimWinnings(
		ctx context.Context, caller common.Address, proposalId common.Hash,
	) (uint64, error)

	// Read-only
	ListMarkets(ctx context.Context) ([]MarketInfo, error)
	GetMarketInfo(ctx context.Context, proposalId common.Hash) (*MarketInfo, error)
	GetPosition(
		ctx context.Context, proposalId common.Hash, trader common.Address,
	) (*domain.Position, error)
	ListPositions(
		ctx context.Context, proposalId common.Hash,
	) ([]domain.Position, error)
	CalculateWinnings(
		ctx context.Context, proposalId common.Hash, trader common.Address,
	) (uint64, error)
	QuoteBuy(
		ctx context.Context, proposalId common.Hash, side domain.Side, amount uint64,
	) (*Quote, error)
	QuoteSell(
		ctx context.Context, proposalId common.Hash,
		side domain.Side, shareAmount uint64,
	) (*Quote, error)
}

func NewMarketService(
	repoManager ports.RepoManager, ledger ports.SettlementLedger,
	pubsubSvc PubSubService, governance, oracle common.Address,
	seedLiquidity, pricePrecision uint64,
) (MarketService, error) {
	p, _ := pubsubSvc.(*pubsub.Service)
	svc, err := market.NewService(
		repoManager, ledger, p, governance, oracle,
		seedLiquidity, pricePrecision, nil,
	)
	if err != nil {
		return nil, err
	}
	return svc, nil
}
