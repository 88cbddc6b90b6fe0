package inmemory

import (
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
)

// marketRepositoryImpl is the in-memory domain.MarketRepository.
type marketRepositoryImpl struct {
	store *store
}

// newMarketRepositoryImpl returns a market repository backed by the
// given store.
func newMarketRepositoryImpl(s *store) *marketRepositoryImpl {
	return &marketRepositoryImpl{s}
}

func (r *marketRepositoryImpl) AddMarket(
	_ context.Context, market *domain.Market,
) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	if _, ok := r.store.markets[market.ProposalId]; ok {
		return domain.ErrMarketAlreadyExists
	}
	r.store.markets[market.ProposalId] = *market
	return nil
}

func (r *marketRepositoryImpl) GetMarket(
	_ context.Context, proposalId common.Hash,
) (*domain.Market, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	return r.getMarket(proposalId)
}

func (r *marketRepositoryImpl) GetAllMarkets(
	_ context.Context,
) ([]domain.Market, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	markets := make([]domain.Market, 0, len(r.store.markets))
	for _, m := range r.store.markets {
		markets = append(markets, m)
	}
	sort.SliceStable(markets, func(i, j int) bool {
		if markets[i].CreationTime.Equal(markets[j].CreationTime) {
			return markets[i].ProposalId.Hex() < markets[j].ProposalId.Hex()
		}
		return markets[i].CreationTime.Before(markets[j].CreationTime)
	})
	return markets, nil
}

func (r *marketRepositoryImpl) UpdateMarket(
	_ context.Context, proposalId common.Hash,
	updateFn func(m *domain.Market) (*domain.Market, error),
) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	market, err := r.getMarket(proposalId)
	if err != nil {
		return err
	}

	updatedMarket, err := updateFn(market)
	if err != nil {
		return err
	}

	r.store.markets[proposalId] = *updatedMarket
	return nil
}

func (r *marketRepositoryImpl) getMarket(
	proposalId common.Hash,
) (*domain.Market, error) {
	market, ok := r.store.markets[proposalId]
	if !ok {
		return nil, domain.ErrMarketNotFound
	}
	return &market, nil
}
