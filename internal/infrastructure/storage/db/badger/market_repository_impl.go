package dbbadger

import (
	"context"
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type marketRepositoryImpl struct {
	store *badgerhold.Store
}

// NewMarketRepositoryImpl initialize a badger implementation of the
// domain.MarketRepository.
func NewMarketRepositoryImpl(store *badgerhold.Store) domain.MarketRepository {
	return marketRepositoryImpl{store}
}

func (r marketRepositoryImpl) AddMarket(
	ctx context.Context, market *domain.Market,
) error {
	var err error
	key := market.ProposalId.Hex()
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxInsert(tx, key, *market)
	} else {
		err = r.store.Insert(key, *market)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return domain.ErrMarketAlreadyExists
		}
		return err
	}
	return nil
}

func (r marketRepositoryImpl) GetMarket(
	ctx context.Context, proposalId common.Hash,
) (*domain.Market, error) {
	var (
		market domain.Market
		err    error
	)
	key := proposalId.Hex()
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, key, &market)
	} else {
		err = r.store.Get(key, &market)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrMarketNotFound
		}
		return nil, err
	}
	return &market, nil
}

func (r marketRepositoryImpl) GetAllMarkets(
	ctx context.Context,
) ([]domain.Market, error) {
	var (
		markets []domain.Market
		err     error
	)
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &markets, nil)
	} else {
		err = r.store.Find(&markets, nil)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(markets, func(i, j int) bool {
		if markets[i].CreationTime.Equal(markets[j].CreationTime) {
			return markets[i].ProposalId.Hex() < markets[j].ProposalId.Hex()
		}
		return markets[i].CreationTime.Before(markets[j].CreationTime)
	})
	return markets, nil
}

func (r marketRepositoryImpl) UpdateMarket(
	ctx context.Context, proposalId common.Hash,
	updateFn func(m *domain.Market) (*domain.Market, error),
) error {
	market, err := r.GetMarket(ctx, proposalId)
	if err != nil {
		return err
	}

	updatedMarket, err := updateFn(market)
	if err != nil {
		return err
	}

	key := proposalId.Hex()
	if tx := txFromContext(ctx); tx != nil {
		return r.store.TxUpdate(tx, key, *updatedMarket)
	}
	return r.store.Update(key, *updatedMarket)
}
