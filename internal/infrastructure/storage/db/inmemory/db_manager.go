package inmemory

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
)

type positionKey struct {
	proposalId common.Hash
	trader     common.Address
}

// store is the state shared by the in-memory repositories.
type store struct {
	lock      *sync.RWMutex
	markets   map[common.Hash]domain.Market
	positions map[positionKey]domain.Position
}

func newStore() *store {
	return &store{
		lock:      &sync.RWMutex{},
		markets:   make(map[common.Hash]domain.Market),
		positions: make(map[positionKey]domain.Position),
	}
}

func (s *store) snapshot() *store {
	s.lock.RLock()
	defer s.lock.RUnlock()

	markets := make(map[common.Hash]domain.Market, len(s.markets))
	for k, v := range s.markets {
		markets[k] = v
	}
	positions := make(map[positionKey]domain.Position, len(s.positions))
	for k, v := range s.positions {
		positions[k] = v
	}
	return &store{markets: markets, positions: positions}
}

func (s *store) restore(snapshot *store) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.markets = snapshot.markets
	s.positions = snapshot.positions
}

type repoManager struct {
	store  *store
	txLock *sync.RWMutex

	marketRepository   domain.MarketRepository
	positionRepository domain.PositionRepository
}

// NewRepoManager returns a RepoManager keeping all data in memory.
func NewRepoManager() ports.RepoManager {
	s := newStore()
	return &repoManager{
		store:              s,
		txLock:             &sync.RWMutex{},
		marketRepository:   newMarketRepositoryImpl(s),
		positionRepository: newPositionRepositoryImpl(s),
	}
}

func (r *repoManager) MarketRepository() domain.MarketRepository {
	return r.marketRepository
}

func (r *repoManager) PositionRepository() domain.PositionRepository {
	return r.positionRepository
}

// RunTransaction serializes writing transactions. The state is snapshotted
// before running handler and restored if handler fails.
func (r *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if readOnly {
		r.txLock.RLock()
		defer r.txLock.RUnlock()
		return handler(ctx)
	}

	r.txLock.Lock()
	defer r.txLock.Unlock()

	snapshot := r.store.snapshot()
	res, err := handler(ctx)
	if err != nil {
		r.store.restore(snapshot)
		return nil, err
	}
	return res, nil
}

func (r *repoManager) Close() {}
