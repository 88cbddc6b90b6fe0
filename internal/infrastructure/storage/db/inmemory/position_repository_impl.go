package inmemory

import (
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
)

// positionRepositoryImpl is the in-memory domain.PositionRepository.
type positionRepositoryImpl struct {
	store *store
}

// newPositionRepositoryImpl returns a position repository backed by
// the given store.
func newPositionRepositoryImpl(s *store) *positionRepositoryImpl {
	return &positionRepositoryImpl{s}
}

func (r *positionRepositoryImpl) GetPosition(
	_ context.Context, proposalId common.Hash, trader common.Address,
) (*domain.Position, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	position, ok := r.store.positions[positionKey{proposalId, trader}]
	if !ok {
		return nil, domain.ErrPositionNotFound
	}
	return &position, nil
}

func (r *positionRepositoryImpl) GetPositionsForMarket(
	_ context.Context, proposalId common.Hash,
) ([]domain.Position, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	positions := make([]domain.Position, 0)
	for k, p := range r.store.positions {
		if k.proposalId == proposalId {
			positions = append(positions, p)
		}
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Trader.Hex() < positions[j].Trader.Hex()
	})
	return positions, nil
}

func (r *positionRepositoryImpl) UpdatePosition(
	_ context.Context, proposalId common.Hash, trader common.Address,
	updateFn func(p *domain.Position) (*domain.Position, error),
) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	key := positionKey{proposalId, trader}
	position, ok := r.store.positions[key]
	if !ok {
		position = *domain.NewPosition(proposalId, trader)
	}

	updatedPosition, err := updateFn(&position)
	if err != nil {
		return err
	}

	r.store.positions[key] = *updatedPosition
	return nil
}
