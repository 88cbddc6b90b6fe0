package dbbadger

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

// position is the stored version of a domain.Position. The market id is kept
// as a hex string to make it queryable.
type position struct {
	ProposalId string `badgerhold:"index"`
	Trader     string
	YesShares  uint64
	NoShares   uint64
}

func newPosition(p domain.Position) position {
	return position{
		ProposalId: p.ProposalId.Hex(),
		Trader:     p.Trader.Hex(),
		YesShares:  p.YesShares,
		NoShares:   p.NoShares,
	}
}

func (p position) toDomain() domain.Position {
	return domain.Position{
		ProposalId: common.HexToHash(p.ProposalId),
		Trader:     common.HexToAddress(p.Trader),
		YesShares:  p.YesShares,
		NoShares:   p.NoShares,
	}
}

func positionKey(proposalId common.Hash, trader common.Address) string {
	return proposalId.Hex() + ":" + trader.Hex()
}

type positionRepositoryImpl struct {
	store *badgerhold.Store
}

// NewPositionRepositoryImpl initialize a badger implementation of the
// domain.PositionRepository.
func NewPositionRepositoryImpl(store *badgerhold.Store) domain.PositionRepository {
	return positionRepositoryImpl{store}
}

func (r positionRepositoryImpl) GetPosition(
	ctx context.Context, proposalId common.Hash, trader common.Address,
) (*domain.Position, error) {
	var (
		p   position
		err error
	)
	key := positionKey(proposalId, trader)
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxGet(tx, key, &p)
	} else {
		err = r.store.Get(key, &p)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrPositionNotFound
		}
		return nil, err
	}

	pos := p.toDomain()
	return &pos, nil
}

func (r positionRepositoryImpl) GetPositionsForMarket(
	ctx context.Context, proposalId common.Hash,
) ([]domain.Position, error) {
	var (
		list []position
		err  error
	)
	query := badgerhold.Where("ProposalId").Eq(proposalId.Hex()).
		Index("ProposalId").SortBy("Trader")
	if tx := txFromContext(ctx); tx != nil {
		err = r.store.TxFind(tx, &list, query)
	} else {
		err = r.store.Find(&list, query)
	}
	if err != nil {
		return nil, err
	}

	positions := make([]domain.Position, 0, len(list))
	for _, p := range list {
		positions = append(positions, p.toDomain())
	}
	return positions, nil
}

func (r positionRepositoryImpl) UpdatePosition(
	ctx context.Context, proposalId common.Hash, trader common.Address,
	updateFn func(p *domain.Position) (*domain.Position, error),
) error {
	current, err := r.GetPosition(ctx, proposalId, trader)
	if err != nil {
		if !errors.Is(err, domain.ErrPositionNotFound) {
			return err
		}
		current = domain.NewPosition(proposalId, trader)
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	key := positionKey(proposalId, trader)
	if tx := txFromContext(ctx); tx != nil {
		return r.store.TxUpsert(tx, key, newPosition(*updated))
	}
	return r.store.Upsert(key, newPosition(*updated))
}
