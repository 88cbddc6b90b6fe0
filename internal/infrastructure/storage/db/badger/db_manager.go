package dbbadger

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

const txKey = "tx"

type repoManager struct {
	store *badgerhold.Store

	marketRepository   domain.MarketRepository
	positionRepository domain.PositionRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// It expects a base data dir and an optional logger. An empty data dir opens
// an in-memory badger instance.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, "markets")
	}
	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening markets db: %w", err)
	}

	return &repoManager{
		store:              store,
		marketRepository:   NewMarketRepositoryImpl(store),
		positionRepository: NewPositionRepositoryImpl(store),
	}, nil
}

func (r *repoManager) MarketRepository() domain.MarketRepository {
	return r.marketRepository
}

func (r *repoManager) PositionRepository() domain.PositionRepository {
	return r.positionRepository
}

// RunTransaction opens a badger transaction and makes it available to the
// repositories through the context given to handler. The transaction is
// committed only if handler succeeds.
func (r *repoManager) RunTransaction(
	ctx context.Context,
	readOnly bool,
	handler func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	tx := r.store.Badger().NewTransaction(!readOnly)
	defer tx.Discard()

	res, err := handler(context.WithValue(ctx, txKey, tx))
	if err != nil {
		return nil, err
	}

	if !readOnly {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r *repoManager) Close() {
	r.store.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger
	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}

func txFromContext(ctx context.Context) *badger.Txn {
	if tx, ok := ctx.Value(txKey).(*badger.Txn); ok {
		return tx
	}
	return nil
}
