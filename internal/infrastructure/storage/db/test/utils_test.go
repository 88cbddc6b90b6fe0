package db_test

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
	dbbadger "github.com/tdex-network/futarchy-daemon/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/futarchy-daemon/internal/infrastructure/storage/db/inmemory"
)

var (
	readOnly = true
	ctx      = context.Background()
)

type repoManager struct {
	Name    string
	Manager ports.RepoManager
}

func (r repoManager) read(
	query func(context.Context) (interface{}, error),
) (interface{}, error) {
	return r.Manager.RunTransaction(ctx, readOnly, query)
}

func (r repoManager) write(
	query func(context.Context) (interface{}, error),
) (interface{}, error) {
	return r.Manager.RunTransaction(ctx, !readOnly, query)
}

func createRepoManagers(t *testing.T) []repoManager {
	badgerRepoManager, err := dbbadger.NewRepoManager(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(badgerRepoManager.Close)

	badgerInMemoryRepoManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)
	t.Cleanup(badgerInMemoryRepoManager.Close)

	return []repoManager{
		{
			Name:    "badger",
			Manager: badgerRepoManager,
		},
		{
			Name:    "badger_inmemory",
			Manager: badgerInMemoryRepoManager,
		},
		{
			Name:    "inmemory",
			Manager: inmemory.NewRepoManager(),
		},
	}
}

func randomHash() common.Hash {
	var h common.Hash
	rand.Read(h[:])
	return h
}

func randomAddress() common.Address {
	var a common.Address
	rand.Read(a[:])
	return a
}

func newTestMarket(t *testing.T, creationTime time.Time) *domain.Market {
	market, err := domain.NewMarket(randomHash(), creationTime, time.Hour, 1000)
	require.NoError(t, err)
	return market
}
