package inmemory_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/tdex-network/futarchy-daemon/internal/infrastructure/ledger/inmemory"
	"github.com/tdex-network/futarchy-daemon/pkg/mathutil"
)

var (
	ctx   = context.Background()
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

func TestLedger(t *testing.T) {
	t.Parallel()

	ledger := inmemory.NewLedger(map[common.Address]uint64{alice: 100})

	require.NoError(t, ledger.Debit(ctx, alice, 60))
	requireBalance(t, ledger, alice, 40)
	requireBalance(t, ledger, inmemory.CustodyAccount, 60)

	err := ledger.Debit(ctx, alice, 41)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	requireBalance(t, ledger, alice, 40)

	require.NoError(t, ledger.Credit(ctx, bob, 50))
	requireBalance(t, ledger, bob, 50)
	requireBalance(t, ledger, inmemory.CustodyAccount, 10)

	err = ledger.Credit(ctx, bob, 11)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	require.NoError(t, ledger.Debit(ctx, bob, 0))

	rich := inmemory.NewLedger(map[common.Address]uint64{
		alice: 10, bob: ^uint64(0),
	})
	require.NoError(t, rich.Debit(ctx, alice, 10))
	err = rich.Credit(ctx, bob, 10)
	require.ErrorIs(t, err, mathutil.ErrOverflow)
	requireBalance(t, rich, inmemory.CustodyAccount, 10)
}

func TestParseGenesis(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		genesis, err := inmemory.ParseGenesis([]string{
			alice.Hex() + ":100",
			" " + bob.Hex() + ":5 ",
			alice.Hex() + ":1",
			"",
		})
		require.NoError(t, err)
		require.Equal(t, map[common.Address]uint64{alice: 101, bob: 5}, genesis)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			entry string
		}{
			{"missing_amount", alice.Hex()},
			{"bad_address", "0xnotanaddress:10"},
			{"bad_amount", alice.Hex() + ":ten"},
			{"negative_amount", alice.Hex() + ":-1"},
			{"overflow", alice.Hex() + ":18446744073709551616"},
		}
		for i := range tests {
			tt := tests[i]
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				_, err := inmemory.ParseGenesis([]string{tt.entry})
				require.Error(t, err)
			})
		}
	})
}

func requireBalance(
	t *testing.T, ledger inmemory.Ledger, account common.Address, expected uint64,
) {
	balance, err := ledger.BalanceOf(ctx, account)
	require.NoError(t, err)
	require.Equal(t, expected, balance)
}
