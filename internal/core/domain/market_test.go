package domain_test

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
	"github.com/tdex-network/futarchy-daemon/pkg/marketmaking"
	"github.com/tdex-network/futarchy-daemon/pkg/mathutil"
)

const (
	seedLiquidity = uint64(1000)
	tradingPeriod = 24 * time.Hour
)

var (
	proposalId   = common.HexToHash("0x7a1d9c3f0b1e8d2c4a5b6f708192a3b4c5d6e7f8091a2b3c4d5e6f708192a3b4")
	creationTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	duringTrade  = creationTime.Add(time.Hour)
	tradingEnd   = creationTime.Add(tradingPeriod)
	mmFormula    = marketmaking.NewConstantProductFormula(1000000)
)

func TestNewMarket(t *testing.T) {
	t.Parallel()

	m, err := domain.NewMarket(proposalId, creationTime, tradingPeriod, seedLiquidity)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, proposalId, m.ProposalId)
	require.Equal(t, creationTime, m.CreationTime)
	require.Equal(t, tradingEnd, m.TradingEnd())
	require.Equal(t, seedLiquidity, m.YesReserve)
	require.Equal(t, seedLiquidity, m.NoReserve)
	require.Equal(t, seedLiquidity, m.YesShares)
	require.Equal(t, seedLiquidity, m.NoShares)
	require.False(t, m.IsResolved())
	require.Equal(t, domain.OutcomeUnresolved, m.Outcome)
	require.True(t, m.ResolutionTime.IsZero())

	for _, side := range []domain.Side{domain.SideYes, domain.SideNo} {
		price, err := m.SpotPrice(side, mmFormula)
		require.NoError(t, err)
		require.Equal(t, mmFormula.Precision(), price)
	}
}

func TestFailingNewMarket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		tradingPeriod time.Duration
		seedLiquidity uint64
		expectedError error
	}{
		{
			name:          "negative_trading_period",
			tradingPeriod: -time.Second,
			seedLiquidity: seedLiquidity,
			expectedError: domain.ErrMarketInvalidTradingPeriod,
		},
		{
			name:          "zero_seed_liquidity",
			tradingPeriod: tradingPeriod,
			seedLiquidity: 0,
			expectedError: domain.ErrMarketInvalidSeedLiquidity,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := domain.NewMarket(
				proposalId, creationTime, tt.tradingPeriod, tt.seedLiquidity,
			)
			require.EqualError(t, err, tt.expectedError.Error())
		})
	}
}

func TestMarketBuy(t *testing.T) {
	t.Parallel()

	m := newTestMarket(t)

	sharesOut, err := m.Buy(domain.SideYes, 10, mmFormula, duringTrade)
	require.NoError(t, err)
	require.Equal(t, uint64(9), sharesOut)
	require.Equal(t, uint64(1010), m.YesReserve)
	require.Equal(t, uint64(1009), m.YesShares)
	require.Equal(t, seedLiquidity, m.NoReserve)
	require.Equal(t, seedLiquidity, m.NoShares)

	sharesOut, err = m.Buy(domain.SideNo, 100, mmFormula, duringTrade)
	require.NoError(t, err)
	require.Equal(t, uint64(90), sharesOut)
	require.Equal(t, uint64(1100), m.NoReserve)
	require.Equal(t, uint64(1090), m.NoShares)
}

func TestFailingMarketBuy(t *testing.T) {
	t.Parallel()

	resolved := newTestMarket(t)
	require.NoError(t, resolved.Resolve(domain.OutcomeYes, tradingEnd))

	tests := []struct {
		name          string
		market        *domain.Market
		side          domain.Side
		amount        uint64
		now           time.Time
		expectedError error
	}{
		{"already_resolved", resolved, domain.SideYes, 10, tradingEnd, domain.ErrMarketAlreadyResolved},
		{"trading_closed", newTestMarket(t), domain.SideYes, 10, tradingEnd, domain.ErrMarketTradingClosed},
		{"zero_output", newTestMarket(t), domain.SideYes, 1, duringTrade, domain.ErrZeroOutput},
		{"invalid_side", newTestMarket(t), domain.Side(7), 10, duringTrade, domain.ErrInvalidSide},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			before := *tt.market
			_, err := tt.market.Buy(tt.side, tt.amount, mmFormula, tt.now)
			require.ErrorIs(t, err, tt.expectedError)
			require.Equal(t, before, *tt.market)
		})
	}
}

func TestMarketSell(t *testing.T) {
	t.Parallel()

	m := newTestMarket(t)

	_, err := m.Buy(domain.SideYes, 10, mmFormula, duringTrade)
	require.NoError(t, err)

	tokensOut, err := m.Sell(domain.SideYes, 9, mmFormula, duringTrade)
	require.NoError(t, err)
	require.Equal(t, uint64(9), tokensOut)
	require.Equal(t, uint64(1001), m.YesReserve)
	require.Equal(t, uint64(1000), m.YesShares)
}

func TestFailingMarketSell(t *testing.T) {
	t.Parallel()

	m := newTestMarket(t)
	before := *m

	_, err := m.Sell(domain.SideYes, seedLiquidity+1, mmFormula, duringTrade)
	require.ErrorIs(t, err, mathutil.ErrUnderflow)
	require.Equal(t, before, *m)

	_, err = m.Sell(domain.SideNo, 1, mmFormula, tradingEnd)
	require.ErrorIs(t, err, domain.ErrMarketTradingClosed)
	require.Equal(t, before, *m)

	_, err = m.Sell(domain.SideYes, 0, mmFormula, duringTrade)
	require.ErrorIs(t, err, domain.ErrZeroOutput)
	require.Equal(t, before, *m)

	require.NoError(t, m.CheckTradable(duringTrade))
	require.ErrorIs(t, m.CheckTradable(tradingEnd), domain.ErrMarketTradingClosed)
}

func TestMarketResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome domain.Outcome
		now     time.Time
	}{
		{"yes_at_window_end", domain.OutcomeYes, tradingEnd},
		{"no_after_window_end", domain.OutcomeNo, tradingEnd.Add(time.Hour)},
		{"unresolved_literal", domain.OutcomeUnresolved, tradingEnd},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newTestMarket(t)
			err := m.Resolve(tt.outcome, tt.now)
			require.NoError(t, err)
			require.True(t, m.IsResolved())
			require.Equal(t, tt.outcome, m.Outcome)
			require.Equal(t, tt.now, m.ResolutionTime)
		})
	}
}

func TestFailingMarketResolve(t *testing.T) {
	t.Parallel()

	resolved := newTestMarket(t)
	require.NoError(t, resolved.Resolve(domain.OutcomeNo, tradingEnd))

	tests := []struct {
		name          string
		market        *domain.Market
		outcome       domain.Outcome
		now           time.Time
		expectedError error
	}{
		{"trading_ongoing", newTestMarket(t), domain.OutcomeYes, tradingEnd.Add(-time.Nanosecond), domain.ErrMarketTradingOngoing},
		{"already_resolved", resolved, domain.OutcomeYes, tradingEnd, domain.ErrMarketAlreadyResolved},
		{"invalid_outcome", newTestMarket(t), domain.Outcome(3), tradingEnd, domain.ErrInvalidOutcome},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			before := *tt.market
			err := tt.market.Resolve(tt.outcome, tt.now)
			require.ErrorIs(t, err, tt.expectedError)
			require.Equal(t, before, *tt.market)
		})
	}
}

func TestMarketPayout(t *testing.T) {
	t.Parallel()

	m := newTestMarket(t)
	_, err := m.Buy(domain.SideYes, 10, mmFormula, duringTrade)
	require.NoError(t, err)
	_, err = m.Buy(domain.SideNo, 100, mmFormula, duringTrade)
	require.NoError(t, err)

	_, err = m.Payout(9)
	require.ErrorIs(t, err, domain.ErrMarketNotResolved)

	require.NoError(t, m.Resolve(domain.OutcomeYes, tradingEnd))

	payout, err := m.Payout(9)
	require.NoError(t, err)
	// floor(9 * (1010 + 1100) / 1009)
	require.Equal(t, uint64(18), payout)

	total, ok := m.WinningShares()
	require.True(t, ok)
	require.Equal(t, uint64(1009), total)
}

func TestUnresolvedOutcomeHasNoWinners(t *testing.T) {
	t.Parallel()

	m := newTestMarket(t)
	require.NoError(t, m.Resolve(domain.OutcomeUnresolved, tradingEnd))

	_, ok := m.WinningShares()
	require.False(t, ok)

	_, err := m.Payout(1)
	require.ErrorIs(t, err, domain.ErrMarketNotResolved)
}

func newTestMarket(t *testing.T) *domain.Market {
	m, err := domain.NewMarket(proposalId, creationTime, tradingPeriod, seedLiquidity)
	require.NoError(t, err)
	return m
}
