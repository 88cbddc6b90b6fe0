package domain

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tdex-network/futarchy-daemon/pkg/marketmaking"
	"github.com/tdex-network/futarchy-daemon/pkg/marketmaking/formula"
	"github.com/tdex-network/futarchy-daemon/pkg/mathutil"
)

// Market defines the state of the binary market opened for a governance
// proposal. Each side is a constant product pool between its reserve of
// settlement asset and its outstanding shares.
type Market struct {
	// Opaque 256-bit identifier of the proposal, immutable.
	ProposalId common.Hash
	// Time the market was created at, set once.
	CreationTime time.Time
	// Trading is allowed while now < CreationTime + TradingPeriod.
	TradingPeriod time.Duration
	// Time the market was resolved at, zero until resolution.
	ResolutionTime time.Time
	Resolved       bool
	Outcome        Outcome

	// Settlement asset backing each side.
	YesReserve uint64
	NoReserve  uint64
	// Outstanding shares of each side, seed supply included.
	YesShares uint64
	NoShares  uint64
}

// NewMarket returns a new market for the given proposal, with both sides
// seeded with seedLiquidity reserve and seedLiquidity shares.
func NewMarket(
	proposalId common.Hash, creationTime time.Time,
	tradingPeriod time.Duration, seedLiquidity uint64,
) (*Market, error) {
	if tradingPeriod < 0 {
		return nil, ErrMarketInvalidTradingPeriod
	}
	if seedLiquidity == 0 {
		return nil, ErrMarketInvalidSeedLiquidity
	}

	return &Market{
		ProposalId:    proposalId,
		CreationTime:  creationTime,
		TradingPeriod: tradingPeriod,
		Outcome:       OutcomeUnresolved,
		YesReserve:    seedLiquidity,
		NoReserve:     seedLiquidity,
		YesShares:     seedLiquidity,
		NoShares:      seedLiquidity,
	}, nil
}

// TradingEnd returns the end of the trading window.
func (m *Market) TradingEnd() time.Time {
	return m.CreationTime.Add(m.TradingPeriod)
}

func (m *Market) IsResolved() bool {
	return m.Resolved
}

// IsTradableAt returns whether buys and sells are accepted at the given time.
func (m *Market) IsTradableAt(now time.Time) bool {
	return m.CheckTradable(now) == nil
}

// Balances returns the reserve and the share supply of the given side.
func (m *Market) Balances(side Side) (reserve, shares uint64, err error) {
	switch side {
	case SideYes:
		return m.YesReserve, m.YesShares, nil
	case SideNo:
		return m.NoReserve, m.NoShares, nil
	default:
		return 0, 0, ErrInvalidSide
	}
}

// TotalReserve returns the settlement asset backing both sides.
func (m *Market) TotalReserve() (uint64, error) {
	return mathutil.Add(m.YesReserve, m.NoReserve)
}

// SpotPrice returns the ratio between reserve and shares of the given side,
// scaled by the formula precision.
func (m *Market) SpotPrice(
	side Side, f marketmaking.MakingFormula,
) (uint64, error) {
	reserve, shares, err := m.Balances(side)
	if err != nil {
		return 0, err
	}
	return f.SpotPrice(reserve, shares)
}

// PreviewBuy returns the shares that buying with amount settlement asset
// would mint at the given time, without changing the market.
func (m *Market) PreviewBuy(
	side Side, amount uint64, f marketmaking.MakingFormula, now time.Time,
) (uint64, error) {
	if err := m.CheckTradable(now); err != nil {
		return 0, err
	}
	reserve, shares, err := m.Balances(side)
	if err != nil {
		return 0, err
	}

	sharesOut, err := f.QuoteBuy(reserve, shares, amount)
	if err != nil {
		if errors.Is(err, formula.ErrZeroOutput) {
			return 0, ErrZeroOutput
		}
		return 0, err
	}
	return sharesOut, nil
}

// Buy adds amount to the side's reserve and mints the quoted shares. The
// market is left untouched if any step fails.
func (m *Market) Buy(
	side Side, amount uint64, f marketmaking.MakingFormula, now time.Time,
) (uint64, error) {
	sharesOut, err := m.PreviewBuy(side, amount, f, now)
	if err != nil {
		return 0, err
	}

	reserve, shares, _ := m.Balances(side)
	newReserve, err := mathutil.Add(reserve, amount)
	if err != nil {
		return 0, err
	}
	newShares, err := mathutil.Add(shares, sharesOut)
	if err != nil {
		return 0, err
	}

	m.setBalances(side, newReserve, newShares)
	return sharesOut, nil
}

// PreviewSell returns the settlement asset that burning shareAmount shares
// would release at the given time, without changing the market.
func (m *Market) PreviewSell(
	side Side, shareAmount uint64, f marketmaking.MakingFormula, now time.Time,
) (uint64, error) {
	if err := m.CheckTradable(now); err != nil {
		return 0, err
	}
	reserve, shares, err := m.Balances(side)
	if err != nil {
		return 0, err
	}
	if shareAmount == 0 {
		return 0, ErrZeroOutput
	}
	return f.QuoteSell(shares, reserve, shareAmount)
}

// Sell burns shareAmount shares of the side and removes the quoted amount
// from its reserve. The market is left untouched if any step fails.
func (m *Market) Sell(
	side Side, shareAmount uint64, f marketmaking.MakingFormula, now time.Time,
) (uint64, error) {
	tokensOut, err := m.PreviewSell(side, shareAmount, f, now)
	if err != nil {
		return 0, err
	}

	reserve, shares, _ := m.Balances(side)
	newReserve, err := mathutil.Sub(reserve, tokensOut)
	if err != nil {
		return 0, err
	}
	newShares, err := mathutil.Sub(shares, shareAmount)
	if err != nil {
		return 0, err
	}

	m.setBalances(side, newReserve, newShares)
	return tokensOut, nil
}

// Resolve fixes the outcome of the market. It is accepted only once, at or
// after the end of the trading window.
//
// OutcomeUnresolved is accepted as a terminal value: such a market has no
// winning side and its pool can never be claimed.
func (m *Market) Resolve(outcome Outcome, now time.Time) error {
	if !outcome.IsValid() {
		return ErrInvalidOutcome
	}
	if m.Resolved {
		return ErrMarketAlreadyResolved
	}
	if now.Before(m.TradingEnd()) {
		return ErrMarketTradingOngoing
	}

	m.Resolved = true
	m.Outcome = outcome
	m.ResolutionTime = now
	return nil
}

// WinningShares returns the outstanding share supply of the winning side.
func (m *Market) WinningShares() (uint64, bool) {
	side, ok := m.Outcome.WinningSide()
	if !m.Resolved || !ok {
		return 0, false
	}
	_, shares, _ := m.Balances(side)
	return shares, true
}

// Payout returns the pro-rata share of the whole pool, losing side's
// reserve included, owed to winningShares winning shares:
// floor(winningShares * (yesReserve + noReserve) / totalWinningShares).
func (m *Market) Payout(winningShares uint64) (uint64, error) {
	totalWinningShares, ok := m.WinningShares()
	if !ok {
		return 0, ErrMarketNotResolved
	}
	totalReserve, err := m.TotalReserve()
	if err != nil {
		return 0, err
	}
	return mathutil.MulDiv(winningShares, totalReserve, totalWinningShares)
}

// CheckTradable returns the reason why buys and sells are refused at the
// given time, if any.
func (m *Market) CheckTradable(now time.Time) error {
	if m.Resolved {
		return ErrMarketAlreadyResolved
	}
	if !now.Before(m.TradingEnd()) {
		return ErrMarketTradingClosed
	}
	return nil
}

func (m *Market) setBalances(side Side, reserve, shares uint64) {
	if side == SideYes {
		m.YesReserve, m.YesShares = reserve, shares
		return
	}
	m.NoReserve, m.NoShares = reserve, shares
}
