package market

import (
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/futarchy-daemon/internal/core/domain"
)

// MarketInfo is a market plus the prices derived from its pools.
type MarketInfo struct {
	domain.Market
	// Spot prices of each side, scaled by Precision.
	YesPrice  uint64
	NoPrice   uint64
	Precision uint64
}

// YesProbability frames the two spot prices as the implied probability of
// the proposal passing: yesPrice / (yesPrice + noPrice).
func (i MarketInfo) YesProbability() decimal.Decimal {
	yes := fromUint64(i.YesPrice)
	total := yes.Add(fromUint64(i.NoPrice))
	if total.IsZero() {
		return decimal.Zero
	}
	return yes.Div(total)
}

// Quote is the preview of a buy or a sell, computed against the current
// state of a market.
type Quote struct {
	Side     domain.Side
	AmountIn uint64
	// Shares minted for a buy, settlement asset released for a sell.
	AmountOut uint64
	// Settlement asset per share.
	EffectivePrice decimal.Decimal
}

func fromUint64(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
}
