package marketmaking

import "github.com/tdex-network/futarchy-daemon/pkg/marketmaking/formula"

// MakingFormula defines the interface for implementing the formula used to
// price the shares of one side of a binary market against its reserve.
type MakingFormula interface {
	// QuoteBuy returns the shares minted for amountIn settlement asset.
	QuoteBuy(inputReserve, outputShares, amountIn uint64) (sharesOut uint64, err error)
	// QuoteSell returns the settlement asset released for sharesIn shares.
	QuoteSell(inputShares, outputReserve, sharesIn uint64) (tokensOut uint64, err error)
	// SpotPrice returns the reserve/shares ratio scaled by Precision().
	SpotPrice(inputReserve, outputShares uint64) (price uint64, err error)
	// Precision returns the fixed-point scale of SpotPrice.
	Precision() uint64
}

// NewConstantProductFormula returns the fee-less constant product formula
// with the given spot price precision (ie. 1e6). A zero precision falls back
// to formula.DefaultPrecision.
func NewConstantProductFormula(precision uint64) MakingFormula {
	if precision == 0 {
		precision = formula.DefaultPrecision
	}
	return formula.ConstantProduct{PricePrecision: precision}
}
