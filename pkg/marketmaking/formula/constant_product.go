// Package formula defines the formulas that implement the MakingFormula
// interface.
package formula

import (
	"errors"

	"github.com/tdex-network/futarchy-daemon/pkg/mathutil"
)

// DefaultPrecision is the fixed-point scale used for spot prices when none
// is configured.
const DefaultPrecision = uint64(1000000)

var (
	// ErrZeroOutput is returned when a buy would mint zero shares.
	ErrZeroOutput = errors.New("trade output amount is zero")
	// ErrBalanceTooLow is returned when a reserve or share supply used as
	// denominator is zero.
	ErrBalanceTooLow = errors.New("reserve balance amount is too low")
)

// ConstantProduct prices one side of a binary market as a fee-less constant
// product pool between the side's settlement-asset reserve and its share
// supply. All divisions are floored, so rounding always favors the pool.
type ConstantProduct struct {
	PricePrecision uint64
}

// QuoteBuy returns floor(amountIn * outputShares / (inputReserve + amountIn)).
func (ConstantProduct) QuoteBuy(
	inputReserve, outputShares, amountIn uint64,
) (uint64, error) {
	if inputReserve == 0 || outputShares == 0 {
		return 0, ErrBalanceTooLow
	}

	denominator, err := mathutil.Add(inputReserve, amountIn)
	if err != nil {
		return 0, err
	}
	sharesOut, err := mathutil.MulDiv(amountIn, outputShares, denominator)
	if err != nil {
		return 0, err
	}
	if sharesOut == 0 {
		return 0, ErrZeroOutput
	}
	return sharesOut, nil
}

// QuoteSell returns floor(sharesIn * outputReserve / inputShares).
//
// Selling the whole share supply is not special-cased: it releases the
// whole reserve. Callers must make sure that can't happen on a live side.
func (ConstantProduct) QuoteSell(
	inputShares, outputReserve, sharesIn uint64,
) (uint64, error) {
	if inputShares == 0 {
		return 0, ErrBalanceTooLow
	}
	return mathutil.MulDiv(sharesIn, outputReserve, inputShares)
}

// SpotPrice returns floor(inputReserve * precision / outputShares), that is
// the reserve/shares ratio of a side. A freshly seeded side is priced
// exactly one unit of precision.
func (c ConstantProduct) SpotPrice(
	inputReserve, outputShares uint64,
) (uint64, error) {
	if outputShares == 0 {
		return 0, ErrBalanceTooLow
	}
	return mathutil.MulDiv(inputReserve, c.Precision(), outputShares)
}

func (c ConstantProduct) Precision() uint64 {
	if c.PricePrecision == 0 {
		return DefaultPrecision
	}
	return c.PricePrecision
}
