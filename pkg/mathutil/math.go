// Package mathutil provides checked integer arithmetic for settlement-asset
// and share amounts. Every operation either returns the exact floored result
// or an error; nothing ever wraps.
package mathutil

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

var (
	// ErrOverflow is returned when a result does not fit in 64 bits.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrUnderflow is returned when a subtraction would go below zero.
	ErrUnderflow = errors.New("arithmetic underflow")
	// ErrDivisionByZero is returned when a denominator is zero.
	ErrDivisionByZero = errors.New("division by zero")
)

func init() {
	decimal.DivisionPrecision = 8
}

// Add returns x + y.
func Add(x, y uint64) (uint64, error) {
	z, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(x), uint256.NewInt(y))
	if overflow || !z.IsUint64() {
		return 0, ErrOverflow
	}
	return z.Uint64(), nil
}

// Sub returns x - y.
func Sub(x, y uint64) (uint64, error) {
	if y > x {
		return 0, ErrUnderflow
	}
	return x - y, nil
}

// MulDiv returns floor(x * y / d). The product is computed on 256 bits so
// only the final quotient has to fit in 64 bits.
func MulDiv(x, y, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(
		uint256.NewInt(x), uint256.NewInt(y), uint256.NewInt(d),
	)
	if overflow || !z.IsUint64() {
		return 0, ErrOverflow
	}
	return z.Uint64(), nil
}

// Div takes two uint64 numbers and divides them x / y and returns the result
// as decimal.Decimal. It's meant for presentation only, never for amounts
// that are committed to a market.
func Div(x, y uint64) decimal.Decimal {
	if y == 0 {
		return decimal.Zero
	}
	X := decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0)
	Y := decimal.NewFromBigInt(new(big.Int).SetUint64(y), 0)
	return X.Div(Y)
}
