package domain

import "errors"

// Authorization errors
var (
	// ErrUnauthorized is returned when the caller is not the identity
	// configured for the operation.
	ErrUnauthorized = errors.New("caller is not authorized")
	// ErrInvalidOracle is returned when replacing the oracle with the zero
	// address.
	ErrInvalidOracle = errors.New("oracle address must not be zero")
)

// Market errors
var (
	// ErrMarketNotFound is returned when no market exists for a proposal id.
	ErrMarketNotFound = errors.New("market not found")
	// ErrMarketAlreadyExists is returned when creating a market for a
	// proposal id that already has one.
	ErrMarketAlreadyExists = errors.New("market already exists")
	// ErrMarketTradingClosed is returned when trading after the window end.
	ErrMarketTradingClosed = errors.New("market trading period has ended")
	// ErrMarketTradingOngoing is returned when resolving before the window end.
	ErrMarketTradingOngoing = errors.New("market trading period is still ongoing")
	// ErrMarketAlreadyResolved ...
	ErrMarketAlreadyResolved = errors.New("market is already resolved")
	// ErrMarketNotResolved ...
	ErrMarketNotResolved = errors.New("market is not resolved")
	// ErrMarketInvalidTradingPeriod ...
	ErrMarketInvalidTradingPeriod = errors.New("trading period is out of range")
	// ErrMarketInvalidSeedLiquidity ...
	ErrMarketInvalidSeedLiquidity = errors.New("seed liquidity must be greater than zero")
	// ErrInvalidSide ...
	ErrInvalidSide = errors.New("side must be either yes or no")
	// ErrInvalidOutcome ...
	ErrInvalidOutcome = errors.New("outcome must be one of unresolved, yes or no")
	// ErrZeroOutput is returned when a buy would mint zero shares.
	ErrZeroOutput = errors.New("trade output amount is zero")
)

// Position errors
var (
	// ErrPositionNotFound is returned by repositories for a (market, trader)
	// pair that never traded.
	ErrPositionNotFound = errors.New("position not found")
	// ErrInsufficientShares ...
	ErrInsufficientShares = errors.New("insufficient shares")
	// ErrNoWinnings is returned when claiming without winning shares.
	ErrNoWinnings = errors.New("no winnings to claim")
)

// Settlement errors
var (
	// ErrInsufficientFunds is returned by the settlement ledger when an
	// account can't cover a debit.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrTransferFailed is returned when the settlement ledger refuses a
	// debit or credit. It wraps the ledger's own error.
	ErrTransferFailed = errors.New("settlement transfer failed")
)
