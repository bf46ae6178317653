package engine

import "errors"

// Sentinel errors for the backtest core. Callers classify failures with
// errors.Is; the HTTP layer maps them onto status codes.
var (
	// ErrInvalidConfig marks a malformed or contradictory strategy
	// configuration, rejected before any simulation starts
	ErrInvalidConfig = errors.New("invalid strategy config")

	// ErrInsufficientData marks a price series too short to compute the
	// first signal for the requested MA window
	ErrInsufficientData = errors.New("insufficient price data")

	// ErrInsufficientRange marks an optimizer range that leaves no valid
	// candidate MA window given the series length
	ErrInsufficientRange = errors.New("insufficient optimizer range")

	// ErrDataUnavailable marks an upstream price source failure
	ErrDataUnavailable = errors.New("price data unavailable")
)
