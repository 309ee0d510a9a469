package repository

import "errors"

// Upstream market-data failure modes. All are "no signal this cycle"
// conditions for the engine, never fatal.
var (
	// ErrInsufficientData means fewer candles exist than the lookback
	// requires. Not retried by the engine; the caller may retry later with a
	// larger window.
	ErrInsufficientData = errors.New("insufficient candle data")

	// ErrExchangeUnavailable means the venue could not be reached.
	ErrExchangeUnavailable = errors.New("exchange unavailable")

	// ErrRateLimited means the venue rejected the request for pacing reasons.
	ErrRateLimited = errors.New("rate limited by exchange")
)
