package ports

import "errors"

// Standard application-level errors.
// Adapters and pipeline stages wrap underlying errors with these.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Ingestion Errors
	ErrEmptyTradeFile    = errors.New("trade file has no closed trades")
	ErrMissingColumn     = errors.New("trade file is missing a required column")
	ErrMalformedRow      = errors.New("trade row could not be parsed")
	ErrSymbolNotInFile   = errors.New("tracked symbol has no trades in file")
	ErrUnknownMultiplier = errors.New("no contract multiplier for symbol")

	// Simulation Errors
	ErrDuplicateTimestamp = errors.New("duplicate timestamps found in the order stream")
	ErrEmptyPriceWindow   = errors.New("price data does not cover the order window")
	ErrNoOrders           = errors.New("no simulatable orders")
	ErrUnknownMetric      = errors.New("metric not found")

	// Exchange Specific Errors
	ErrExchangeUnavailable  = errors.New("exchange API is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)
