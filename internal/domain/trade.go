package domain

import "time"

// TradeRecord is one closed round-trip position read from a copy-trading export.
type TradeRecord struct {
	OpenTime  time.Time // UTC
	CloseTime time.Time // UTC

	Title          string // Free-text title, e.g. "BTCUSDT Perpetual"
	Symbol         string // Ticker extracted from the title, e.g. "BTCUSDT"
	ExchangeSymbol string // Exchange naming, e.g. "BTC-USDT"
	Leverage       string // Leverage/direction label, e.g. "Long 10x"
	Direction      string // Raw direction column, kept for reference

	EntryPrice float64
	FillPrice  float64 // Close price of the position
	PNL        float64
	PNLPercent float64

	Contracts     int64
	Multiplier    float64
	Quantity      float64 // Contracts × Multiplier
	QuantityKnown bool    // False when the symbol has no multiplier
}

// IsLong reports whether the record describes a long position.
func (t *TradeRecord) IsLong() bool {
	return IsLongLabel(t.Leverage)
}
