package domain

import "strings"

// TradeType tags one leg of a round-trip trade.
type TradeType string

const (
	OpenLong   TradeType = "open_long"
	CloseLong  TradeType = "close_long"
	OpenShort  TradeType = "open_short"
	CloseShort TradeType = "close_short"
)

// IsOpen reports whether the leg opens a position.
func (t TradeType) IsOpen() bool {
	return t == OpenLong || t == OpenShort
}

// Direction returns the position-delta sign of the leg.
// Opening a short or closing a long reduces the net position.
func (t TradeType) Direction() float64 {
	if t == OpenShort || t == CloseLong {
		return -1
	}
	return 1
}

// Variant identifies the capital structure a simulation was run under.
type Variant string

const (
	VariantLevered   Variant = "levered"
	VariantUnlevered Variant = "unlevered"
)

// LeverageMode mirrors the accounting policy used to apply leverage to sizing.
type LeverageMode string

const (
	LeverageModeLazy  LeverageMode = "lazy"
	LeverageModeEager LeverageMode = "eager"
)

// TradeDirection of a closed simulation trade.
type TradeDirection string

const (
	Long  TradeDirection = "Long"
	Short TradeDirection = "Short"
)

// IsLongLabel reports whether a platform leverage label ("Long 10x", "Short 5x") is long.
func IsLongLabel(label string) bool {
	return strings.Contains(label, "Long")
}
