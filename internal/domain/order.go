package domain

import "time"

// Order is one directional leg (open or close) of a round-trip trade.
type Order struct {
	Time           time.Time
	Symbol         string
	ExchangeSymbol string
	Type           TradeType
	Quantity       float64 // Unsigned underlying quantity
	SignedQuantity float64 // Quantity × Type.Direction()
	Price          float64
	QuantityKnown  bool
	TradeIndex     int // Index of the originating TradeRecord within its file
}
