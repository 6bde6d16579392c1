package domain

import "time"

// ExitTrade is a position reduction produced by the simulation engine.
// A round trip closed in two steps yields two exit trades sharing the same EntryTime.
type ExitTrade struct {
	ID         int
	Symbol     string
	Direction  TradeDirection
	Size       float64 // Units closed, always positive
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64 // Average entry price of the position
	ExitPrice  float64
	Fees       float64
	PNL        float64
	Return     float64 // PNL / (Size × EntryPrice)
}

// Duration is the time the closed units were held.
func (t ExitTrade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// IsWin reports a strictly positive pnl.
func (t ExitTrade) IsWin() bool { return t.PNL > 0 }

// IsLoss reports a strictly negative pnl.
func (t ExitTrade) IsLoss() bool { return t.PNL < 0 }

// ValuePoint is one sample of the portfolio value history.
type ValuePoint struct {
	Time     time.Time
	Close    float64 // Mark price used for the sample
	Cash     float64 // Free cash
	Position float64 // Signed units held after processing the timestamp
	Value    float64
}
