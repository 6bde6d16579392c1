package simulation

import (
	"math"
	"time"

	"copyTradeAnalyzer/internal/domain"
)

// account is a single-asset margin account. Opening locks notional/leverage of free cash,
// reducing releases the proportional margin together with the realized pnl.
type account struct {
	symbol   string
	leverage float64
	mode     domain.LeverageMode
	feeRate  float64

	cash      float64 // Free cash
	margin    float64 // Locked margin
	position  float64 // Signed units
	avgPrice  float64
	entryTime time.Time

	trades []domain.ExitTrade
}

func newAccount(symbol string, initCash, leverage float64, mode domain.LeverageMode, feeRate float64) *account {
	return &account{symbol: symbol, cash: initCash, leverage: leverage, mode: mode, feeRate: feeRate}
}

// value is free cash + locked margin + unrealized pnl at mark.
func (a *account) value(mark float64) float64 {
	v := a.cash + a.margin
	if a.position != 0 && !math.IsNaN(mark) {
		v += a.position * (mark - a.avgPrice)
	}
	return v
}

// fill executes a signed quantity at price. Orders are never rejected for lack of cash.
func (a *account) fill(at time.Time, qty, price float64) {
	if qty == 0 {
		return
	}
	fee := math.Abs(qty) * price * a.feeRate
	a.cash -= fee

	if a.position == 0 || sameSign(a.position, qty) {
		a.increase(at, qty, price)
		return
	}

	closing := math.Min(math.Abs(qty), math.Abs(a.position))
	a.reduce(at, closing, price, fee*closing/math.Abs(qty))

	if rest := math.Abs(qty) - closing; rest > epsilon {
		a.increase(at, math.Copysign(rest, qty), price)
	}
}

func (a *account) increase(at time.Time, qty, price float64) {
	if a.position == 0 {
		a.entryTime = at
		a.avgPrice = price
	} else {
		size := math.Abs(a.position)
		a.avgPrice = (size*a.avgPrice + math.Abs(qty)*price) / (size + math.Abs(qty))
	}
	a.lock(math.Abs(qty) * price)
	a.position += qty
}

// lock moves margin for notional out of free cash. Eager mode always borrows at full
// leverage, lazy mode only borrows what free cash cannot cover.
func (a *account) lock(notional float64) {
	lock := notional / a.leverage
	if a.mode == domain.LeverageModeLazy {
		own := math.Max(a.cash, 0)
		if own >= notional {
			lock = notional
		} else {
			lock = own + (notional-own)/a.leverage
		}
	}
	a.cash -= lock
	a.margin += lock
}

// reduce closes size units of the open position against the average entry price.
func (a *account) reduce(at time.Time, size, price, fee float64) {
	dir := domain.Long
	sign := 1.0
	if a.position < 0 {
		dir = domain.Short
		sign = -1
	}
	pnl := size * (price - a.avgPrice) * sign
	release := a.margin * size / math.Abs(a.position)
	a.margin -= release
	a.cash += release + pnl

	trade := domain.ExitTrade{
		ID:         len(a.trades),
		Symbol:     a.symbol,
		Direction:  dir,
		Size:       size,
		EntryTime:  a.entryTime,
		ExitTime:   at,
		EntryPrice: a.avgPrice,
		ExitPrice:  price,
		Fees:       fee,
		PNL:        pnl - fee,
	}
	if notional := size * a.avgPrice; notional != 0 {
		trade.Return = trade.PNL / notional
	}
	a.trades = append(a.trades, trade)

	a.position -= sign * size
	if math.Abs(a.position) <= epsilon {
		a.cash += a.margin
		a.margin = 0
		a.position = 0
		a.avgPrice = 0
		a.entryTime = time.Time{}
	}
}

func sameSign(a, b float64) bool {
	return (a > 0) == (b > 0)
}
