package orders

import (
	"time"

	"copyTradeAnalyzer/internal/domain"
)

// Reconstruct splits every trade into an open and a close leg, concatenates all opening legs
// followed by all closing legs, stable-sorts them by time and resolves timestamp collisions.
// The returned stream covers every symbol of the file.
func Reconstruct(trades []*domain.TradeRecord) []domain.Order {
	out := make([]domain.Order, 0, 2*len(trades))
	for i, t := range trades {
		out = append(out, newLeg(t, i, t.OpenTime, t.EntryPrice, OpenType(t.Leverage)))
	}
	for i, t := range trades {
		out = append(out, newLeg(t, i, t.CloseTime, t.FillPrice, CloseType(t.Leverage)))
	}
	SortByTime(out)
	Disambiguate(out)
	return out
}

// ForSymbol returns the orders of one symbol, keeping their order.
func ForSymbol(stream []domain.Order, symbol string) []domain.Order {
	var out []domain.Order
	for _, o := range stream {
		if o.Symbol == symbol {
			out = append(out, o)
		}
	}
	return out
}

// Simulatable drops orders whose quantity is unknown and returns how many were dropped.
func Simulatable(stream []domain.Order) ([]domain.Order, int) {
	out := make([]domain.Order, 0, len(stream))
	for _, o := range stream {
		if o.QuantityKnown {
			out = append(out, o)
		}
	}
	return out, len(stream) - len(out)
}

// Symbols returns the distinct symbols of trades in first-seen order.
func Symbols(trades []*domain.TradeRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range trades {
		if !seen[t.Symbol] {
			seen[t.Symbol] = true
			out = append(out, t.Symbol)
		}
	}
	return out
}

// Window returns [floor_day(first), ceil_day(last)] in UTC for a time-sorted stream.
func Window(stream []domain.Order) (time.Time, time.Time) {
	if len(stream) == 0 {
		return time.Time{}, time.Time{}
	}
	return floorDay(stream[0].Time), ceilDay(stream[len(stream)-1].Time)
}

func newLeg(t *domain.TradeRecord, idx int, at time.Time, price float64, tt domain.TradeType) domain.Order {
	return domain.Order{
		Time:           at,
		Symbol:         t.Symbol,
		ExchangeSymbol: t.ExchangeSymbol,
		Type:           tt,
		Quantity:       t.Quantity,
		SignedQuantity: SignedQuantity(t.Quantity, tt),
		Price:          price,
		QuantityKnown:  t.QuantityKnown,
		TradeIndex:     idx,
	}
}

func floorDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ceilDay(t time.Time) time.Time {
	f := floorDay(t)
	if f.Equal(t.UTC()) {
		return f
	}
	return f.AddDate(0, 0, 1)
}
