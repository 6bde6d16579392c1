package domain

import "time"

// Kline represents a single candlestick of the price panel.
type Kline struct {
	OpenTime  time.Time // Start time of the interval, used as the bar index
	CloseTime time.Time // End time of the interval
	Symbol    string    // Binance-style symbol, e.g. "BTCUSDT"
	Interval  string    // Kline interval (e.g., "1m", "15m")
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}
