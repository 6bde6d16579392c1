package pricedata

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ports"
)

// Panel is a multi-symbol price panel indexed by bar open time.
type Panel struct {
	bars map[string][]*domain.Kline // symbol -> bars sorted by OpenTime, unique
}

// NewPanel groups klines by symbol. Bars repeated for the same open time keep the last one read.
func NewPanel(klines []*domain.Kline) *Panel {
	p := &Panel{bars: make(map[string][]*domain.Kline)}
	for _, k := range klines {
		sym := strings.ToUpper(k.Symbol)
		p.bars[sym] = append(p.bars[sym], k)
	}
	for sym, bars := range p.bars {
		sort.SliceStable(bars, func(i, j int) bool { return bars[i].OpenTime.Before(bars[j].OpenTime) })
		deduped := bars[:0]
		for _, b := range bars {
			if n := len(deduped); n > 0 && deduped[n-1].OpenTime.Equal(b.OpenTime) {
				deduped[n-1] = b
				continue
			}
			deduped = append(deduped, b)
		}
		p.bars[sym] = deduped
	}
	return p
}

// Load reads a panel file.
func Load(filename string) (*Panel, error) {
	klines, err := ReadKlinesFromCSV(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load price panel '%s': %w", filename, err)
	}
	return NewPanel(klines), nil
}

// Symbols returns the panel symbols in sorted order.
func (p *Panel) Symbols() []string {
	out := make([]string, 0, len(p.bars))
	for sym := range p.bars {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// HasSymbol reports whether the panel contains bars for symbol.
func (p *Panel) HasSymbol(symbol string) bool {
	return len(p.bars[strings.ToUpper(symbol)]) > 0
}

// Closes returns the close series for symbol with start <= OpenTime <= end.
func (p *Panel) Closes(symbol string, start, end time.Time) ([]ports.PricePoint, error) {
	bars, ok := p.bars[strings.ToUpper(symbol)]
	if !ok || len(bars) == 0 {
		return nil, fmt.Errorf("symbol %s: %w", symbol, ports.ErrNotFound)
	}
	lo := sort.Search(len(bars), func(i int) bool { return !bars[i].OpenTime.Before(start) })
	hi := sort.Search(len(bars), func(i int) bool { return bars[i].OpenTime.After(end) })
	if hi < lo {
		hi = lo
	}
	out := make([]ports.PricePoint, 0, hi-lo)
	for _, b := range bars[lo:hi] {
		out = append(out, ports.PricePoint{Time: b.OpenTime.UTC(), Price: b.Close})
	}
	return out, nil
}
