package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	symbolPattern   = regexp.MustCompile(`\w+`)
	contractPattern = regexp.MustCompile(`\d+,?\d*`)
)

// timestampLayouts are tried in order for the naive local timestamps of the export.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"01/02/2006, 15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
}

// ExtractSymbol returns the first word of a title, e.g. "BTCUSDT Perpetual" -> "BTCUSDT".
func ExtractSymbol(title string) string {
	return symbolPattern.FindString(title)
}

// ExchangeSymbol maps platform naming to exchange naming, e.g. "BTCUSDT" -> "BTC-USDT".
func ExchangeSymbol(symbol string) string {
	return strings.Replace(symbol, "USDT", "-USDT", 1)
}

// CleanCurrency parses a currency-formatted string such as "1,234.50 USDT" or "-12.5%".
// ok is false when the value is not numeric.
func CleanCurrency(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, " USDT")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParseContracts extracts the contract count from strings like "1,200 Cont".
func ParseContracts(s string) (int64, error) {
	m := contractPattern.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("no contract count in %q", s)
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(m, ",", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing contract count %q: %w", m, err)
	}
	return n, nil
}

// ParseTimestamp interprets a naive timestamp in loc and returns it in UTC.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
