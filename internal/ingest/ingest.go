package ingest

import (
	"context"
	"fmt"
	"time"

	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ports"
)

// Ingester turns copy-trading exports into normalized trade records.
type Ingester struct {
	loc         *time.Location
	multipliers Multipliers
	logger      ports.Logger
}

// Config holds configuration for the Ingester.
type Config struct {
	SourceTimezone *time.Location // Timezone of the naive export timestamps
	Multipliers    Multipliers
	Logger         ports.Logger
}

// New creates an Ingester.
func New(cfg Config) (*Ingester, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for ingester")
	}
	loc := cfg.SourceTimezone
	if loc == nil {
		loc = time.UTC
	}
	m := cfg.Multipliers
	if m == nil {
		m = DefaultMultipliers()
	}
	return &Ingester{loc: loc, multipliers: m, logger: cfg.Logger}, nil
}

// LoadFile reads and normalizes one trade file.
// Returns ports.ErrEmptyTradeFile when the file has no closed trades.
func (in *Ingester) LoadFile(ctx context.Context, path string) ([]*domain.TradeRecord, error) {
	rows, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", SourceName(path), ports.ErrEmptyTradeFile)
	}
	return in.Normalize(ctx, SourceName(path), rows)
}

// Normalize converts raw rows into trade records, dropping open positions.
// Rows that cannot be parsed are logged and skipped.
func (in *Ingester) Normalize(ctx context.Context, source string, rows []RawRow) ([]*domain.TradeRecord, error) {
	trades := make([]*domain.TradeRecord, 0, len(rows))
	unmapped := make(map[string]bool)

	for i, row := range rows {
		if row[ColClosedDate] == openMarker {
			continue
		}
		rec, err := in.normalizeRow(row)
		if err != nil {
			in.logger.Warn(ctx, "Skipping malformed trade row", map[string]interface{}{
				"file": source, "row": i + 1, "error": err.Error(),
			})
			continue
		}
		if !rec.QuantityKnown && !unmapped[rec.ExchangeSymbol] {
			unmapped[rec.ExchangeSymbol] = true
			in.logger.Warn(ctx, "No contract multiplier for symbol, its orders will not be simulated",
				map[string]interface{}{"file": source, "symbol": rec.ExchangeSymbol})
		}
		trades = append(trades, rec)
	}

	if len(trades) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ports.ErrEmptyTradeFile)
	}
	return trades, nil
}

func (in *Ingester) normalizeRow(row RawRow) (*domain.TradeRecord, error) {
	openTime, err := ParseTimestamp(row[ColOpenDate], in.loc)
	if err != nil {
		return nil, fmt.Errorf("open_date: %w: %w", ports.ErrMalformedRow, err)
	}
	closeTime, err := ParseTimestamp(row[ColClosedDate], in.loc)
	if err != nil {
		return nil, fmt.Errorf("closed_date: %w: %w", ports.ErrMalformedRow, err)
	}
	contracts, err := ParseContracts(row[ColClosed])
	if err != nil {
		return nil, fmt.Errorf("closed: %w: %w", ports.ErrMalformedRow, err)
	}

	symbol := ExtractSymbol(row[ColTitle])
	if symbol == "" {
		return nil, fmt.Errorf("title %q has no symbol: %w", row[ColTitle], ports.ErrMalformedRow)
	}
	rec := &domain.TradeRecord{
		OpenTime:       openTime,
		CloseTime:      closeTime,
		Title:          row[ColTitle],
		Symbol:         symbol,
		ExchangeSymbol: ExchangeSymbol(symbol),
		Leverage:       row[ColLeverage],
		Direction:      row[ColDirection],
		Contracts:      contracts,
	}

	var ok bool
	if rec.EntryPrice, ok = CleanCurrency(row[ColEntryPrice]); !ok {
		return nil, fmt.Errorf("entry_price %q: %w", row[ColEntryPrice], ports.ErrMalformedRow)
	}
	if rec.FillPrice, ok = CleanCurrency(row[ColFillPrice]); !ok {
		return nil, fmt.Errorf("fill_price %q: %w", row[ColFillPrice], ports.ErrMalformedRow)
	}
	// pnl columns are informational only.
	rec.PNL, _ = CleanCurrency(row[ColPNL])
	rec.PNLPercent, _ = CleanCurrency(row[ColPNLPercent])

	if mult, found := in.multipliers.Lookup(rec.ExchangeSymbol); found {
		rec.Multiplier = mult
		rec.Quantity = float64(contracts) * mult
		rec.QuantityKnown = true
	}
	return rec, nil
}
var _ ports.TradeLoader = (*Ingester)(nil)
