package ports

import (
	"context"
	"time"

	"copyTradeAnalyzer/internal/domain"
)

// RunInfo summarizes one persisted portfolio.
type RunInfo struct {
	RunID     string
	Label     string
	Source    string
	Symbol    string
	Variant   domain.Variant
	InitCash  float64
	Leverage  float64
	CreatedAt time.Time
}

// PortfolioRepository persists simulation results so they can be reloaded later.
type PortfolioRepository interface {
	// SavePortfolio stores a portfolio under its label, replacing any previous run with that label.
	SavePortfolio(ctx context.Context, pf *domain.PortfolioSnapshot) (string, error)
	// LoadPortfolio retrieves a portfolio by label.
	// Returns nil, nil if no run exists for the label.
	LoadPortfolio(ctx context.Context, label string) (*domain.PortfolioSnapshot, error)
	// ListRuns returns all persisted runs ordered by label.
	ListRuns(ctx context.Context) ([]RunInfo, error)
}

// PriceSource provides close series from the price panel.
type PriceSource interface {
	// Closes returns the close series for symbol within [start, end], ascending.
	Closes(symbol string, start, end time.Time) ([]PricePoint, error)
	// HasSymbol reports whether the panel contains the symbol.
	HasSymbol(symbol string) bool
}

// KlineFetcher downloads historical klines for building a price panel.
type KlineFetcher interface {
	GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error)
}
