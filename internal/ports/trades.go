package ports

import (
	"context"

	"copyTradeAnalyzer/internal/domain"
)

// TradeLoader reads one copy-trading export into normalized closed trades.
// Returns ErrEmptyTradeFile when nothing closed is left.
type TradeLoader interface {
	LoadFile(ctx context.Context, path string) ([]*domain.TradeRecord, error)
}
