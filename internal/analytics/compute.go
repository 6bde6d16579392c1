package analytics

import (
	"context"
	"fmt"

	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ports"
)

// Compute evaluates metrics against pf in order.
func Compute(ctx context.Context, pf *domain.PortfolioSnapshot, metrics []ports.Metric) (domain.Stats, error) {
	if pf == nil {
		return nil, fmt.Errorf("nil portfolio: %w", ports.ErrInvalidRequest)
	}
	stats := make(domain.Stats, 0, len(metrics))
	for _, m := range metrics {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("computing stats for %s: %w", pf.Label, ports.ErrContextCanceled)
		}
		v, err := m.Calc(pf)
		if err != nil {
			return nil, fmt.Errorf("metric %s for %s: %w", m.Name, pf.Label, err)
		}
		stats = append(stats, domain.NamedValue{Name: m.Name, Title: m.Title, Value: v})
	}
	return stats, nil
}
