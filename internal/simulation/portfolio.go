package simulation

import (
	"context"

	"copyTradeAnalyzer/internal/analytics"
	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ports"
)

// Portfolio is a finished simulation run.
type Portfolio struct {
	snapshot *domain.PortfolioSnapshot
}

// FromSnapshot wraps a stored run so statistics can be recomputed without replaying it.
func FromSnapshot(s *domain.PortfolioSnapshot) *Portfolio {
	return &Portfolio{snapshot: s}
}

func (p *Portfolio) InitCash() float64 { return p.snapshot.InitCash }

func (p *Portfolio) Snapshot() *domain.PortfolioSnapshot { return p.snapshot }

// Stats computes metrics in the given order.
func (p *Portfolio) Stats(ctx context.Context, metrics []ports.Metric) (domain.Stats, error) {
	return analytics.Compute(ctx, p.snapshot, metrics)
}

var (
	_ ports.Simulator = (*Engine)(nil)
	_ ports.Portfolio = (*Portfolio)(nil)
)
