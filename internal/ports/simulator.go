package ports

import (
	"context"
	"time"

	"copyTradeAnalyzer/internal/domain"
)

// SizeType controls how order sizes are interpreted by the simulator.
type SizeType string

// SizeAmount interprets sizes as a number of units of the asset.
const SizeAmount SizeType = "amount"

// PricePoint is one sample of a price series.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// SimulationInput is everything the simulator consumes for one run.
type SimulationInput struct {
	Label        string
	Source       string
	Symbol       string
	Variant      domain.Variant
	Close        []PricePoint   // Bar closes of the price window, ascending
	Orders       []domain.Order // SignedQuantity is the size, Price is the fill price
	SizeType     SizeType
	AutoInitCash bool    // Derive the initial cash from the order stream
	InitCash     float64 // Used when AutoInitCash is false
	Leverage     float64
	LeverageMode domain.LeverageMode
	Fees         float64 // Proportional fee per fill
	Frequency    time.Duration
}

// Metric is a named statistic that can be computed from a portfolio.
// Custom metrics are registered with the same shape as the built-in ones.
type Metric struct {
	Name  string
	Title string
	Calc  func(pf *domain.PortfolioSnapshot) (domain.MetricValue, error)
}

// Portfolio is the result of one simulation run.
type Portfolio interface {
	// InitCash is the starting cash actually used (resolved when auto sizing was requested).
	InitCash() float64
	// Snapshot exposes the value history, orders and trades of the run.
	Snapshot() *domain.PortfolioSnapshot
	// Stats computes the given metrics in order.
	Stats(ctx context.Context, metrics []Metric) (domain.Stats, error)
}

// Simulator replays an order stream against a price series.
type Simulator interface {
	FromOrders(ctx context.Context, in SimulationInput) (Portfolio, error)
}
