package simulation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ports"
)

// epsilon below which a position is considered flat.
const epsilon = 1e-12

// Engine replays order streams against close series using a margin account.
type Engine struct {
	logger ports.Logger
}

// NewEngine creates a simulation engine.
func NewEngine(logger ports.Logger) *Engine {
	return &Engine{logger: logger}
}

// FromOrders simulates in and returns the resulting portfolio.
// With AutoInitCash the stream is first replayed with zero cash and the largest free-cash
// deficit becomes the initial cash.
func (e *Engine) FromOrders(ctx context.Context, in ports.SimulationInput) (ports.Portfolio, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("simulating %s: %w", in.Label, ports.ErrContextCanceled)
	}

	orders := make([]domain.Order, len(in.Orders))
	copy(orders, in.Orders)
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Time.Before(orders[j].Time) })
	for i := 1; i < len(orders); i++ {
		if orders[i].Time.Equal(orders[i-1].Time) {
			return nil, fmt.Errorf("%s at %s: %w", in.Label, orders[i].Time.Format(time.RFC3339Nano), ports.ErrDuplicateTimestamp)
		}
	}

	initCash := in.InitCash
	if in.AutoInitCash {
		dry := replay(in, orders, 0)
		initCash = math.Max(-dry.minCash, 1)
		e.logger.Debug(ctx, "Resolved auto initial cash", map[string]interface{}{
			"label":     in.Label,
			"init_cash": initCash,
		})
	}

	run := replay(in, orders, initCash)
	snapshot := &domain.PortfolioSnapshot{
		Label:        in.Label,
		Source:       in.Source,
		Symbol:       in.Symbol,
		Variant:      in.Variant,
		InitCash:     initCash,
		Leverage:     in.Leverage,
		LeverageMode: in.LeverageMode,
		Fees:         in.Fees,
		Frequency:    in.Frequency,
		Values:       run.values,
		Orders:       orders,
		Trades:       run.trades,
	}

	e.logger.Debug(ctx, "Simulation finished", map[string]interface{}{
		"label":     in.Label,
		"orders":    len(orders),
		"trades":    len(run.trades),
		"end_value": run.values[len(run.values)-1].Value,
	})
	return FromSnapshot(snapshot), nil
}

func validate(in ports.SimulationInput) error {
	if len(in.Orders) == 0 {
		return fmt.Errorf("%s: %w", in.Label, ports.ErrNoOrders)
	}
	if len(in.Close) == 0 {
		return fmt.Errorf("%s: %w", in.Label, ports.ErrEmptyPriceWindow)
	}
	if in.SizeType != "" && in.SizeType != ports.SizeAmount {
		return fmt.Errorf("unsupported size type %q: %w", in.SizeType, ports.ErrInvalidRequest)
	}
	if in.Leverage < 1 {
		return fmt.Errorf("leverage %.4f below 1: %w", in.Leverage, ports.ErrInvalidRequest)
	}
	if in.Fees < 0 {
		return fmt.Errorf("negative fees %.4f: %w", in.Fees, ports.ErrInvalidRequest)
	}
	for _, o := range in.Orders {
		if math.IsNaN(o.SignedQuantity) || math.IsNaN(o.Price) || o.Price <= 0 {
			return fmt.Errorf("order at %s has no usable size or price: %w", o.Time.Format(time.RFC3339), ports.ErrInvalidRequest)
		}
	}
	if !in.AutoInitCash && in.InitCash <= 0 {
		return fmt.Errorf("initial cash %.4f must be positive: %w", in.InitCash, ports.ErrInvalidRequest)
	}
	return nil
}

// result is the outcome of one replay.
type result struct {
	values  []domain.ValuePoint
	trades  []domain.ExitTrade
	minCash float64
}

// replay walks the union of bar and order timestamps, filling orders at their own price and
// marking the position at the last known close.
func replay(in ports.SimulationInput, orders []domain.Order, initCash float64) result {
	acct := newAccount(in.Symbol, initCash, in.Leverage, in.LeverageMode, in.Fees)
	res := result{
		values:  make([]domain.ValuePoint, 0, len(in.Close)+len(orders)),
		minCash: initCash,
	}

	mark := math.NaN()
	bi, oi := 0, 0
	for bi < len(in.Close) || oi < len(orders) {
		var now time.Time
		switch {
		case oi >= len(orders):
			now = in.Close[bi].Time
		case bi >= len(in.Close):
			now = orders[oi].Time
		case in.Close[bi].Time.Before(orders[oi].Time):
			now = in.Close[bi].Time
		default:
			now = orders[oi].Time
		}

		if oi < len(orders) && orders[oi].Time.Equal(now) {
			o := orders[oi]
			acct.fill(now, o.SignedQuantity, o.Price)
			res.minCash = math.Min(res.minCash, acct.cash)
			if math.IsNaN(mark) {
				mark = o.Price
			}
			oi++
		}
		if bi < len(in.Close) && in.Close[bi].Time.Equal(now) {
			mark = in.Close[bi].Price
			bi++
		}

		res.values = append(res.values, domain.ValuePoint{
			Time:     now,
			Close:    mark,
			Cash:     acct.cash,
			Position: acct.position,
			Value:    acct.value(mark),
		})
	}
	res.trades = acct.trades
	return res
}
