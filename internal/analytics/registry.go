package analytics

import (
	"context"
	"fmt"

	"copyTradeAnalyzer/internal/ports"
)

// DesiredOrder is the column order of the master results table.
var DesiredOrder = []string{
	"start", "end", "period", "start_value", "min_value", "max_value",
	"end_value", "cash_deposits", "cash_earnings", "total_return",
	"bm_return", "total_time_exposure", "capital_weighted_time_exposure",
	"max_gross_exposure", "max_dd", "max_dd_duration", "total_orders",
	"total_fees_paid", "total_trades", "win_rate", "max_winning_streak",
	"max_losing_streak", "best_trade", "worst_trade", "avg_winning_trade",
	"avg_losing_trade", "avg_winning_trade_duration", "avg_losing_trade_duration",
	"profit_factor", "expectancy", "sharpe_ratio", "calmar_ratio",
	"omega_ratio", "sortino_ratio",
}

// Registry is a named set of metrics.
type Registry struct {
	metrics map[string]ports.Metric
	names   []string
}

// NewRegistry builds a registry from metrics. Later duplicates replace earlier ones.
func NewRegistry(metrics ...ports.Metric) *Registry {
	r := &Registry{metrics: make(map[string]ports.Metric, len(metrics))}
	for _, m := range metrics {
		_ = r.register(m, true)
	}
	return r
}

// Register adds a metric. Registering an existing name is an error.
func (r *Registry) Register(m ports.Metric) error {
	return r.register(m, false)
}

func (r *Registry) register(m ports.Metric, replace bool) error {
	if m.Name == "" || m.Calc == nil {
		return fmt.Errorf("metric needs a name and a calc func: %w", ports.ErrInvalidRequest)
	}
	if _, exists := r.metrics[m.Name]; exists {
		if !replace {
			return fmt.Errorf("metric %q already registered: %w", m.Name, ports.ErrInvalidRequest)
		}
	} else {
		r.names = append(r.names, m.Name)
	}
	r.metrics[m.Name] = m
	return nil
}

// Lookup returns the metric registered under name.
func (r *Registry) Lookup(name string) (ports.Metric, bool) {
	if r == nil {
		return ports.Metric{}, false
	}
	m, ok := r.metrics[name]
	return m, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Defaults returns a registry with the built-in portfolio metrics.
func Defaults() *Registry {
	return NewRegistry(DefaultMetrics()...)
}

// Custom returns a registry with the streak and capital-weighted exposure metrics.
func Custom() *Registry {
	return NewRegistry(CustomMetrics()...)
}

// Resolve maps names to metrics, preferring custom over defaults.
// Unknown names are logged and skipped.
func Resolve(ctx context.Context, desired []string, custom, defaults *Registry, logger ports.Logger) []ports.Metric {
	out := make([]ports.Metric, 0, len(desired))
	for _, name := range desired {
		if m, ok := custom.Lookup(name); ok {
			out = append(out, m)
			continue
		}
		if m, ok := defaults.Lookup(name); ok {
			out = append(out, m)
			continue
		}
		if logger != nil {
			logger.Warn(ctx, "Metric not found, skipping", map[string]interface{}{
				"metric": name,
			})
		}
	}
	return out
}

// Titles returns the column titles of metrics in order.
func Titles(metrics []ports.Metric) []string {
	titles := make([]string, len(metrics))
	for i, m := range metrics {
		titles[i] = m.Title
	}
	return titles
}
