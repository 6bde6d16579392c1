package analytics

import (
	"gonum.org/v1/gonum/stat"

	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ports"
)

// CustomMetrics returns the streak and capital-weighted exposure metrics.
func CustomMetrics() []ports.Metric {
	return []ports.Metric{
		metric("max_winning_streak", "Max Winning Streak", calcMaxWinningStreak),
		metric("max_losing_streak", "Max Losing Streak", calcMaxLosingStreak),
		metric("capital_weighted_time_exposure", "Capital Weighted Time Exposure [%]", CapitalWeightedTimeExposure),
	}
}

// longestStreak counts the longest run of consecutive trades matching pred.
// Trades are taken in exit order.
func longestStreak(trades []domain.ExitTrade, pred func(domain.ExitTrade) bool) int {
	var best, cur int
	for _, t := range trades {
		if !pred(t) {
			cur = 0
			continue
		}
		cur++
		if cur > best {
			best = cur
		}
	}
	return best
}

func calcMaxWinningStreak(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Trades) == 0 {
		return domain.MissingValue(domain.KindInt), nil
	}
	return domain.IntValue(int64(longestStreak(pf.Trades, domain.ExitTrade.IsWin))), nil
}

func calcMaxLosingStreak(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Trades) == 0 {
		return domain.MissingValue(domain.KindInt), nil
	}
	return domain.IntValue(int64(longestStreak(pf.Trades, domain.ExitTrade.IsLoss))), nil
}

// CapitalWeightedTimeExposure weights each trade's holding time by the capital it tied up
// (size × entry price), relative to the whole window at the mean portfolio value, in percent.
func CapitalWeightedTimeExposure(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Values) == 0 {
		return domain.MissingValue(domain.KindFloat), nil
	}
	totalSeconds := pf.End().Sub(pf.Start()).Seconds()
	meanValue := stat.Mean(values(pf), nil)
	if totalSeconds == 0 || meanValue == 0 {
		return domain.MissingValue(domain.KindFloat), nil
	}
	var weighted float64
	for _, t := range pf.Trades {
		weighted += t.Duration().Seconds() * t.EntryPrice * t.Size
	}
	return domain.FloatValue(weighted / (totalSeconds * meanValue) * 100), nil
}
