package analytics

import (
	"math"
	"time"

	"copyTradeAnalyzer/internal/domain"
)

const year = 365 * 24 * time.Hour

// values returns the value history as a plain slice.
func values(pf *domain.PortfolioSnapshot) []float64 {
	out := make([]float64, len(pf.Values))
	for i, v := range pf.Values {
		out[i] = v.Value
	}
	return out
}

// barValues returns the last value of every frequency bucket, so that order timestamps falling
// between bars do not add extra return samples.
func barValues(pf *domain.PortfolioSnapshot) []float64 {
	if pf.Frequency <= 0 {
		return values(pf)
	}
	var out []float64
	var bucket time.Time
	for i, v := range pf.Values {
		b := v.Time.Truncate(pf.Frequency)
		if i > 0 && b.Equal(bucket) {
			out[len(out)-1] = v.Value
			continue
		}
		bucket = b
		out = append(out, v.Value)
	}
	return out
}

// returns computes simple per-bar returns. Steps from a zero value are skipped.
func returns(pf *domain.PortfolioSnapshot) []float64 {
	vals := barValues(pf)
	if len(vals) < 2 {
		return nil
	}
	out := make([]float64, 0, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		if vals[i-1] == 0 {
			continue
		}
		out = append(out, vals[i]/vals[i-1]-1)
	}
	return out
}

// annFactor is the number of bars in a year.
func annFactor(pf *domain.PortfolioSnapshot) float64 {
	if pf.Frequency <= 0 {
		return math.NaN()
	}
	return float64(year) / float64(pf.Frequency)
}

// drawdown describes the deepest drawdown and the longest underwater period of a value series.
type drawdown struct {
	maxDepth    float64 // Fraction of the running peak
	maxDuration time.Duration
}

func analyzeDrawdown(pf *domain.PortfolioSnapshot) drawdown {
	var dd drawdown
	if len(pf.Values) == 0 {
		return dd
	}
	peak := pf.Values[0].Value
	peakTime := pf.Values[0].Time
	underwater := false
	for _, v := range pf.Values[1:] {
		if v.Value >= peak {
			if underwater {
				if d := v.Time.Sub(peakTime); d > dd.maxDuration {
					dd.maxDuration = d
				}
				underwater = false
			}
			peak = v.Value
			peakTime = v.Time
			continue
		}
		underwater = true
		if peak > 0 {
			if depth := (peak - v.Value) / peak; depth > dd.maxDepth {
				dd.maxDepth = depth
			}
		}
	}
	if underwater {
		if d := pf.End().Sub(peakTime); d > dd.maxDuration {
			dd.maxDuration = d
		}
	}
	return dd
}

// partitionTrades splits exit trades into winners and losers. Flat trades belong to neither.
func partitionTrades(trades []domain.ExitTrade) (wins, losses []domain.ExitTrade) {
	for _, t := range trades {
		switch {
		case t.IsWin():
			wins = append(wins, t)
		case t.IsLoss():
			losses = append(losses, t)
		}
	}
	return wins, losses
}

func avgDuration(trades []domain.ExitTrade) domain.MetricValue {
	if len(trades) == 0 {
		return domain.MissingValue(domain.KindDuration)
	}
	var total time.Duration
	for _, t := range trades {
		total += t.Duration()
	}
	return domain.DurationValue(total / time.Duration(len(trades)))
}

func tradeReturns(trades []domain.ExitTrade) []float64 {
	out := make([]float64, len(trades))
	for i, t := range trades {
		out[i] = t.Return * 100
	}
	return out
}
