package analytics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ports"
)

type calcFunc = func(pf *domain.PortfolioSnapshot) (domain.MetricValue, error)

func metric(name, title string, calc calcFunc) ports.Metric {
	return ports.Metric{Name: name, Title: title, Calc: calc}
}

// DefaultMetrics returns the built-in portfolio statistics.
func DefaultMetrics() []ports.Metric {
	return []ports.Metric{
		metric("start", "Start", calcStart),
		metric("end", "End", calcEnd),
		metric("period", "Period", calcPeriod),
		metric("start_value", "Start Value", calcStartValue),
		metric("min_value", "Min Value", calcMinValue),
		metric("max_value", "Max Value", calcMaxValue),
		metric("end_value", "End Value", calcEndValue),
		metric("cash_deposits", "Cash Deposits", calcZero),
		metric("cash_earnings", "Cash Earnings", calcZero),
		metric("total_return", "Total Return [%]", calcTotalReturn),
		metric("bm_return", "Benchmark Return [%]", calcBenchmarkReturn),
		metric("total_time_exposure", "Total Time Exposure [%]", calcTimeExposure),
		metric("max_gross_exposure", "Max Gross Exposure [%]", calcMaxGrossExposure),
		metric("max_dd", "Max Drawdown [%]", calcMaxDrawdown),
		metric("max_dd_duration", "Max Drawdown Duration", calcMaxDrawdownDuration),
		metric("total_orders", "Total Orders", calcTotalOrders),
		metric("total_fees_paid", "Total Fees Paid", calcFeesPaid),
		metric("total_trades", "Total Trades", calcTotalTrades),
		metric("win_rate", "Win Rate [%]", calcWinRate),
		metric("best_trade", "Best Trade [%]", calcBestTrade),
		metric("worst_trade", "Worst Trade [%]", calcWorstTrade),
		metric("avg_winning_trade", "Avg Winning Trade [%]", calcAvgWinningTrade),
		metric("avg_losing_trade", "Avg Losing Trade [%]", calcAvgLosingTrade),
		metric("avg_winning_trade_duration", "Avg Winning Trade Duration", calcAvgWinningDuration),
		metric("avg_losing_trade_duration", "Avg Losing Trade Duration", calcAvgLosingDuration),
		metric("profit_factor", "Profit Factor", calcProfitFactor),
		metric("expectancy", "Expectancy", calcExpectancy),
		metric("sharpe_ratio", "Sharpe Ratio", calcSharpe),
		metric("calmar_ratio", "Calmar Ratio", calcCalmar),
		metric("omega_ratio", "Omega Ratio", calcOmega),
		metric("sortino_ratio", "Sortino Ratio", calcSortino),
	}
}

func missingFloat() (domain.MetricValue, error) {
	return domain.MissingValue(domain.KindFloat), nil
}

func calcStart(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Values) == 0 {
		return domain.MissingValue(domain.KindTime), nil
	}
	return domain.TimeValue(pf.Start()), nil
}

func calcEnd(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Values) == 0 {
		return domain.MissingValue(domain.KindTime), nil
	}
	return domain.TimeValue(pf.End()), nil
}

// calcPeriod spans the first to the last sample plus one bar.
func calcPeriod(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Values) == 0 {
		return domain.MissingValue(domain.KindDuration), nil
	}
	return domain.DurationValue(pf.End().Sub(pf.Start()) + pf.Frequency), nil
}

func calcStartValue(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	return domain.FloatValue(pf.InitCash), nil
}

func calcMinValue(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Values) == 0 {
		return missingFloat()
	}
	return domain.FloatValue(floats.Min(values(pf))), nil
}

func calcMaxValue(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Values) == 0 {
		return missingFloat()
	}
	return domain.FloatValue(floats.Max(values(pf))), nil
}

func calcEndValue(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Values) == 0 {
		return missingFloat()
	}
	return domain.FloatValue(pf.Values[len(pf.Values)-1].Value), nil
}

// calcZero covers cash flows the simulation never produces.
func calcZero(*domain.PortfolioSnapshot) (domain.MetricValue, error) {
	return domain.FloatValue(0), nil
}

func calcTotalReturn(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Values) == 0 || pf.InitCash == 0 {
		return missingFloat()
	}
	end := pf.Values[len(pf.Values)-1].Value
	return domain.FloatValue((end/pf.InitCash - 1) * 100), nil
}

func calcBenchmarkReturn(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Values) == 0 || pf.Values[0].Close == 0 {
		return missingFloat()
	}
	first := pf.Values[0].Close
	last := pf.Values[len(pf.Values)-1].Close
	return domain.FloatValue((last/first - 1) * 100), nil
}

// calcTimeExposure is the share of samples holding a position.
func calcTimeExposure(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Values) == 0 {
		return missingFloat()
	}
	var held int
	for _, v := range pf.Values {
		if v.Position != 0 {
			held++
		}
	}
	return domain.FloatValue(float64(held) / float64(len(pf.Values)) * 100), nil
}

// calcMaxGrossExposure is the largest |position × mark| relative to portfolio value.
func calcMaxGrossExposure(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Values) == 0 {
		return missingFloat()
	}
	var maxExp float64
	for _, v := range pf.Values {
		exposure := math.Abs(v.Position * v.Close)
		if exposure == 0 {
			continue
		}
		if v.Value <= 0 {
			return domain.FloatValue(math.Inf(1)), nil
		}
		maxExp = math.Max(maxExp, exposure/v.Value)
	}
	return domain.FloatValue(maxExp * 100), nil
}

func calcMaxDrawdown(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Values) == 0 {
		return missingFloat()
	}
	return domain.FloatValue(analyzeDrawdown(pf).maxDepth * 100), nil
}

func calcMaxDrawdownDuration(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Values) == 0 {
		return domain.MissingValue(domain.KindDuration), nil
	}
	return domain.DurationValue(analyzeDrawdown(pf).maxDuration), nil
}

func calcTotalOrders(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	return domain.IntValue(int64(len(pf.Orders))), nil
}

// TotalFees is the fee paid over all fills of pf.
func TotalFees(pf *domain.PortfolioSnapshot) float64 {
	var total float64
	for _, o := range pf.Orders {
		total += math.Abs(o.SignedQuantity) * o.Price * pf.Fees
	}
	return total
}

func calcFeesPaid(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	return domain.FloatValue(TotalFees(pf)), nil
}

func calcTotalTrades(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	return domain.IntValue(int64(len(pf.Trades))), nil
}

func calcWinRate(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Trades) == 0 {
		return missingFloat()
	}
	wins, _ := partitionTrades(pf.Trades)
	return domain.FloatValue(float64(len(wins)) / float64(len(pf.Trades)) * 100), nil
}

func calcBestTrade(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Trades) == 0 {
		return missingFloat()
	}
	return domain.FloatValue(floats.Max(tradeReturns(pf.Trades))), nil
}

func calcWorstTrade(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Trades) == 0 {
		return missingFloat()
	}
	return domain.FloatValue(floats.Min(tradeReturns(pf.Trades))), nil
}

func calcAvgWinningTrade(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	wins, _ := partitionTrades(pf.Trades)
	if len(wins) == 0 {
		return missingFloat()
	}
	return domain.FloatValue(stat.Mean(tradeReturns(wins), nil)), nil
}

func calcAvgLosingTrade(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	_, losses := partitionTrades(pf.Trades)
	if len(losses) == 0 {
		return missingFloat()
	}
	return domain.FloatValue(stat.Mean(tradeReturns(losses), nil)), nil
}

func calcAvgWinningDuration(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	wins, _ := partitionTrades(pf.Trades)
	return avgDuration(wins), nil
}

func calcAvgLosingDuration(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	_, losses := partitionTrades(pf.Trades)
	return avgDuration(losses), nil
}

func calcProfitFactor(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Trades) == 0 {
		return missingFloat()
	}
	var gross, loss float64
	for _, t := range pf.Trades {
		if t.PNL > 0 {
			gross += t.PNL
		} else {
			loss -= t.PNL
		}
	}
	switch {
	case loss == 0 && gross == 0:
		return missingFloat()
	case loss == 0:
		return domain.FloatValue(math.Inf(1)), nil
	}
	return domain.FloatValue(gross / loss), nil
}

func calcExpectancy(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	if len(pf.Trades) == 0 {
		return missingFloat()
	}
	pnls := make([]float64, len(pf.Trades))
	for i, t := range pf.Trades {
		pnls[i] = t.PNL
	}
	return domain.FloatValue(stat.Mean(pnls, nil)), nil
}

func calcSharpe(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	rets := returns(pf)
	if len(rets) < 2 {
		return missingFloat()
	}
	mean, std := stat.MeanStdDev(rets, nil)
	if std == 0 {
		return missingFloat()
	}
	return domain.FloatValue(mean / std * math.Sqrt(annFactor(pf))), nil
}

// downsideRisk is the root mean square of the negative returns.
func downsideRisk(rets []float64) float64 {
	var sum float64
	for _, r := range rets {
		if r < 0 {
			sum += r * r
		}
	}
	return math.Sqrt(sum / float64(len(rets)))
}

func calcSortino(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	rets := returns(pf)
	if len(rets) < 2 {
		return missingFloat()
	}
	mean := stat.Mean(rets, nil)
	risk := downsideRisk(rets)
	if risk == 0 {
		if mean > 0 {
			return domain.FloatValue(math.Inf(1)), nil
		}
		return missingFloat()
	}
	return domain.FloatValue(mean / risk * math.Sqrt(annFactor(pf))), nil
}

// annualizedReturn compounds the mean per-bar growth over a year.
func annualizedReturn(pf *domain.PortfolioSnapshot, rets []float64) float64 {
	growth := 1.0
	for _, r := range rets {
		growth *= 1 + r
	}
	return math.Pow(growth, annFactor(pf)/float64(len(rets))) - 1
}

func calcCalmar(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	rets := returns(pf)
	if len(rets) == 0 {
		return missingFloat()
	}
	depth := analyzeDrawdown(pf).maxDepth
	if depth == 0 {
		return missingFloat()
	}
	return domain.FloatValue(annualizedReturn(pf, rets) / depth), nil
}

func calcOmega(pf *domain.PortfolioSnapshot) (domain.MetricValue, error) {
	rets := returns(pf)
	if len(rets) == 0 {
		return missingFloat()
	}
	var up, down float64
	for _, r := range rets {
		if r > 0 {
			up += r
		} else {
			down -= r
		}
	}
	switch {
	case down == 0 && up == 0:
		return missingFloat()
	case down == 0:
		return domain.FloatValue(math.Inf(1)), nil
	}
	return domain.FloatValue(up / down), nil
}
