package app

import (
	"context"
	"errors"
	"fmt"

	"copyTradeAnalyzer/config"
	"copyTradeAnalyzer/internal/analytics"
	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ingest"
	"copyTradeAnalyzer/internal/orders"
	"copyTradeAnalyzer/internal/ports"
	"copyTradeAnalyzer/internal/report"
)

// AnalysisService runs every trade file against the price panel and builds the master table.
type AnalysisService struct {
	cfg     *config.Config
	logger  ports.Logger
	loader  ports.TradeLoader
	prices  ports.PriceSource
	sim     ports.Simulator
	repo    ports.PortfolioRepository
	metrics []ports.Metric
}

// NewAnalysisService creates a new application service instance.
func NewAnalysisService(
	cfg *config.Config,
	logger ports.Logger,
	loader ports.TradeLoader,
	prices ports.PriceSource,
	sim ports.Simulator,
	repo ports.PortfolioRepository,
) (*AnalysisService, error) {
	if cfg == nil || logger == nil || loader == nil || prices == nil || sim == nil || repo == nil {
		return nil, fmt.Errorf("missing required dependencies for AnalysisService")
	}
	if cfg.Leverage < 1 {
		return nil, fmt.Errorf("configuration Leverage must be at least 1")
	}
	if cfg.BarFrequency <= 0 {
		return nil, fmt.Errorf("configuration BarFrequency must be positive")
	}

	metrics := analytics.Resolve(context.Background(), analytics.DesiredOrder, analytics.Custom(), analytics.Defaults(), logger)

	return &AnalysisService{
		cfg:     cfg,
		logger:  logger,
		loader:  loader,
		prices:  prices,
		sim:     sim,
		repo:    repo,
		metrics: metrics,
	}, nil
}

// Metrics returns the resolved column layout.
func (s *AnalysisService) Metrics() []ports.Metric { return s.metrics }

// Run processes every trade file and writes the master CSV.
// A duplicate timestamp aborts the current file, or the whole run when AbortOnDuplicate is set.
func (s *AnalysisService) Run(ctx context.Context) (*report.MasterTable, error) {
	files, err := ingest.ListTradeFiles(s.cfg.TradesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list trade files: %w", err)
	}
	s.logger.Info(ctx, "Starting analysis", map[string]interface{}{
		"files":    len(files),
		"symbols":  s.cfg.TrackedSymbols,
		"leverage": s.cfg.Leverage,
	})

	table := report.NewMasterTable(s.metrics)
	for _, path := range files {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("analysis interrupted: %w", ports.ErrContextCanceled)
		}
		err := s.processFile(ctx, path, table)
		switch {
		case err == nil:
		case errors.Is(err, ports.ErrDuplicateTimestamp):
			s.logger.Error(ctx, err, "Duplicate timestamps found in the orders, aborting file", map[string]interface{}{"file": path})
			if s.cfg.AbortOnDuplicate {
				return nil, err
			}
		case isFatal(err):
			return nil, err
		default:
			s.logger.Error(ctx, err, "Failed to process trade file, skipping", map[string]interface{}{"file": path})
		}
	}

	if err := report.WriteMasterCSV(s.cfg.MasterStatsPath(), table); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Master stats written", map[string]interface{}{
		"path": s.cfg.MasterStatsPath(),
		"rows": table.Len(),
	})
	return table, nil
}

func isFatal(err error) bool {
	return errors.Is(err, ports.ErrContextCanceled) ||
		errors.Is(err, ports.ErrDBConnection) ||
		errors.Is(err, ports.ErrQueryFailed)
}

func (s *AnalysisService) processFile(ctx context.Context, path string, table *report.MasterTable) error {
	source := ingest.SourceName(path)
	trades, err := s.loader.LoadFile(ctx, path)
	if errors.Is(err, ports.ErrEmptyTradeFile) {
		s.logger.Info(ctx, "No closed trades in file, skipping", map[string]interface{}{"file": source})
		return nil
	}
	if err != nil {
		return err
	}

	stream := orders.Reconstruct(trades)
	present := make(map[string]bool)
	for _, sym := range orders.Symbols(trades) {
		present[sym] = true
	}

	for _, symbol := range s.cfg.TrackedSymbols {
		if !present[symbol] {
			s.logger.Info(ctx, "No data for symbol in file", map[string]interface{}{"file": source, "symbol": symbol})
			continue
		}
		symOrders := orders.ForSymbol(stream, symbol)
		if err := orders.CheckUnique(symOrders); err != nil {
			return fmt.Errorf("%s %s: %w", source, symbol, err)
		}

		err := s.processSymbol(ctx, source, symbol, symOrders, table)
		switch {
		case err == nil:
		case errors.Is(err, ports.ErrNoOrders), errors.Is(err, ports.ErrEmptyPriceWindow), errors.Is(err, ports.ErrNotFound):
			s.logger.Warn(ctx, "Symbol cannot be simulated, skipping", map[string]interface{}{
				"file": source, "symbol": symbol, "reason": err.Error(),
			})
		default:
			return err
		}
	}
	return nil
}

func (s *AnalysisService) processSymbol(ctx context.Context, source, symbol string, symOrders []domain.Order, table *report.MasterTable) error {
	simOrders, dropped := orders.Simulatable(symOrders)
	if dropped > 0 {
		s.logger.Warn(ctx, "Orders without a known quantity excluded", map[string]interface{}{
			"file": source, "symbol": symbol, "dropped": dropped,
		})
	}
	if len(simOrders) == 0 {
		return fmt.Errorf("%s %s: %w", source, symbol, ports.ErrNoOrders)
	}

	start, end := orders.Window(simOrders)
	closes, err := s.prices.Closes(symbol, start, end)
	if err != nil {
		return err
	}
	if len(closes) == 0 {
		return fmt.Errorf("%s %s between %s and %s: %w", source, symbol, start.Format("2006-01-02"), end.Format("2006-01-02"), ports.ErrEmptyPriceWindow)
	}
	if closes[0].Time.After(simOrders[0].Time) || closes[len(closes)-1].Time.Before(simOrders[len(simOrders)-1].Time) {
		s.logger.Warn(ctx, "Price data only partially covers the orders", map[string]interface{}{
			"file":       source,
			"symbol":     symbol,
			"firstBar":   closes[0].Time,
			"lastBar":    closes[len(closes)-1].Time,
			"firstOrder": simOrders[0].Time,
			"lastOrder":  simOrders[len(simOrders)-1].Time,
		})
	}

	base := ports.SimulationInput{
		Source:       source,
		Symbol:       symbol,
		Close:        closes,
		Orders:       simOrders,
		SizeType:     ports.SizeAmount,
		LeverageMode: domain.LeverageModeEager,
		Fees:         s.cfg.Fees,
		Frequency:    s.cfg.BarFrequency,
	}

	unleveredIn := base
	unleveredIn.Label = report.RowKey(source, symbol, domain.VariantUnlevered)
	unleveredIn.Variant = domain.VariantUnlevered
	unleveredIn.AutoInitCash = true
	unleveredIn.Leverage = 1
	unlevered, err := s.sim.FromOrders(ctx, unleveredIn)
	if err != nil {
		return fmt.Errorf("unlevered simulation of %s: %w", unleveredIn.Label, err)
	}

	leveredIn := base
	leveredIn.Label = report.RowKey(source, symbol, domain.VariantLevered)
	leveredIn.Variant = domain.VariantLevered
	leveredIn.InitCash = unlevered.InitCash() / s.cfg.Leverage
	leveredIn.Leverage = s.cfg.Leverage
	levered, err := s.sim.FromOrders(ctx, leveredIn)
	if err != nil {
		return fmt.Errorf("levered simulation of %s: %w", leveredIn.Label, err)
	}

	for _, pf := range []ports.Portfolio{levered, unlevered} {
		if _, err := s.repo.SavePortfolio(ctx, pf.Snapshot()); err != nil {
			return fmt.Errorf("failed to save %s: %w", pf.Snapshot().Label, err)
		}
	}

	leveredStats, err := levered.Stats(ctx, s.metrics)
	if err != nil {
		return err
	}
	unleveredStats, err := unlevered.Stats(ctx, s.metrics)
	if err != nil {
		return err
	}
	if err := table.Add(leveredIn.Label, symbol, leveredStats); err != nil {
		return err
	}
	if err := table.Add(unleveredIn.Label, symbol, unleveredStats); err != nil {
		return err
	}

	ret, _ := leveredStats.Get("total_return")
	s.logger.Info(ctx, "Symbol processed", map[string]interface{}{
		"file":       source,
		"symbol":     symbol,
		"orders":     len(simOrders),
		"initCash":   unlevered.InitCash(),
		"leveredRet": ret.String(),
	})
	return nil
}
