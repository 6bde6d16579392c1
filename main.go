package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"

	"copyTradeAnalyzer/config"
	"copyTradeAnalyzer/internal/adapters/logger"
	"copyTradeAnalyzer/internal/adapters/sqlite"
	"copyTradeAnalyzer/internal/app"
	"copyTradeAnalyzer/internal/ingest"
	"copyTradeAnalyzer/internal/pricedata"
	"copyTradeAnalyzer/internal/report"
	"copyTradeAnalyzer/internal/simulation"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// Ctrl-C stops between files
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger.With("sqlite"),
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()

	// 4. Load multipliers and the price panel
	multipliers := ingest.DefaultMultipliers()
	if cfg.MultipliersFile != "" {
		multipliers, err = ingest.LoadMultipliers(cfg.MultipliersFile)
		if err != nil {
			log.Fatalf("FATAL: Failed to load multipliers: %v", err)
		}
		appLogger.Info(ctx, "Contract multipliers loaded", map[string]interface{}{"file": cfg.MultipliersFile, "symbols": len(multipliers)})
	}
	loader, err := ingest.New(ingest.Config{
		SourceTimezone: cfg.SourceTimezone,
		Multipliers:    multipliers,
		Logger:         appLogger.With("ingest"),
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize ingester: %v", err)
	}

	panel, err := pricedata.Load(cfg.PriceDataFile)
	if err != nil {
		log.Fatalf("FATAL: Failed to load price data: %v", err)
	}
	appLogger.Info(ctx, "Price panel loaded", map[string]interface{}{"file": cfg.PriceDataFile, "symbols": panel.Symbols()})

	// 5. Initialize Application Service
	svc, err := app.NewAnalysisService(cfg, appLogger.With("pipeline"), loader, panel,
		simulation.NewEngine(appLogger.With("engine")), repo)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize analysis service: %v", err)
	}

	// 6. Run
	table, err := svc.Run(ctx)
	if err != nil {
		appLogger.Error(ctx, err, "Analysis exited with error")
		log.Fatalf("FATAL: Analysis exited with error: %v", err)
	}

	if table.Len() > 0 {
		report.PrintSummary(os.Stdout, table.Sheet(), report.SummaryColumns)
	}
	appLogger.Info(ctx, "Application finished gracefully.")
}
