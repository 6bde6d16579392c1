package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"copyTradeAnalyzer/config"
	"copyTradeAnalyzer/internal/adapters/logger"
	"copyTradeAnalyzer/internal/adapters/sqlite"
	"copyTradeAnalyzer/internal/analytics"
	"copyTradeAnalyzer/internal/report"
	"copyTradeAnalyzer/internal/simulation"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	label := flag.String("portfolio", "", "recompute stats for one stored portfolio label")
	list := flag.Bool("list", false, "list stored portfolios")
	flag.Parse()

	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	if *label == "" && !*list {
		sheet, err := report.ReadMasterCSV(cfg.MasterStatsPath())
		if err != nil {
			log.Fatalf("Error reading master stats: %v", err)
		}
		if len(sheet.Records) == 0 {
			fmt.Println("No rows in", cfg.MasterStatsPath())
			return
		}
		report.PrintSummary(os.Stdout, sheet, report.SummaryColumns)
		return
	}

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger.With("sqlite")})
	if err != nil {
		log.Fatalf("FATAL: Failed to open portfolio database: %v", err)
	}
	defer repo.Close()

	if *list {
		runs, err := repo.ListRuns(ctx)
		if err != nil {
			log.Fatalf("Error listing portfolios: %v", err)
		}
		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, []string{
				r.Label, string(r.Variant),
				strconv.FormatFloat(r.InitCash, 'f', 2, 64),
				strconv.FormatFloat(r.Leverage, 'f', -1, 64),
				r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			})
		}
		report.PrintTable(os.Stdout, []string{"Label", "Variant", "Init Cash", "Leverage", "Created"}, rows)
		return
	}

	snapshot, err := repo.LoadPortfolio(ctx, *label)
	if err != nil {
		log.Fatalf("Error loading portfolio %s: %v", *label, err)
	}
	if snapshot == nil {
		log.Fatalf("No stored portfolio named %s", *label)
	}

	metrics := analytics.Resolve(ctx, analytics.DesiredOrder, analytics.Custom(), analytics.Defaults(), appLogger)
	stats, err := simulation.FromSnapshot(snapshot).Stats(ctx, metrics)
	if err != nil {
		log.Fatalf("Error computing stats for %s: %v", *label, err)
	}
	rows := make([][]string, 0, len(stats))
	for _, nv := range stats {
		rows = append(rows, []string{nv.Title, nv.Value.String()})
	}
	report.PrintTable(os.Stdout, []string{*label, "Value"}, rows)
}
