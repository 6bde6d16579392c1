package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"copyTradeAnalyzer/config"
	"copyTradeAnalyzer/internal/adapters/binanceclient"
	"copyTradeAnalyzer/internal/adapters/logger"
	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/pricedata"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	out := flag.String("out", cfg.PriceDataFile, "price panel CSV to write")
	interval := flag.String("interval", cfg.FetchInterval, "kline interval")
	days := flag.Int("days", cfg.FetchDays, "number of days to fetch, ending now")
	flag.Parse()

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger.With("binance"),
		PageDelay:  200 * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	if err := binanceClient.Ping(ctx); err != nil {
		log.Fatalf("FATAL: Binance unreachable: %v", err)
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -*days)

	var panel []*domain.Kline
	for _, symbol := range cfg.TrackedSymbols {
		appLogger.Info(ctx, "Fetching klines", map[string]interface{}{
			"symbol": symbol, "interval": *interval, "start": start.Format(time.RFC3339), "end": end.Format(time.RFC3339),
		})
		klines, err := binanceClient.GetKlinesRange(ctx, symbol, *interval, start, end)
		if err != nil {
			log.Fatalf("Error fetching klines for %s: %v", symbol, err)
		}
		appLogger.Info(ctx, "Fetched klines", map[string]interface{}{"symbol": symbol, "count": len(klines)})
		panel = append(panel, klines...)
	}

	sort.SliceStable(panel, func(i, j int) bool {
		if !panel[i].OpenTime.Equal(panel[j].OpenTime) {
			return panel[i].OpenTime.Before(panel[j].OpenTime)
		}
		return panel[i].Symbol < panel[j].Symbol
	})

	if err := pricedata.WriteKlinesToCSV(panel, *out); err != nil {
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved price panel", map[string]interface{}{"filename": *out, "rows": len(panel)})
}
