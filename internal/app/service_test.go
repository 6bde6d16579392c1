package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copyTradeAnalyzer/config"
	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ingest"
	"copyTradeAnalyzer/internal/ports"
	"copyTradeAnalyzer/internal/pricedata"
	"copyTradeAnalyzer/internal/simulation"
)

const tradeHeader = ",title,leverage,entry_price,closed_date,open_date,pnl,pnl_percent,fill_price,closed,direction\n"

// memRepo is an in-memory ports.PortfolioRepository.
type memRepo struct {
	mu   sync.Mutex
	runs map[string]*domain.PortfolioSnapshot
}

func newMemRepo() *memRepo { return &memRepo{runs: make(map[string]*domain.PortfolioSnapshot)} }

func (m *memRepo) SavePortfolio(ctx context.Context, pf *domain.PortfolioSnapshot) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[pf.Label] = pf
	return "run-" + pf.Label, nil
}

func (m *memRepo) LoadPortfolio(ctx context.Context, label string) (*domain.PortfolioSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[label], nil
}

func (m *memRepo) ListRuns(ctx context.Context) ([]ports.RunInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.RunInfo, 0, len(m.runs))
	for label, pf := range m.runs {
		out = append(out, ports.RunInfo{Label: label, InitCash: pf.InitCash, Variant: pf.Variant})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

type fixture struct {
	cfg    *config.Config
	logger *mockLogger
	repo   *memRepo
}

func writePanel(t *testing.T, path string) {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var klines []*domain.Kline
	for i := 0; i <= 96; i++ {
		open := start.Add(time.Duration(i) * 15 * time.Minute)
		for _, k := range []struct {
			symbol string
			close  float64
		}{{"BTCUSDT", 62000 + float64(i)*10}, {"ETHUSDT", 3000 - float64(i)}} {
			klines = append(klines, &domain.Kline{
				OpenTime: open, CloseTime: open.Add(15*time.Minute - time.Millisecond),
				Symbol: k.symbol, Interval: "15m",
				Open: k.close, High: k.close, Low: k.close, Close: k.close, Volume: 1,
			})
		}
	}
	require.NoError(t, pricedata.WriteKlinesToCSV(klines, path))
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	dir := t.TempDir()
	tradesDir := filepath.Join(dir, "trades")
	require.NoError(t, os.MkdirAll(tradesDir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tradesDir, name), []byte(content), 0o644))
	}
	panelPath := filepath.Join(dir, "price_data.csv")
	writePanel(t, panelPath)

	return &fixture{
		cfg: &config.Config{
			TradesDir:      tradesDir,
			PriceDataFile:  panelPath,
			TrackedSymbols: []string{"BTCUSDT", "ETHUSDT"},
			SourceTimezone: time.UTC,
			Leverage:       3,
			BarFrequency:   15 * time.Minute,
			ResultsDir:     filepath.Join(dir, "results"),
		},
		logger: &mockLogger{},
		repo:   newMemRepo(),
	}
}

func (f *fixture) service(t *testing.T) *AnalysisService {
	t.Helper()
	loader, err := ingest.New(ingest.Config{SourceTimezone: f.cfg.SourceTimezone, Logger: f.logger})
	require.NoError(t, err)
	panel, err := pricedata.Load(f.cfg.PriceDataFile)
	require.NoError(t, err)
	svc, err := NewAnalysisService(f.cfg, f.logger, loader, panel, simulation.NewEngine(f.logger), f.repo)
	require.NoError(t, err)
	return svc
}

func row(idx int, title, leverage, entry, closed, opened, fill, contracts string) string {
	return fmt.Sprintf("%d,%s,%s,\"%s\",%s,%s,\"1 USDT\",1%%,\"%s\",\"%s\",Buy\n", idx, title, leverage, entry, closed, opened, fill, contracts)
}

func sampleFiles() map[string]string {
	return map[string]string{
		"acct_a.csv": tradeHeader +
			row(0, "BTCUSDT Perpetual", "Long 10x", "62,000 USDT", "2024-03-01 10:00:00", "2024-03-01 09:00:00", "63,000 USDT", "100 Cont") +
			row(1, "ETHUSDT Perpetual", "Short 5x", "3,000 USDT", "2024-03-01 12:00:00", "2024-03-01 11:30:00", "2,990 USDT", "10 Cont"),
		"acct_b.csv": tradeHeader +
			row(0, "BTCUSDT Perpetual", "Short 3x", "62,500 USDT", "2024-03-01 18:00:00", "2024-03-01 14:00:00", "62,100 USDT", "50 Cont") +
			row(1, "WIFUSDT Perpetual", "Long 3x", "3 USDT", "2024-03-01 18:00:00", "2024-03-01 14:00:00", "3.1 USDT", "5 Cont"),
		"empty.csv": tradeHeader,
	}
}

func TestAnalysisService_Run(t *testing.T) {
	f := newFixture(t, sampleFiles())
	table, err := f.service(t).Run(context.Background())
	require.NoError(t, err)

	// Two rows per (file, symbol) pair with data: acct_a has two symbols, acct_b one.
	require.Equal(t, 6, table.Len())
	var keys []string
	for _, r := range table.Rows() {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{
		"acct_a_BTCUSDT", "acct_a_BTCUSDT_unlevered",
		"acct_a_ETHUSDT", "acct_a_ETHUSDT_unlevered",
		"acct_b_BTCUSDT", "acct_b_BTCUSDT_unlevered",
	}, keys)

	header := table.Header()
	assert.Equal(t, "file_symbol", header[0])
	assert.Equal(t, "Symbol", header[len(header)-1])
	assert.Len(t, header, len(f.service(t).Metrics())+2)

	levered := f.repo.runs["acct_a_BTCUSDT"]
	unlevered := f.repo.runs["acct_a_BTCUSDT_unlevered"]
	require.NotNil(t, levered)
	require.NotNil(t, unlevered)
	assert.InDelta(t, unlevered.InitCash/3, levered.InitCash, 1e-9)
	assert.Equal(t, 3.0, levered.Leverage)
	assert.Equal(t, 62000.0, unlevered.InitCash)
	assert.Len(t, f.repo.runs, 6)

	lRet, _ := table.Rows()[0].Stats.Get("total_return")
	uRet, _ := table.Rows()[1].Stats.Get("total_return")
	assert.InDelta(t, 3*uRet.Float, lRet.Float, 1e-6)

	_, err = os.Stat(f.cfg.MasterStatsPath())
	assert.NoError(t, err)
	assert.Positive(t, f.logger.count("info"))
}

func TestAnalysisService_RerunIsIdentical(t *testing.T) {
	f := newFixture(t, sampleFiles())

	_, err := f.service(t).Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(f.cfg.MasterStatsPath())
	require.NoError(t, err)

	_, err = f.service(t).Run(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(f.cfg.MasterStatsPath())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func duplicateFiles() map[string]string {
	files := sampleFiles()
	// The second open shifts by 1ms onto the third.
	files["dup.csv"] = tradeHeader +
		row(0, "BTCUSDT Perpetual", "Long 10x", "62,000 USDT", "2024-03-01 10:00:00", "2024-03-01 09:00:00", "63,000 USDT", "10 Cont") +
		row(1, "BTCUSDT Perpetual", "Long 10x", "62,000 USDT", "2024-03-01 11:00:00", "2024-03-01 09:00:00", "63,000 USDT", "10 Cont") +
		row(2, "BTCUSDT Perpetual", "Long 10x", "62,000 USDT", "2024-03-01 12:00:00", "2024-03-01 09:00:00.001", "63,000 USDT", "10 Cont")
	return files
}

func TestAnalysisService_DuplicateAbortsFile(t *testing.T) {
	f := newFixture(t, duplicateFiles())
	table, err := f.service(t).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, table.Len())
	assert.Equal(t, 1, f.logger.count("error"))
	_, saved := f.repo.runs["dup_BTCUSDT"]
	assert.False(t, saved)
}

func TestAnalysisService_DuplicateAbortsRun(t *testing.T) {
	f := newFixture(t, duplicateFiles())
	f.cfg.AbortOnDuplicate = true

	_, err := f.service(t).Run(context.Background())
	assert.ErrorIs(t, err, ports.ErrDuplicateTimestamp)
}

func TestAnalysisService_SymbolOutsidePanelIsSkipped(t *testing.T) {
	f := newFixture(t, map[string]string{
		"late.csv": tradeHeader +
			row(0, "ETHUSDT Perpetual", "Long 2x", "3,000 USDT", "2024-05-01 10:00:00", "2024-05-01 09:00:00", "3,010 USDT", "10 Cont"),
	})
	table, err := f.service(t).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, table.Len())
	assert.Equal(t, 1, f.logger.count("warn"))
}

func TestAnalysisService_Canceled(t *testing.T) {
	f := newFixture(t, sampleFiles())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service(t).Run(ctx)
	assert.ErrorIs(t, err, ports.ErrContextCanceled)
}

func TestNewAnalysisService_MissingDependencies(t *testing.T) {
	_, err := NewAnalysisService(&config.Config{Leverage: 3, BarFrequency: time.Minute}, &mockLogger{}, nil, nil, nil, nil)
	assert.Error(t, err)
}
