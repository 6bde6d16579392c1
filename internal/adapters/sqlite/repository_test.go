package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(Config{
		DBPath: filepath.Join(t.TempDir(), "nested", "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func snapshot(label string, initCash float64) *domain.PortfolioSnapshot {
	t0 := time.Date(2024, 2, 1, 14, 30, 0, 0, time.UTC)
	return &domain.PortfolioSnapshot{
		Label:        label,
		Source:       "alice",
		Symbol:       "BTCUSDT",
		Variant:      domain.VariantLevered,
		InitCash:     initCash,
		Leverage:     3,
		LeverageMode: domain.LeverageModeEager,
		Fees:         0.0005,
		Frequency:    15 * time.Minute,
		Orders: []domain.Order{
			{Time: t0, Symbol: "BTCUSDT", ExchangeSymbol: "BTC-USDT", Type: domain.OpenShort, Quantity: 0.2, SignedQuantity: -0.2, Price: 42000, QuantityKnown: true},
			{Time: t0.Add(time.Hour + time.Millisecond), Symbol: "BTCUSDT", ExchangeSymbol: "BTC-USDT", Type: domain.CloseShort, Quantity: 0.2, SignedQuantity: 0.2, Price: 41000, QuantityKnown: true},
		},
		Values: []domain.ValuePoint{
			{Time: t0, Close: 42000, Cash: 100, Position: -0.2, Value: 2900},
			{Time: t0.Add(time.Hour + time.Millisecond), Close: 41100, Cash: 3100, Position: 0, Value: 3100},
		},
		Trades: []domain.ExitTrade{
			{ID: 0, Symbol: "BTCUSDT", Direction: domain.Short, Size: 0.2, EntryTime: t0, ExitTime: t0.Add(time.Hour + time.Millisecond),
				EntryPrice: 42000, ExitPrice: 41000, Fees: 4.1, PNL: 195.9, Return: 195.9 / 8400},
		},
	}
}

func TestRepository_SaveAndLoad(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	want := snapshot("alice_BTCUSDT", 2900)
	runID, err := repo.SavePortfolio(ctx, want)
	require.NoError(t, err)
	assert.Len(t, runID, 36)

	got, err := repo.LoadPortfolio(ctx, "alice_BTCUSDT")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, got)
}

func TestRepository_SaveReplacesLabel(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	first, err := repo.SavePortfolio(ctx, snapshot("alice_BTCUSDT", 1000))
	require.NoError(t, err)
	second, err := repo.SavePortfolio(ctx, snapshot("alice_BTCUSDT", 2000))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	unlevered := snapshot("alice_BTCUSDT_unlevered", 6000)
	unlevered.Variant = domain.VariantUnlevered
	_, err = repo.SavePortfolio(ctx, unlevered)
	require.NoError(t, err)

	runs, err := repo.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "alice_BTCUSDT", runs[0].Label)
	assert.Equal(t, second, runs[0].RunID)
	assert.Equal(t, 2000.0, runs[0].InitCash)
	assert.Equal(t, domain.VariantUnlevered, runs[1].Variant)

	got, err := repo.LoadPortfolio(ctx, "alice_BTCUSDT")
	require.NoError(t, err)
	assert.Len(t, got.Orders, 2)
	assert.Len(t, got.Trades, 1)
}

func TestRepository_LoadMissing(t *testing.T) {
	repo := setupTestDB(t)
	got, err := repo.LoadPortfolio(context.Background(), "nobody_ETHUSDT")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_SaveRequiresLabel(t *testing.T) {
	repo := setupTestDB(t)
	_, err := repo.SavePortfolio(context.Background(), snapshot("", 1))
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}
