package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copyTradeAnalyzer/internal/analytics"
	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ports"
)

var t0 = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func at(minutes int) time.Time { return t0.Add(time.Duration(minutes) * time.Minute) }

func bars(closes ...float64) []ports.PricePoint {
	out := make([]ports.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = ports.PricePoint{Time: at(15 * i), Price: c}
	}
	return out
}

func order(minute int, qty, price float64) domain.Order {
	tt := domain.OpenLong
	if qty < 0 {
		tt = domain.CloseLong
	}
	return domain.Order{Time: at(minute), Symbol: "ETHUSDT", Type: tt, Quantity: qty, SignedQuantity: qty, Price: price, QuantityKnown: true}
}

func baseInput(orders ...domain.Order) ports.SimulationInput {
	return ports.SimulationInput{
		Label:        "acct_ETHUSDT_unlevered",
		Source:       "acct",
		Symbol:       "ETHUSDT",
		Variant:      domain.VariantUnlevered,
		Close:        bars(100, 102, 105, 104),
		Orders:       orders,
		SizeType:     ports.SizeAmount,
		AutoInitCash: true,
		Leverage:     1,
		LeverageMode: domain.LeverageModeEager,
		Frequency:    15 * time.Minute,
	}
}

func run(t *testing.T, in ports.SimulationInput) *domain.PortfolioSnapshot {
	t.Helper()
	pf, err := NewEngine(&mockLogger{}).FromOrders(context.Background(), in)
	require.NoError(t, err)
	return pf.Snapshot()
}

func TestFromOrders_AutoInitCashRoundTrip(t *testing.T) {
	s := run(t, baseInput(order(5, 2, 100), order(40, -2, 106)))

	assert.Equal(t, 200.0, s.InitCash)
	want := []struct {
		at    time.Time
		value float64
		pos   float64
	}{
		{at(0), 200, 0},
		{at(5), 200, 2},
		{at(15), 204, 2},
		{at(30), 210, 2},
		{at(40), 212, 0},
		{at(45), 212, 0},
	}
	require.Len(t, s.Values, len(want))
	for i, w := range want {
		assert.Equal(t, w.at, s.Values[i].Time, "sample %d", i)
		assert.InDelta(t, w.value, s.Values[i].Value, 1e-9, "sample %d", i)
		assert.Equal(t, w.pos, s.Values[i].Position, "sample %d", i)
	}

	require.Len(t, s.Trades, 1)
	tr := s.Trades[0]
	assert.Equal(t, domain.Long, tr.Direction)
	assert.Equal(t, at(5), tr.EntryTime)
	assert.Equal(t, at(40), tr.ExitTime)
	assert.InDelta(t, 12.0, tr.PNL, 1e-9)
	assert.InDelta(t, 0.06, tr.Return, 1e-9)
}

func TestFromOrders_LeveragedRunUsesScaledCash(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(&mockLogger{})
	unlevered, err := engine.FromOrders(ctx, baseInput(order(5, 2, 100), order(40, -2, 106)))
	require.NoError(t, err)

	in := baseInput(order(5, 2, 100), order(40, -2, 106))
	in.Label = "acct_ETHUSDT"
	in.Variant = domain.VariantLevered
	in.AutoInitCash = false
	in.InitCash = unlevered.InitCash() / 3
	in.Leverage = 3
	levered, err := engine.FromOrders(ctx, in)
	require.NoError(t, err)

	assert.InDelta(t, 200.0/3, levered.InitCash(), 1e-9)

	metrics := analytics.Resolve(ctx, []string{"total_return", "total_trades"}, analytics.Custom(), analytics.Defaults(), nil)
	uStats, err := unlevered.Stats(ctx, metrics)
	require.NoError(t, err)
	lStats, err := levered.Stats(ctx, metrics)
	require.NoError(t, err)

	uRet, _ := uStats.Get("total_return")
	lRet, _ := lStats.Get("total_return")
	assert.InDelta(t, 6.0, uRet.Float, 1e-9)
	assert.InDelta(t, 18.0, lRet.Float, 1e-9)

	// Free cash never goes negative when the leveraged run starts with auto/leverage.
	for _, v := range levered.Snapshot().Values {
		assert.GreaterOrEqual(t, v.Cash, -1e-9)
	}
}

func TestFromOrders_FlipAndPartialClose(t *testing.T) {
	in := baseInput(
		order(1, 1, 100),
		order(16, -3, 110), // closes the long, opens a 2 unit short
		order(31, 1, 100),
		order(44, 1, 105),
	)
	s := run(t, in)

	require.Len(t, s.Trades, 3)
	assert.Equal(t, domain.Long, s.Trades[0].Direction)
	assert.InDelta(t, 10.0, s.Trades[0].PNL, 1e-9)
	assert.Equal(t, at(1), s.Trades[0].EntryTime)

	assert.Equal(t, domain.Short, s.Trades[1].Direction)
	assert.Equal(t, 1.0, s.Trades[1].Size)
	assert.InDelta(t, 10.0, s.Trades[1].PNL, 1e-9)
	assert.Equal(t, at(16), s.Trades[1].EntryTime)

	assert.Equal(t, at(16), s.Trades[2].EntryTime)
	assert.InDelta(t, 5.0, s.Trades[2].PNL, 1e-9)
	assert.InDelta(t, 110.0, s.Trades[2].EntryPrice, 1e-9)

	last := s.Values[len(s.Values)-1]
	assert.Equal(t, 0.0, last.Position)
	assert.InDelta(t, s.InitCash+25, last.Value, 1e-9)
}

func TestFromOrders_OrderBeforeFirstBarMarksAtOrderPrice(t *testing.T) {
	in := baseInput(order(-10, 1, 90), order(20, -1, 101))
	s := run(t, in)

	assert.Equal(t, at(-10), s.Values[0].Time)
	assert.Equal(t, 90.0, s.Values[0].Close)
	assert.InDelta(t, s.InitCash, s.Values[0].Value, 1e-9)
}

func TestFromOrders_Fees(t *testing.T) {
	in := baseInput(order(5, 2, 100), order(40, -2, 106))
	in.Fees = 0.01
	s := run(t, in)

	assert.InDelta(t, 202.0, s.InitCash, 1e-9)
	assert.InDelta(t, 209.88, s.Values[len(s.Values)-1].Value, 1e-9)
	assert.InDelta(t, 9.88, s.Trades[0].PNL, 1e-9)
	assert.InDelta(t, 4.12, analytics.TotalFees(s), 1e-9)
}

func TestFromOrders_LazyLeverageUsesOwnCashFirst(t *testing.T) {
	in := baseInput(order(5, 2, 100), order(40, -2, 106))
	in.AutoInitCash = false
	in.InitCash = 1000
	in.Leverage = 3
	in.LeverageMode = domain.LeverageModeLazy
	s := run(t, in)
	assert.InDelta(t, 800.0, s.Values[1].Cash, 1e-9)

	in.LeverageMode = domain.LeverageModeEager
	s = run(t, in)
	assert.InDelta(t, 1000-200.0/3, s.Values[1].Cash, 1e-9)
}

func TestFromOrders_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ports.SimulationInput)
		wantErr error
	}{
		{"duplicate timestamps", func(in *ports.SimulationInput) {
			in.Orders = []domain.Order{order(5, 1, 100), order(5, -1, 101)}
		}, ports.ErrDuplicateTimestamp},
		{"no orders", func(in *ports.SimulationInput) { in.Orders = nil }, ports.ErrNoOrders},
		{"empty window", func(in *ports.SimulationInput) { in.Close = nil }, ports.ErrEmptyPriceWindow},
		{"leverage below one", func(in *ports.SimulationInput) { in.Leverage = 0.5 }, ports.ErrInvalidRequest},
		{"unknown size type", func(in *ports.SimulationInput) { in.SizeType = "percent" }, ports.ErrInvalidRequest},
		{"explicit zero cash", func(in *ports.SimulationInput) { in.AutoInitCash = false }, ports.ErrInvalidRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := baseInput(order(5, 2, 100), order(40, -2, 106))
			tc.mutate(&in)
			_, err := NewEngine(&mockLogger{}).FromOrders(context.Background(), in)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestFromSnapshotRecomputesStats(t *testing.T) {
	s := run(t, baseInput(order(5, 2, 100), order(40, -2, 106)))
	pf := FromSnapshot(s)

	stats, err := pf.Stats(context.Background(), analytics.CustomMetrics())
	require.NoError(t, err)
	streak, ok := stats.Get("max_winning_streak")
	require.True(t, ok)
	assert.Equal(t, int64(1), streak.Int)
}
