package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSymbolAndExchangeSymbol(t *testing.T) {
	tests := []struct {
		title, symbol, exchange string
	}{
		{"BTCUSDT Perpetual", "BTCUSDT", "BTC-USDT"},
		{"ETHUSDT", "ETHUSDT", "ETH-USDT"},
		{"  PEOPLEUSDT Perp ", "PEOPLEUSDT", "PEOPLE-USDT"},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			sym := ExtractSymbol(tt.title)
			assert.Equal(t, tt.symbol, sym)
			assert.Equal(t, tt.exchange, ExchangeSymbol(sym))
		})
	}
}

func TestCleanCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,234.50 USDT", 1234.5, true},
		{"-12.3 USDT", -12.3, true},
		{"+4.5%", 4.5, true},
		{"62000", 62000, true},
		{"--", 0, false},
		{"", 0, false},
		{"abc USDT", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CleanCurrency(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseContracts(t *testing.T) {
	n, err := ParseContracts("1,200 Cont")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), n)

	n, err = ParseContracts("35 Cont")
	require.NoError(t, err)
	assert.Equal(t, int64(35), n)

	_, err = ParseContracts("Cont")
	assert.Error(t, err)
}

func TestParseTimestamp_LocalizesToUTC(t *testing.T) {
	chicago, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	// CST is UTC-6 in January, CDT is UTC-5 in July.
	got, err := ParseTimestamp("2024-01-15 09:30:00", chicago)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 15, 30, 0, 0, time.UTC), got)

	got, err = ParseTimestamp("07/04/2024, 12:00:00", chicago)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 4, 17, 0, 0, 0, time.UTC), got)

	_, err = ParseTimestamp("--", chicago)
	assert.Error(t, err)
}

func TestLoadMultipliers(t *testing.T) {
	m, err := LoadMultipliers("")
	require.NoError(t, err)
	v, ok := m.Lookup("btc-usdt")
	assert.True(t, ok)
	assert.Equal(t, 0.01, v)
	assert.Len(t, m.Symbols(), 8)

	path := t.TempDir() + "/mult.yaml"
	require.NoError(t, writeFile(path, "multipliers:\n  wif-usdt: 1\n  BTC-USDT: 0.001\n"))
	m, err = LoadMultipliers(path)
	require.NoError(t, err)
	v, _ = m.Lookup("WIF-USDT")
	assert.Equal(t, 1.0, v)
	v, _ = m.Lookup("BTC-USDT")
	assert.Equal(t, 0.001, v)

	require.NoError(t, writeFile(path, "multipliers:\n  BTC-USDT: 0\n"))
	_, err = LoadMultipliers(path)
	assert.Error(t, err)

	_, err = LoadMultipliers(t.TempDir() + "/missing.yaml")
	assert.Error(t, err)
}
