package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, cfg.TrackedSymbols)
	assert.Equal(t, 3.0, cfg.Leverage)
	assert.Equal(t, 15*time.Minute, cfg.BarFrequency)
	assert.Equal(t, "America/Chicago", cfg.SourceTimezone.String())
	assert.False(t, cfg.AbortOnDuplicate)
	assert.Equal(t, "./results/master_stats.csv", cfg.MasterStatsPath())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("TRACKED_SYMBOLS", " solusdt, BTCUSDT ,")
	t.Setenv("LEVERAGE", "5")
	t.Setenv("BAR_FREQUENCY", "1H")
	t.Setenv("SOURCE_TIMEZONE", "UTC")
	t.Setenv("ABORT_ON_DUPLICATE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"SOLUSDT", "BTCUSDT"}, cfg.TrackedSymbols)
	assert.Equal(t, 5.0, cfg.Leverage)
	assert.Equal(t, time.Hour, cfg.BarFrequency)
	assert.Equal(t, time.UTC, cfg.SourceTimezone)
	assert.True(t, cfg.AbortOnDuplicate)
}

func TestLoadConfig_CollectsValidationErrors(t *testing.T) {
	t.Setenv("LEVERAGE", "0.5")
	t.Setenv("BAR_FREQUENCY", "fortnightly")
	t.Setenv("SOURCE_TIMEZONE", "Mars/Olympus")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEVERAGE must be at least 1")
	assert.Contains(t, err.Error(), "invalid BAR_FREQUENCY")
	assert.Contains(t, err.Error(), "invalid SOURCE_TIMEZONE")
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "15T", want: 15 * time.Minute},
		{in: "15min", want: 15 * time.Minute},
		{in: "15m", want: 15 * time.Minute},
		{in: "4h", want: 4 * time.Hour},
		{in: "D", want: 24 * time.Hour},
		{in: "30S", want: 30 * time.Second},
		{in: "0T", wantErr: true},
		{in: "15X", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFrequency(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
