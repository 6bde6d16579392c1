package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // Embedded zone database for SOURCE_TIMEZONE

	"github.com/joho/godotenv"

	"copyTradeAnalyzer/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Inputs
	TradesDir       string   // Folder with one copy-trading CSV export per account
	PriceDataFile   string   // Multi-symbol price panel CSV
	MultipliersFile string   // Optional YAML overriding the contract multiplier table
	TrackedSymbols  []string // Symbols simulated for every file, e.g. BTCUSDT,ETHUSDT
	SourceTimezone  *time.Location

	// Simulation
	Leverage         float64
	BarFrequency     time.Duration
	Fees             float64
	AbortOnDuplicate bool // Abort the whole run instead of the current file

	// Outputs
	ResultsDir string
	DBPath     string

	// Logging
	LogLevel logger.LogLevel

	// Binance API (public klines only, keys optional)
	APIKey        string
	SecretKey     string
	IsTestnet     bool
	FetchInterval string
	FetchDays     int
}

// MasterStatsPath is where the aggregate CSV is written.
func (c *Config) MasterStatsPath() string {
	return strings.TrimRight(c.ResultsDir, "/") + "/master_stats.csv"
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.TradesDir = getEnv("TRADES_DIR", "./data/copy_trading")
	cfg.PriceDataFile = getEnv("PRICE_DATA_FILE", "./data/price_data.csv")
	cfg.MultipliersFile = getEnv("MULTIPLIERS_FILE", "")
	cfg.ResultsDir = getEnv("RESULTS_DIR", "./results")
	cfg.DBPath = getEnv("DB_PATH", "./results/portfolios.db")
	if cfg.TradesDir == "" || cfg.PriceDataFile == "" || cfg.ResultsDir == "" || cfg.DBPath == "" {
		errs = append(errs, "TRADES_DIR, PRICE_DATA_FILE, RESULTS_DIR and DB_PATH must be set")
	}

	cfg.TrackedSymbols = getEnvAsList("TRACKED_SYMBOLS", []string{"BTCUSDT", "ETHUSDT"})
	if len(cfg.TrackedSymbols) == 0 {
		errs = append(errs, "TRACKED_SYMBOLS must list at least one symbol")
	}

	tz := getEnv("SOURCE_TIMEZONE", "America/Chicago")
	cfg.SourceTimezone, err = time.LoadLocation(tz)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SOURCE_TIMEZONE %q: %v", tz, err))
	}

	cfg.Leverage, err = getEnvAsFloatRequired("LEVERAGE", 3)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LEVERAGE: %v", err))
	} else if cfg.Leverage < 1 {
		errs = append(errs, "LEVERAGE must be at least 1")
	}

	freq := getEnv("BAR_FREQUENCY", "15m")
	cfg.BarFrequency, err = ParseFrequency(freq)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BAR_FREQUENCY: %v", err))
	}

	cfg.Fees, err = getEnvAsFloatRequired("FEES", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FEES: %v", err))
	} else if cfg.Fees < 0 || cfg.Fees >= 1 {
		errs = append(errs, "FEES must be in [0, 1)")
	}

	cfg.AbortOnDuplicate = getEnvAsBool("ABORT_ON_DUPLICATE", false)

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	// Binance
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)
	cfg.FetchInterval = getEnv("FETCH_INTERVAL", "15m")
	cfg.FetchDays = getEnvAsInt("FETCH_DAYS", 90)
	if cfg.FetchDays <= 0 {
		errs = append(errs, "FETCH_DAYS must be positive")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// ParseFrequency accepts Go durations ("15m", "1h") and pandas offset aliases ("15T", "1H", "1D").
func ParseFrequency(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty frequency")
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("frequency %q must be positive", s)
		}
		return d, nil
	}

	units := map[string]time.Duration{
		"S":   time.Second,
		"T":   time.Minute,
		"MIN": time.Minute,
		"H":   time.Hour,
		"D":   24 * time.Hour,
	}
	upper := strings.ToUpper(s)
	i := 0
	for i < len(upper) && upper[i] >= '0' && upper[i] <= '9' {
		i++
	}
	unit, ok := units[upper[i:]]
	if !ok {
		return 0, fmt.Errorf("unsupported frequency %q", s)
	}
	n := 1
	if i > 0 {
		var err error
		n, err = strconv.Atoi(upper[:i])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid frequency multiple in %q", s)
		}
	}
	return time.Duration(n) * unit, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
