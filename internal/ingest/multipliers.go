package ingest

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Multipliers maps an exchange symbol (e.g. "BTC-USDT") to the underlying quantity of one contract.
// Values follow the exchange's published perpetual swap specifications.
type Multipliers map[string]float64

// DefaultMultipliers returns the built-in contract multiplier table.
func DefaultMultipliers() Multipliers {
	return Multipliers{
		"ETH-USDT":    0.1,
		"BTC-USDT":    0.01,
		"PEOPLE-USDT": 100,
		"ORDI-USDT":   0.1,
		"SOL-USDT":    1,
		"DOGE-USDT":   1000,
		"USTC-USDT":   100,
		"BNB-USDT":    0.01,
	}
}

// Lookup returns the multiplier for an exchange symbol.
func (m Multipliers) Lookup(exchangeSymbol string) (float64, bool) {
	v, ok := m[strings.ToUpper(exchangeSymbol)]
	return v, ok
}

// Symbols returns the mapped symbols in sorted order.
func (m Multipliers) Symbols() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// multiplierFile is the YAML layout of MULTIPLIERS_FILE:
//
//	multipliers:
//	  BTC-USDT: 0.01
//	  WIF-USDT: 1
type multiplierFile struct {
	Multipliers map[string]float64 `yaml:"multipliers"`
}

// LoadMultipliers returns the defaults merged with the entries of a YAML file.
// An empty path returns the defaults.
func LoadMultipliers(path string) (Multipliers, error) {
	m := DefaultMultipliers()
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read multipliers file '%s': %w", path, err)
	}
	var f multiplierFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse multipliers file '%s': %w", path, err)
	}
	for sym, v := range f.Multipliers {
		if v <= 0 {
			return nil, fmt.Errorf("multiplier for %s must be positive, got %v", sym, v)
		}
		m[strings.ToUpper(strings.TrimSpace(sym))] = v
	}
	return m, nil
}
