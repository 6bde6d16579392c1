package pricedata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"copyTradeAnalyzer/internal/domain"
)

var panelHeader = []string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"}

// WriteKlinesToCSV writes klines of any number of symbols to filename in long format.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteKlines(file, klines)
}

// WriteKlines writes the panel header followed by one row per kline.
func WriteKlines(w io.Writer, klines []*domain.Kline) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(panelHeader); err != nil {
		return err
	}
	for _, k := range klines {
		err := writer.Write([]string{
			k.OpenTime.UTC().Format(time.RFC3339),
			k.CloseTime.UTC().Format(time.RFC3339),
			k.Symbol,
			k.Interval,
			strconv.FormatFloat(k.Open, 'f', -1, 64),
			strconv.FormatFloat(k.High, 'f', -1, 64),
			strconv.FormatFloat(k.Low, 'f', -1, 64),
			strconv.FormatFloat(k.Close, 'f', -1, 64),
			strconv.FormatFloat(k.Volume, 'f', -1, 64),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadKlinesFromCSV reads a panel file written by WriteKlinesToCSV.
func ReadKlinesFromCSV(filename string) ([]*domain.Kline, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadKlines(file)
}

// ReadKlines parses panel rows. Columns are located by header name so extra columns are ignored.
func ReadKlines(r io.Reader) ([]*domain.Kline, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("price panel is empty")
		}
		return nil, fmt.Errorf("failed to read price panel header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"open_time", "symbol", "close"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("price panel is missing column %q", col)
		}
	}

	get := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	num := func(rec []string, col string, line int) (float64, error) {
		s := get(rec, col)
		if s == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("line %d: parsing %s '%s': %w", line, col, s, err)
		}
		return v, nil
	}

	var klines []*domain.Kline
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		k := &domain.Kline{Symbol: get(rec, "symbol"), Interval: get(rec, "interval")}
		if k.OpenTime, err = time.Parse(time.RFC3339, get(rec, "open_time")); err != nil {
			return nil, fmt.Errorf("line %d: parsing open_time: %w", line, err)
		}
		if s := get(rec, "close_time"); s != "" {
			if k.CloseTime, err = time.Parse(time.RFC3339, s); err != nil {
				return nil, fmt.Errorf("line %d: parsing close_time: %w", line, err)
			}
		}
		if k.Open, err = num(rec, "open", line); err != nil {
			return nil, err
		}
		if k.High, err = num(rec, "high", line); err != nil {
			return nil, err
		}
		if k.Low, err = num(rec, "low", line); err != nil {
			return nil, err
		}
		if k.Close, err = num(rec, "close", line); err != nil {
			return nil, err
		}
		if k.Volume, err = num(rec, "volume", line); err != nil {
			return nil, err
		}
		klines = append(klines, k)
	}
	return klines, nil
}
