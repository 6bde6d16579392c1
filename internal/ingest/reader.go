package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"copyTradeAnalyzer/internal/ports"
)

// Column names of the copy-trading export.
const (
	ColTitle      = "title"
	ColLeverage   = "leverage"
	ColEntryPrice = "entry_price"
	ColClosedDate = "closed_date"
	ColOpenDate   = "open_date"
	ColPNL        = "pnl"
	ColPNLPercent = "pnl_percent"
	ColFillPrice  = "fill_price"
	ColClosed     = "closed"
	ColDirection  = "direction"
)

// RequiredColumns must all be present in a trade file header.
var RequiredColumns = []string{
	ColTitle, ColLeverage, ColEntryPrice, ColClosedDate, ColOpenDate,
	ColPNL, ColPNLPercent, ColFillPrice, ColClosed, ColDirection,
}

// openMarker marks a position that has not been closed yet.
const openMarker = "--"

// RawRow is one data row keyed by column name.
type RawRow map[string]string

// SourceName returns the file name up to its first dot, used to label results.
func SourceName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

// ReadRows reads a trade export. UTF-8 and UTF-16 (with BOM) encodings are accepted.
// The unnamed index column written by spreadsheet exports is dropped.
func ReadRows(r io.Reader) ([]RawRow, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if isIndexColumn(name) {
			continue
		}
		cols[i] = name
		present[name] = true
	}
	for _, c := range RequiredColumns {
		if !present[c] {
			return nil, fmt.Errorf("column %q: %w", c, ports.ErrMissingColumn)
		}
	}

	var rows []RawRow
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}
		if isBlank(rec) {
			continue
		}
		row := make(RawRow, len(present))
		for i, v := range rec {
			if i < len(cols) && cols[i] != "" {
				row[cols[i]] = strings.TrimSpace(v)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadFile opens path and reads its rows.
func ReadFile(path string) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// ListTradeFiles returns the .csv files in dir sorted by name.
func ListTradeFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	// os.ReadDir already returns entries sorted by filename.
	return files, nil
}

func isIndexColumn(name string) bool {
	return name == "" || strings.HasPrefix(name, "Unnamed:")
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
