package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"copyTradeAnalyzer/internal/domain"
	"copyTradeAnalyzer/internal/ports"
)

const (
	indexColumn  = "file_symbol"
	symbolColumn = "Symbol"
)

// Row is one portfolio in the master table.
type Row struct {
	Key    string // <file>_<symbol> or <file>_<symbol>_unlevered
	Symbol string
	Stats  domain.Stats
}

// MasterTable collects stats rows sharing one metric layout.
type MasterTable struct {
	names  []string
	titles []string
	rows   []Row
}

// NewMasterTable creates a table whose columns follow metrics.
func NewMasterTable(metrics []ports.Metric) *MasterTable {
	t := &MasterTable{}
	for _, m := range metrics {
		t.names = append(t.names, m.Name)
		t.titles = append(t.titles, m.Title)
	}
	return t
}

// RowKey builds the index label of a row.
func RowKey(source, symbol string, variant domain.Variant) string {
	key := source + "_" + symbol
	if variant == domain.VariantUnlevered {
		key += "_unlevered"
	}
	return key
}

// Add appends a row. Stats must cover the table's metrics in order.
func (t *MasterTable) Add(key, symbol string, stats domain.Stats) error {
	if len(stats) != len(t.names) {
		return fmt.Errorf("row %s has %d stats, table has %d columns: %w", key, len(stats), len(t.names), ports.ErrInvalidRequest)
	}
	for i, nv := range stats {
		if nv.Name != t.names[i] {
			return fmt.Errorf("row %s column %d is %s, want %s: %w", key, i, nv.Name, t.names[i], ports.ErrInvalidRequest)
		}
	}
	t.rows = append(t.rows, Row{Key: key, Symbol: symbol, Stats: stats})
	return nil
}

// Len returns the number of rows.
func (t *MasterTable) Len() int { return len(t.rows) }

// Rows returns the rows in insertion order.
func (t *MasterTable) Rows() []Row { return t.rows }

// Header returns the CSV header.
func (t *MasterTable) Header() []string {
	header := make([]string, 0, len(t.titles)+2)
	header = append(header, indexColumn)
	header = append(header, t.titles...)
	return append(header, symbolColumn)
}

// Records renders every row as CSV fields.
func (t *MasterTable) Records() [][]string {
	out := make([][]string, 0, len(t.rows))
	for _, r := range t.rows {
		rec := make([]string, 0, len(r.Stats)+2)
		rec = append(rec, r.Key)
		for _, nv := range r.Stats {
			rec = append(rec, nv.Value.String())
		}
		out = append(out, append(rec, r.Symbol))
	}
	return out
}

// WriteCSV writes the header and all rows to w.
func (t *MasterTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// WriteMasterCSV writes the table to path, creating its directory.
func WriteMasterCSV(path string, t *MasterTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := t.WriteCSV(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Sheet is a master CSV read back from disk.
type Sheet struct {
	Header  []string
	Records [][]string
}

// ReadMasterCSV loads a previously written master table.
func ReadMasterCSV(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 || len(records[0]) == 0 || records[0][0] != indexColumn {
		return nil, fmt.Errorf("%s is not a master stats file: %w", path, ports.ErrMissingColumn)
	}
	return &Sheet{Header: records[0], Records: records[1:]}, nil
}

// Column returns the index of title in the header, or -1.
func (s *Sheet) Column(title string) int {
	for i, h := range s.Header {
		if h == title {
			return i
		}
	}
	return -1
}

// Sheet renders the table in the same form ReadMasterCSV returns.
func (t *MasterTable) Sheet() *Sheet {
	return &Sheet{Header: t.Header(), Records: t.Records()}
}
