package report

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// SummaryColumns are the titles shown in the console summary.
var SummaryColumns = []string{
	"Total Return [%]",
	"Max Drawdown [%]",
	"Win Rate [%]",
	"Total Trades",
	"Max Winning Streak",
	"Max Losing Streak",
	"Capital Weighted Time Exposure [%]",
	"Sharpe Ratio",
}

// PrintSummary renders the chosen columns of a sheet as a console table.
// Columns missing from the sheet are left out.
func PrintSummary(w io.Writer, s *Sheet, columns []string) {
	idx := []int{0}
	heads := []string{s.Header[0]}
	for _, c := range columns {
		if i := s.Column(c); i >= 0 {
			idx = append(idx, i)
			heads = append(heads, c)
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(heads)
	table.SetAutoFormatHeaders(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, rec := range s.Records {
		row := make([]string, len(idx))
		for j, i := range idx {
			if i < len(rec) {
				row[j] = shorten(rec[i])
			}
		}
		table.Append(row)
	}
	table.Render()
}

// shorten rounds long float renderings to two decimals.
func shorten(cell string) string {
	if len(cell) <= 8 {
		return cell
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return cell
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// PrintTable renders a plain header/rows table.
func PrintTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.AppendBulk(rows)
	table.Render()
}
