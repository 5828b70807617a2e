// Package export renders tabular timesheets into downloadable files.
package export

import "fmt"

// Dataset is an ordered table with an optional title and trailing summary.
type Dataset struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     [][]string
	Summary  []SummaryLine
}

// SummaryLine is a labelled total printed after the table.
type SummaryLine struct {
	Label string
	Value string
}

func (d Dataset) validate() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("dataset requires at least one header")
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(d.Headers))
		}
	}
	return nil
}
