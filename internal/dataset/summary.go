package dataset

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"capig-dash-go/internal/table"
)

type SheetSummary struct {
	Name      string   `json:"name"`
	Rows      int      `json:"rows"`
	HeaderRow int      `json:"header_row"`
	Columns   []string `json:"columns"`
	Years     []int    `json:"year_columns,omitempty"`
}

// Summarize runs header detection over every sheet of src. Header rows are
// reported 1-based as a spreadsheet user would count them.
func Summarize(src Source, log *logrus.Entry) ([]SheetSummary, error) {
	var out []SheetSummary
	for _, name := range src.Sheets() {
		grid, _, err := src.Grid(name)
		if err != nil {
			return nil, fmt.Errorf("summarize: %w", err)
		}
		t := table.Read(name, grid)
		s := SheetSummary{Name: name, Rows: t.Len(), HeaderRow: t.HeaderRow + 1, Columns: []string{}}
		for _, h := range t.Header {
			if h != "" {
				s.Columns = append(s.Columns, h)
			}
		}
		for _, yc := range t.YearColumns() {
			s.Years = append(s.Years, yc.Year)
		}
		out = append(out, s)
	}
	if log != nil {
		log.WithFields(logrus.Fields{
			"sheets": len(out),
		}).Info("workbook summarization complete")
	}
	return out, nil
}
