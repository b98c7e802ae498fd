package aggregator

import (
	"fmt"
	"strings"

	"capig-dash-go/internal/types"
)

// SourceColumn tags every slicer-master row with the sheet it came from.
const SourceColumn = "SOURCE_SHEET"

// Merge unions sheets into one wide slicer master. The header is
// SOURCE_SHEET followed by every input column in first-seen order; unnamed
// input columns become COL_n. Blank rows are dropped and columns a sheet
// lacks stay empty.
func Merge(name string, sheets ...*types.Sheet) *types.Sheet {
	header := []string{SourceColumn}
	pos := map[string]int{SourceColumn: 0}
	names := make([][]string, len(sheets))
	for si, s := range sheets {
		names[si] = make([]string, len(s.Header))
		for i, h := range s.Header {
			h = strings.TrimSpace(h)
			if h == "" {
				h = fmt.Sprintf("COL_%d", i+1)
			}
			names[si][i] = h
			if _, ok := pos[h]; !ok {
				pos[h] = len(header)
				header = append(header, h)
			}
		}
	}

	out := types.NewSheet(name, header...)
	for si, s := range sheets {
		for c, f := range s.Formats {
			if _, ok := out.Formats[c]; !ok {
				out.Formats[c] = f
			}
		}
		for _, row := range s.Rows {
			if blankRow(row) {
				continue
			}
			merged := make([]any, len(header))
			for i := range merged {
				merged[i] = ""
			}
			merged[0] = s.Name
			for i, v := range row {
				if i < len(names[si]) {
					merged[pos[names[si][i]]] = v
				}
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}

func blankRow(row []any) bool {
	for _, v := range row {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return false
	}
	return true
}
