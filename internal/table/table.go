// Package table turns raw sheet grids into a header index plus data rows.
package table

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"capig-dash-go/internal/label"
)

// DefaultIdentity lists the normalized labels that mark a header row.
var DefaultIdentity = []string{"RUC", "RAZON_SOCIAL"}

// ColumnIndex maps a normalized column label to its position in a row.
type ColumnIndex map[string]int

// NewColumnIndex indexes a header row. Empty labels are ignored and the first
// occurrence of a duplicated label wins.
func NewColumnIndex(header []string) ColumnIndex {
	idx := ColumnIndex{}
	for i, h := range header {
		n := label.Normalize(h)
		if n == "" {
			continue
		}
		if _, ok := idx[n]; !ok {
			idx[n] = i
		}
	}
	return idx
}

// Lookup normalizes alias before searching.
func (c ColumnIndex) Lookup(alias string) (int, bool) {
	i, ok := c[label.Normalize(alias)]
	return i, ok
}

// Has reports whether any alias resolves to a column.
func (c ColumnIndex) Has(aliases ...string) bool {
	for _, a := range aliases {
		if _, ok := c.Lookup(a); ok {
			return true
		}
	}
	return false
}

// Table is one sheet after header detection. HeaderRow is -1 for an empty grid.
type Table struct {
	Name      string
	HeaderRow int
	Header    []string
	Columns   ColumnIndex
	Rows      [][]string
}

// Read locates the header row in grid and returns the rows below it.
// A row is the header when it carries one of the identity labels and at least
// two non-empty cells other than "NO". Without such a row the first row
// carrying an identity label is used, then row 0. Read never fails.
func Read(name string, grid [][]string, identity ...string) Table {
	if len(identity) == 0 {
		identity = DefaultIdentity
	}
	t := Table{Name: name, HeaderRow: -1, Columns: ColumnIndex{}}
	if len(grid) == 0 {
		return t
	}
	hdr := DetectHeader(grid, identity)
	t.HeaderRow = hdr
	t.Header = append([]string(nil), grid[hdr]...)
	t.Columns = NewColumnIndex(grid[hdr])
	if hdr+1 < len(grid) {
		t.Rows = grid[hdr+1:]
	}
	return t
}

// DetectHeader returns the index of the header row in grid (0 when grid has
// no recognizable header).
func DetectHeader(grid [][]string, identity []string) int {
	fallback := -1
	for i, row := range grid {
		hasID := false
		filled := 0
		for _, cell := range row {
			n := label.Normalize(cell)
			if n == "" {
				continue
			}
			if n != "NO" {
				filled++
			}
			for _, id := range identity {
				if n == id {
					hasID = true
				}
			}
		}
		if !hasID {
			continue
		}
		if filled >= 2 {
			return i
		}
		if fallback == -1 {
			fallback = i
		}
	}
	if fallback >= 0 {
		return fallback
	}
	return 0
}

// Value returns the first non-empty cell found under aliases, in alias order.
func Value(row []string, cols ColumnIndex, aliases []string) string {
	for _, a := range aliases {
		i, ok := cols.Lookup(a)
		if !ok || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			return v
		}
	}
	return ""
}

// Value resolves aliases against the table's own column index.
func (t Table) Value(row []string, aliases []string) string {
	return Value(row, t.Columns, aliases)
}

// Has reports whether the table carries any of aliases.
func (t Table) Has(aliases ...string) bool { return t.Columns.Has(aliases...) }

// Len is the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Blank reports whether every cell of row is whitespace.
func Blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var (
	plainYear  = regexp.MustCompile(`^(20\d{2})$`)
	prefixYear = regexp.MustCompile(`^T_?(20\d{2})$`)
)

// YearColumn is a per-year value column such as "2023", "T2023" or "T_2023".
type YearColumn struct {
	Year  int
	Index int
	Label string
}

// YearColumns finds year-named columns, ascending by year. A bare "2023"
// column wins over "T2023" for the same year.
func (t Table) YearColumns() []YearColumn {
	byYear := map[int]YearColumn{}
	plain := map[int]bool{}
	for lbl, i := range t.Columns {
		if m := plainYear.FindStringSubmatch(lbl); m != nil {
			y, _ := strconv.Atoi(m[1])
			byYear[y] = YearColumn{Year: y, Index: i, Label: lbl}
			plain[y] = true
			continue
		}
		if m := prefixYear.FindStringSubmatch(lbl); m != nil {
			y, _ := strconv.Atoi(m[1])
			if plain[y] {
				continue
			}
			if prev, ok := byYear[y]; !ok || i < prev.Index {
				byYear[y] = YearColumn{Year: y, Index: i, Label: lbl}
			}
		}
	}
	out := make([]YearColumn, 0, len(byYear))
	for _, yc := range byYear {
		out = append(out, yc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// TaggedYearColumns finds only "T2023" style columns, ascending by year.
// Rosters use them for per-year size codes.
func (t Table) TaggedYearColumns() []YearColumn {
	var out []YearColumn
	seen := map[int]bool{}
	for lbl, i := range t.Columns {
		m := prefixYear.FindStringSubmatch(lbl)
		if m == nil {
			continue
		}
		y, _ := strconv.Atoi(m[1])
		if seen[y] {
			for k := range out {
				if out[k].Year == y && i < out[k].Index {
					out[k] = YearColumn{Year: y, Index: i, Label: lbl}
				}
			}
			continue
		}
		seen[y] = true
		out = append(out, YearColumn{Year: y, Index: i, Label: lbl})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Cell returns row[i] trimmed, or "" when i is out of range.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
