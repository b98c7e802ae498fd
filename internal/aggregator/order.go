package aggregator

import (
	"strconv"

	"capig-dash-go/internal/coerce"
)

// Year labels that are not calendar years.
const (
	YearHistoric = "HISTORICO"
	YearNoDate   = "SIN_FECHA"
)

var yearTail = map[string]int{YearHistoric: 1, YearNoDate: 2}

// CompareYears orders numeric years newest first, then HISTORICO, then
// SIN_FECHA, then any other label alphabetically.
func CompareYears(a, b string) int {
	ya, errA := strconv.Atoi(a)
	yb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return yb - ya
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	ta, tb := yearTail[a], yearTail[b]
	if ta == 0 {
		ta = 3
	}
	if tb == 0 {
		tb = 3
	}
	if ta != tb {
		return ta - tb
	}
	return compareStrings(a, b)
}

// CompareSizes orders by coerce.SizeRank, then alphabetically.
func CompareSizes(a, b string) int {
	if d := coerce.SizeRank(a) - coerce.SizeRank(b); d != 0 {
		return d
	}
	return compareStrings(a, b)
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Column compares rows on one dimension.
type Column struct {
	Dim     int
	Compare func(a, b string) int
}

// Year is a newest-first column on dimension i.
func Year(i int) Column { return Column{Dim: i, Compare: CompareYears} }

// Size is a MICRO..GRANDE column on dimension i.
func Size(i int) Column { return Column{Dim: i, Compare: CompareSizes} }

// Text is an alphabetical column on dimension i.
func Text(i int) Column { return Column{Dim: i, Compare: compareStrings} }

// Order chains columns into a Less function. Rows equal on every column
// fall back to ByDims so output never depends on input order.
func Order(cols ...Column) func(a, b Row) bool {
	return func(a, b Row) bool {
		for _, c := range cols {
			if d := c.Compare(a.Dims[c.Dim], b.Dims[c.Dim]); d != 0 {
				return d < 0
			}
		}
		return ByDims(a, b)
	}
}

// Desc reverses the order of a column.
func Desc(c Column) Column {
	cmp := c.Compare
	return Column{Dim: c.Dim, Compare: func(a, b string) int { return cmp(b, a) }}
}
