package dashboard

import (
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"capig-dash-go/internal/aggregator"
	"capig-dash-go/internal/coerce"
	"capig-dash-go/internal/entity"
	"capig-dash-go/internal/table"
	"capig-dash-go/internal/types"
)

// yearCell writes calendar years as numbers so sheet filters can range over
// them. Labels such as HISTORICO stay text.
func yearCell(y string) any {
	if n, err := strconv.Atoi(y); err == nil {
		return n
	}
	return y
}

func sizeOr(s string) string {
	if s == "" {
		return coerce.SizeUnknown
	}
	return s
}

func sectorOr(s string) string {
	if s == "" {
		return coerce.SectorUnclassified
	}
	return s
}

// rowYear reads the year of a fact row from its year field, then from its
// date field. The date is returned when it parsed.
func rowYear(t table.Table, row []string, f types.Fields) (int, time.Time, bool) {
	date, hasDate := coerce.Date(t.Value(row, f.Date))
	if y, ok := coerce.Year(t.Value(row, f.Year)); ok {
		return y, date, true
	}
	if hasDate {
		return date.Year(), date, true
	}
	return 0, time.Time{}, false
}

// yearsOf lists the distinct year labels of items, newest first.
func yearsOf[T any](items []T, year func(T) string) []string {
	seen := aggregator.Seen{}
	var years []string
	for _, it := range items {
		if y := year(it); seen.Add(y) {
			years = append(years, y)
		}
	}
	sort.SliceStable(years, func(i, j int) bool { return aggregator.CompareYears(years[i], years[j]) < 0 })
	return years
}

// maxYear is the newest year found in the date field of t, or 0.
func maxYear(t table.Table, f types.Fields) int {
	best := 0
	for _, row := range t.Rows {
		if d, ok := coerce.Date(t.Value(row, f.Date)); ok && d.Year() > best {
			best = d.Year()
		}
	}
	return best
}

// skip counts row i of t as skipped and traces it at warning level. The
// logged line is the 1-based sheet row.
func (c *Context) skip(t table.Table, i int, reason string) {
	c.Run.Skip()
	c.Log.WithFields(logrus.Fields{
		"sheet":  t.Name,
		"line":   t.HeaderRow + i + 2,
		"reason": reason,
	}).Warn("source row skipped")
}

// finish copies the directory counters into the run log. dir may be nil.
func (c *Context) finish(dir *entity.Directory, sheets []*types.Sheet) {
	if dir != nil && dir.Placeholders() > 0 {
		c.Run.Unmatched += dir.Placeholders()
		c.Log.WithField("placeholders", dir.Placeholders()).Warn("unmatched companies given placeholder profiles")
	}
	for _, s := range sheets {
		c.Log.WithFields(logrus.Fields{"sheet": s.Name, "rows": len(s.Rows)}).Debug("destination built")
	}
}
