package dashboard

import (
	"fmt"
	"sort"
	"strconv"

	"capig-dash-go/internal/aggregator"
	"capig-dash-go/internal/coerce"
	"capig-dash-go/internal/entity"
	"capig-dash-go/internal/table"
	"capig-dash-go/internal/types"
)

// Years before this carry no sales data and are not classified.
const minSizeYear = 2019

// Source priorities, lowest wins for one (company, year).
const (
	prioRosterYear = iota + 1
	prioRosterDeclared
	prioSales
)

const (
	dirGrowth = "CRECIMIENTO"
	dirShrink = "DECRECIMIENTO"
	dirSame   = "SIN_CAMBIO"
)

// sizeRecord is the size bucket of one company in one year.
type sizeRecord struct {
	Year     int
	Profile  *types.Profile
	Size     string
	Source   string
	priority int
}

// transition is one company moving from one yearly size to the next. The
// newest year of a company also pairs with itself.
type transition struct {
	From, To         int
	FromSize, ToSize string
}

// knownSize accepts only MICRO..GRANDE.
func knownSize(s string) bool {
	r := coerce.SizeRank(s)
	return r >= 1 && r <= 4
}

func sizeOrder(s string) int {
	if knownSize(s) {
		return coerce.SizeRank(s)
	}
	return 99
}

func direction(delta int) string {
	switch {
	case delta > 0:
		return dirGrowth
	case delta < 0:
		return dirShrink
	}
	return dirSame
}

// BuildSizes builds the yearly size table and the size transitions between
// consecutive classified years of each company.
func BuildSizes(c *Context) ([]*types.Sheet, error) {
	base, err := c.Table(BaseSheets...)
	if err != nil {
		return nil, err
	}
	live, err := c.Table(SalesSheets...)
	if err != nil {
		return nil, err
	}

	dir := c.Directory()
	dir.AddTable(base)
	if n := dir.ApplyOverrides(c.Overrides); n > 0 {
		c.Log.WithField("overrides", n).Debug("manual aliases applied")
	}

	b := sizeBuilder{c: c, dir: dir, byKey: map[string]*sizeRecord{}}
	b.roster(base)
	b.sales(live)
	records := b.result()
	trans := transitions(records)

	pivot := sizeTransitions(records, trans)
	sheets := []*types.Sheet{
		sizeDetail(records),
		pivot,
	}
	sheets = append(sheets, sizeLatest(pivot)...)
	sheets = append(sheets, sizeFlows(pivot), sizeMaster(pivot))
	c.finish(dir, sheets)
	return sheets, nil
}

type sizeBuilder struct {
	c     *Context
	dir   *entity.Directory
	byKey map[string]*sizeRecord
	order []string
}

func (b *sizeBuilder) add(r sizeRecord) {
	if r.Year < minSizeYear || !knownSize(r.Size) {
		return
	}
	k := r.Profile.Key + "|" + strconv.Itoa(r.Year)
	cur, ok := b.byKey[k]
	if !ok {
		b.byKey[k] = &r
		b.order = append(b.order, k)
		return
	}
	b.c.Run.Duplicate()
	if r.priority < cur.priority {
		*cur = r
	}
}

// roster reads the per-year size columns of the roster, then the declared
// size in the affiliation year. A year cell holds a size code or an amount.
func (b *sizeBuilder) roster(t table.Table) {
	f := b.c.Fields
	years := t.YearColumns()
	for i, row := range t.Rows {
		if table.Blank(row) {
			continue
		}
		p := b.dir.Known(t.Value(row, f.RUC), t.Value(row, f.Name), row, t.Columns)
		if p == nil {
			b.c.skip(t, i, "no company identity")
			continue
		}
		for _, yc := range years {
			cell := table.Cell(row, yc.Index)
			size := coerce.SizeFromCode(cell)
			if size == "" {
				size = coerce.SizeFromAmount(coerce.Amount(cell))
			}
			b.add(sizeRecord{Year: yc.Year, Profile: p, Size: size, Source: t.Name, priority: prioRosterYear})
		}
		declared := coerce.Size(t.Value(row, f.Size))
		if y, ok := coerce.Year(t.Value(row, f.AffiliationDate)); ok && declared != "" {
			b.add(sizeRecord{Year: y, Profile: p, Size: declared, Source: t.Name, priority: prioRosterDeclared})
		}
	}
}

// sales classifies the sales sheet by declared size, else by amount. The
// year comes from the year field, then the affiliation date, then the first
// filled year column, whose cell is then the amount.
func (b *sizeBuilder) sales(t table.Table) {
	f := b.c.Fields
	years := t.YearColumns()
	for i, row := range t.Rows {
		if table.Blank(row) {
			continue
		}
		p := b.dir.Find(t.Value(row, f.RUC), t.Value(row, f.Name), row, t.Columns)
		if p == nil {
			b.c.skip(t, i, "no company identity")
			continue
		}
		amount := t.Value(row, f.Sales)
		year, ok := coerce.Year(t.Value(row, f.Year))
		if !ok {
			year, ok = coerce.Year(t.Value(row, f.AffiliationDate))
		}
		if !ok {
			for _, yc := range years {
				if cell := table.Cell(row, yc.Index); cell != "" {
					year, ok, amount = yc.Year, true, cell
					break
				}
			}
		}
		if !ok {
			b.c.skip(t, i, "no year")
			continue
		}
		size := coerce.Size(t.Value(row, f.Size))
		if !knownSize(size) {
			size = coerce.SizeFromAmount(coerce.Amount(amount))
		}
		b.add(sizeRecord{Year: year, Profile: p, Size: size, Source: t.Name, priority: prioSales})
	}
}

// result lists the records newest year first, then by size and RUC.
func (b *sizeBuilder) result() []sizeRecord {
	out := make([]sizeRecord, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, *b.byKey[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, c := out[i], out[j]
		if a.Year != c.Year {
			return a.Year > c.Year
		}
		if d := aggregator.CompareSizes(a.Size, c.Size); d != 0 {
			return d < 0
		}
		return a.Profile.Key < c.Profile.Key
	})
	return out
}

func sizeDetail(records []sizeRecord) *types.Sheet {
	out := types.NewSheet(OutSizeDetail, "RUC", "RAZON_SOCIAL", "ANIO", "TAMANO", "FUENTE")
	for _, r := range records {
		out.Append(r.Profile.RUC, r.Profile.Name, r.Year, r.Size, r.Source)
	}
	return out
}

// transitions pairs the consecutive classified years of every company.
func transitions(records []sizeRecord) []transition {
	_, parts := aggregator.Partition(records, func(r sizeRecord) string { return r.Profile.Key })
	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []transition
	for _, k := range keys {
		hist := parts[k]
		sort.SliceStable(hist, func(i, j int) bool { return hist[i].Year < hist[j].Year })
		for i := 0; i+1 < len(hist); i++ {
			a, b := hist[i], hist[i+1]
			out = append(out, transition{From: a.Year, To: b.Year, FromSize: a.Size, ToSize: b.Size})
		}
		last := hist[len(hist)-1]
		out = append(out, transition{From: last.Year, To: last.Year, FromSize: last.Size, ToSize: last.Size})
	}
	return out
}

var (
	trFrom     = aggregator.Dimension[transition]{Name: "ANIO_INICIAL", Value: func(t transition) string { return strconv.Itoa(t.From) }}
	trTo       = aggregator.Dimension[transition]{Name: "ANIO_FINAL", Value: func(t transition) string { return strconv.Itoa(t.To) }}
	trFromSize = aggregator.Dimension[transition]{Name: "TAMANO_INICIAL", Value: func(t transition) string { return t.FromSize }}
	trToSize   = aggregator.Dimension[transition]{Name: "TAMANO_FINAL", Value: func(t transition) string { return t.ToSize }}
	trCount    = aggregator.Measure[transition]{Name: "EMPRESAS", Kind: aggregator.Count}
)

var transitionHeader = []string{
	"ANIO_INICIAL", "ANIO_FINAL", "TAMANO_INICIAL", "TAMANO_FINAL", "ORDEN_INICIAL", "ORDEN_FINAL",
	"EMPRESAS", "PCT_ORIGEN", "DIRECCION", "DELTA",
}

// Column positions within transitionHeader.
const (
	tcFrom = iota
	tcTo
	tcFromSize
	tcToSize
	tcFromOrder
	tcToOrder
	tcCount
	tcPct
	tcDirection
	tcDelta
)

// sizeTransitions counts companies per (from, to, from size, to size).
// PCT_ORIGEN divides by the companies classified in the starting year and
// size.
func sizeTransitions(records []sizeRecord, trans []transition) *types.Sheet {
	origin := map[string]float64{}
	for _, r := range records {
		origin[strconv.Itoa(r.Year)+"|"+r.Size]++
	}
	rows := aggregator.Build(trans, aggregator.Spec[transition]{
		Dimensions: []aggregator.Dimension[transition]{trFrom, trTo, trFromSize, trToSize},
		Measures:   []aggregator.Measure[transition]{trCount},
		Less:       aggregator.Order(aggregator.Year(0), aggregator.Year(1), aggregator.Size(2), aggregator.Size(3)),
	})

	out := types.NewSheet(OutSizeTransitions, transitionHeader...).Format(types.FormatPercent, "PCT_ORIGEN")
	for _, r := range rows {
		from, to := r.Dim(2), r.Dim(3)
		delta := coerce.SizeRank(to) - coerce.SizeRank(from)
		n := r.Int(0)
		out.Append(yearCell(r.Dim(0)), yearCell(r.Dim(1)), from, to, sizeOrder(from), sizeOrder(to),
			n, aggregator.Ratio(float64(n), origin[r.Dim(0)+"|"+from]), direction(delta), delta)
	}
	return out
}

// sizeLatest keeps the transitions between the two newest classified years:
// one-step changes only, then every change with its flow label.
func sizeLatest(pivot *types.Sheet) []*types.Sheet {
	steps := types.NewSheet(OutSizeLatest, transitionHeader...).Format(types.FormatPercent, "PCT_ORIGEN")
	full := types.NewSheet(OutSizeLatestFull, append(append([]string(nil), transitionHeader...), "FLUJO")...).
		Format(types.FormatPercent, "PCT_ORIGEN")

	newest := 0
	for _, row := range pivot.Rows {
		if from, to := row[tcFrom].(int), row[tcTo].(int); from != to && to > newest {
			newest = to
		}
	}
	prev := 0
	for _, row := range pivot.Rows {
		if from, to := row[tcFrom].(int), row[tcTo].(int); to == newest && from != to && from > prev {
			prev = from
		}
	}
	if newest == 0 {
		return []*types.Sheet{steps, full}
	}
	for _, row := range pivot.Rows {
		if row[tcFrom].(int) != prev || row[tcTo].(int) != newest {
			continue
		}
		if d := row[tcDelta].(int); d == 1 || d == -1 {
			steps.Append(row...)
		}
		full.Append(append(append([]any(nil), row...), flow(row))...)
	}
	return []*types.Sheet{steps, full}
}

func flow(row []any) string {
	return fmt.Sprintf("%s -> %s", row[tcFromSize], row[tcToSize])
}

func flowLabel(row []any) string {
	return fmt.Sprintf("%d (%.2f%%)", row[tcCount], row[tcPct].(float64)*100)
}

// sizeFlows is the flat view by starting year and direction.
func sizeFlows(pivot *types.Sheet) *types.Sheet {
	rows := append([][]any(nil), pivot.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a[tcFrom] != b[tcFrom] {
			return a[tcFrom].(int) > b[tcFrom].(int)
		}
		if a[tcDirection] != b[tcDirection] {
			return a[tcDirection].(string) < b[tcDirection].(string)
		}
		if a[tcFromOrder] != b[tcFromOrder] {
			return a[tcFromOrder].(int) < b[tcFromOrder].(int)
		}
		if a[tcToOrder] != b[tcToOrder] {
			return a[tcToOrder].(int) < b[tcToOrder].(int)
		}
		return flow(a) < flow(b)
	})

	out := types.NewSheet(OutSizeFlows,
		"ANIO_INICIAL", "TRANSICION", "TAMANO_INICIAL", "TAMANO_FINAL", "ORDEN_INICIAL", "ORDEN_FINAL",
		"EMPRESAS", "PCT_ORIGEN", "DIRECCION", "DELTA", "ETIQUETA_FINAL").
		Format(types.FormatPercent, "PCT_ORIGEN")
	for _, r := range rows {
		out.Append(r[tcFrom], flow(r), r[tcFromSize], r[tcToSize], r[tcFromOrder], r[tcToOrder],
			r[tcCount], r[tcPct], r[tcDirection], r[tcDelta], flowLabel(r))
	}
	return out
}

// sizeMaster carries both years so one slicer can filter each end.
func sizeMaster(pivot *types.Sheet) *types.Sheet {
	rows := append([][]any(nil), pivot.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a[tcTo] != b[tcTo] {
			return a[tcTo].(int) > b[tcTo].(int)
		}
		if a[tcFrom] != b[tcFrom] {
			return a[tcFrom].(int) > b[tcFrom].(int)
		}
		if a[tcDirection] != b[tcDirection] {
			return a[tcDirection].(string) < b[tcDirection].(string)
		}
		if a[tcToOrder] != b[tcToOrder] {
			return a[tcToOrder].(int) < b[tcToOrder].(int)
		}
		return a[tcFromOrder].(int) < b[tcFromOrder].(int)
	})

	out := types.NewSheet(OutSizeMaster,
		"ANIO_INICIAL", "ANIO_FINAL", "TRANSICION", "TAMANO_INICIAL", "TAMANO_FINAL", "ORDEN_INICIAL",
		"ORDEN_FINAL", "EMPRESAS", "PCT_ORIGEN", "DIRECCION", "DELTA", "ETIQUETA_FINAL").
		Format(types.FormatPercent, "PCT_ORIGEN")
	for _, r := range rows {
		out.Append(r[tcFrom], r[tcTo], flow(r), r[tcFromSize], r[tcToSize], r[tcFromOrder], r[tcToOrder],
			r[tcCount], r[tcPct], r[tcDirection], r[tcDelta], flowLabel(r))
	}
	return out
}
