package dashboard

import (
	"sort"
	"strconv"
	"time"

	"capig-dash-go/internal/aggregator"
	"capig-dash-go/internal/coerce"
	"capig-dash-go/internal/entity"
	"capig-dash-go/internal/table"
	"capig-dash-go/internal/types"
)

const (
	sizeTotal      = "TOTAL"
	sizeTotalOrder = 999
)

// sale is one amount sold by one company in one year.
type sale struct {
	Year    string
	Profile *types.Profile
	Amount  float64
	Date    time.Time
	Source  string
}

func saleKey(s sale) string     { return s.Profile.Key }
func saleAmount(s sale) float64 { return s.Amount }
func saleSize(s sale) string    { return sizeOr(s.Profile.Size) }
func saleSector(s sale) string  { return sectorOr(s.Profile.Sector) }
func saleYearDim(s sale) string { return s.Year }

func salesTotal() aggregator.Measure[sale] {
	return aggregator.Measure[sale]{Name: "VENTAS_TOTAL", Kind: aggregator.Sum, Value: saleAmount}
}

func salesCompanies() aggregator.Measure[sale] {
	return aggregator.Measure[sale]{Name: "EMPRESAS", Kind: aggregator.Distinct, Key: saleKey}
}

// salesFacts reads yearly sales from the roster year columns and from the
// live sales sheet. One fact is kept per (company, year, sheet), and a live
// fact for a (company, year) replaces the roster's.
func salesFacts(c *Context, dir *entity.Directory, base, live table.Table) []sale {
	f := c.Fields
	seen := aggregator.Seen{}

	var hist []sale
	years := base.YearColumns()
	for i, row := range base.Rows {
		if table.Blank(row) {
			continue
		}
		p := dir.Find(base.Value(row, f.RUC), base.Value(row, f.Name), row, base.Columns)
		if p == nil {
			c.skip(base, i, "no company identity")
			continue
		}
		for _, yc := range years {
			amt := coerce.Amount(table.Cell(row, yc.Index))
			if amt <= 0 {
				continue
			}
			y := strconv.Itoa(yc.Year)
			if !seen.Add(p.Key, y, base.Name) {
				c.Run.Duplicate()
				continue
			}
			hist = append(hist, sale{Year: y, Profile: p, Amount: amt, Source: base.Name})
		}
	}

	var fresh []sale
	liveYears := aggregator.Seen{}
	for i, row := range live.Rows {
		if table.Blank(row) {
			continue
		}
		p := dir.Find(live.Value(row, f.RUC), live.Value(row, f.Name), row, live.Columns)
		year, date, ok := rowYear(live, row, f)
		amt := coerce.Amount(live.Value(row, f.Sales))
		switch {
		case p == nil:
			c.skip(live, i, "no company identity")
			continue
		case !ok:
			c.skip(live, i, "no year")
			continue
		case amt == 0:
			c.skip(live, i, "no sales amount")
			continue
		}
		y := strconv.Itoa(year)
		if !seen.Add(p.Key, y, live.Name) {
			c.Run.Duplicate()
			continue
		}
		liveYears.Add(p.Key, y)
		fresh = append(fresh, sale{Year: y, Profile: p, Amount: amt, Date: date, Source: live.Name})
	}

	out := make([]sale, 0, len(hist)+len(fresh))
	for _, s := range hist {
		if liveYears.Has(s.Profile.Key, s.Year) {
			c.Run.Duplicate()
			continue
		}
		out = append(out, s)
	}
	return append(out, fresh...)
}

// inferSizes gives every profile still without a size the bucket of its
// total sales.
func inferSizes(facts []sale) {
	totals := map[*types.Profile]float64{}
	var order []*types.Profile
	for _, s := range facts {
		if _, ok := totals[s.Profile]; !ok {
			order = append(order, s.Profile)
		}
		totals[s.Profile] += s.Amount
	}
	for _, p := range order {
		if p.Size == "" {
			p.Size = coerce.SizeFromAmount(totals[p])
		}
	}
}

func sortSales(facts []sale) {
	sort.SliceStable(facts, func(i, j int) bool {
		a, b := facts[i], facts[j]
		if d := aggregator.CompareYears(a.Year, b.Year); d != 0 {
			return d < 0
		}
		if d := aggregator.CompareSizes(saleSize(a), saleSize(b)); d != 0 {
			return d < 0
		}
		if a.Profile.Key != b.Profile.Key {
			return a.Profile.Key < b.Profile.Key
		}
		return a.Source < b.Source
	})
}

// BuildSales builds the sales, size and affiliation tables.
func BuildSales(c *Context) ([]*types.Sheet, error) {
	base, err := c.Table(BaseSheets...)
	if err != nil {
		return nil, err
	}
	reg, err := c.Table(RegistrySheets...)
	if err != nil {
		return nil, err
	}
	live, err := c.Table(SalesSheets...)
	if err != nil {
		return nil, err
	}

	dir := c.Directory()
	dir.AddTable(base)
	dir.AddTable(reg)
	dir.AddTable(live)

	facts := salesFacts(c, dir, base, live)
	inferSizes(facts)
	sortSales(facts)

	detail := types.NewSheet(OutSalesDetail, "ANIO", "TAMANO", "SECTOR", "VENTAS_MONTO", "RUC", "RAZON_SOCIAL", "FUENTE").
		Format(types.FormatMoney, "VENTAS_MONTO")
	for _, s := range facts {
		detail.Append(yearCell(s.Year), saleSize(s), saleSector(s), s.Amount, s.Profile.RUC, s.Profile.Name, s.Source)
	}

	bySize := salesBySize(facts)
	bySector := salesBySector(facts)
	affDetail, affPivot := affiliations(c, dir, base, reg)
	companies := companiesBySize(dir)
	global := sizeGlobal(dir)

	sheets := []*types.Sheet{detail, bySize, bySector, affDetail, affPivot, companies, global}
	sheets = append(sheets, aggregator.Merge(OutSalesMaster, bySize, bySector, affPivot, companies))
	c.finish(dir, sheets)
	return sheets, nil
}

// salesBySize is the sales pivot by year and size, closed by a TOTAL row
// per year.
func salesBySize(facts []sale) *types.Sheet {
	rows := aggregator.Build(facts, aggregator.Spec[sale]{
		Dimensions: []aggregator.Dimension[sale]{{Name: "ANIO", Value: saleYearDim}, {Name: "TAMANO", Value: saleSize}},
		Measures:   []aggregator.Measure[sale]{salesTotal(), salesCompanies()},
		Less:       aggregator.Order(aggregator.Year(0), aggregator.Size(1)),
	})
	years := aggregator.Build(facts, aggregator.Spec[sale]{
		Dimensions: []aggregator.Dimension[sale]{{Name: "ANIO", Value: saleYearDim}},
		Measures:   []aggregator.Measure[sale]{salesTotal(), salesCompanies()},
	})
	totals := map[string]aggregator.Row{}
	for _, r := range years {
		totals[r.Dim(0)] = r
	}

	out := types.NewSheet(OutSalesBySize, "ANIO", "TAMANO", "VENTAS_TOTAL", "EMPRESAS", "ORDEN").
		Format(types.FormatMoney, "VENTAS_TOTAL")
	for i, r := range rows {
		out.Append(yearCell(r.Dim(0)), r.Dim(1), r.Value(0), r.Int(1), coerce.SizeRank(r.Dim(1)))
		if i == len(rows)-1 || rows[i+1].Dim(0) != r.Dim(0) {
			t := totals[r.Dim(0)]
			out.Append(yearCell(r.Dim(0)), sizeTotal, t.Value(0), t.Int(1), sizeTotalOrder)
		}
	}
	return out
}

func salesBySector(facts []sale) *types.Sheet {
	rows := aggregator.Build(facts, aggregator.Spec[sale]{
		Dimensions: []aggregator.Dimension[sale]{{Name: "ANIO", Value: saleYearDim}, {Name: "SECTOR", Value: saleSector}},
		Measures:   []aggregator.Measure[sale]{salesTotal(), salesCompanies()},
		Less:       aggregator.Order(aggregator.Year(0), aggregator.Text(1)),
	})
	out := types.NewSheet(OutSalesBySector, "ANIO", "SECTOR", "VENTAS_TOTAL", "EMPRESAS").
		Format(types.FormatMoney, "VENTAS_TOTAL")
	for _, r := range rows {
		out.Append(yearCell(r.Dim(0)), r.Dim(1), r.Value(0), r.Int(1))
	}
	return out
}

type affiliation struct {
	Year    string
	Profile *types.Profile
	Source  string
}

// affiliations lists the affiliation year of every company once, roster
// first, and counts them per year.
func affiliations(c *Context, dir *entity.Directory, sources ...table.Table) (*types.Sheet, *types.Sheet) {
	f := c.Fields
	seen := aggregator.Seen{}
	var recs []affiliation
	for _, t := range sources {
		for _, row := range t.Rows {
			y, ok := coerce.Year(t.Value(row, f.AffiliationDate))
			if !ok {
				continue
			}
			p := dir.Known(t.Value(row, f.RUC), t.Value(row, f.Name), row, t.Columns)
			if p == nil {
				continue
			}
			if !seen.Add(p.Key) {
				c.Run.Duplicate()
				continue
			}
			recs = append(recs, affiliation{Year: strconv.Itoa(y), Profile: p, Source: t.Name})
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if d := aggregator.CompareYears(recs[i].Year, recs[j].Year); d != 0 {
			return d < 0
		}
		return recs[i].Profile.Key < recs[j].Profile.Key
	})

	detail := types.NewSheet(OutAffiliationsDetail, "ANIO_AFILIACION", "RUC", "RAZON_SOCIAL", "FUENTE")
	for _, a := range recs {
		detail.Append(yearCell(a.Year), a.Profile.RUC, a.Profile.Name, a.Source)
	}

	rows := aggregator.Build(recs, aggregator.Spec[affiliation]{
		Dimensions: []aggregator.Dimension[affiliation]{{Name: "ANIO_AFILIACION", Value: func(a affiliation) string { return a.Year }}},
		Measures:   []aggregator.Measure[affiliation]{{Name: "AFILIACIONES", Kind: aggregator.Count}},
		Less:       aggregator.Order(aggregator.Year(0)),
	})
	pivot := types.NewSheet(OutAffiliations, "ANIO_AFILIACION", "AFILIACIONES")
	for _, r := range rows {
		pivot.Append(yearCell(r.Dim(0)), r.Int(0))
	}
	return detail, pivot
}

// companiesBySize counts known companies per size. Companies without a size
// are left out of the chart table.
func companiesBySize(dir *entity.Directory) *types.Sheet {
	rows := aggregator.Build(dir.Profiles(), aggregator.Spec[types.Profile]{
		Dimensions: []aggregator.Dimension[types.Profile]{{Name: "TAMANO", Value: func(p types.Profile) string { return sizeOr(p.Size) }}},
		Measures:   []aggregator.Measure[types.Profile]{{Name: "EMPRESAS", Kind: aggregator.Count}},
		Filter: func(p types.Profile) bool {
			return !p.Placeholder && p.Size != "" && p.Size != coerce.SizeUnknown
		},
		Less: aggregator.Order(aggregator.Size(0)),
	})
	out := types.NewSheet(OutCompaniesBySize, "TAMANO", "EMPRESAS")
	for _, r := range rows {
		out.Append(r.Dim(0), r.Int(0))
	}
	return out
}

// sizeGlobal is the size of every company that has one, by entity key.
func sizeGlobal(dir *entity.Directory) *types.Sheet {
	out := types.NewSheet(OutSizeGlobal, "RUC", "TAMANO")
	for _, p := range dir.Profiles() {
		if p.Size == "" || p.Placeholder {
			continue
		}
		out.Append(p.Key, p.Size)
	}
	return out
}
