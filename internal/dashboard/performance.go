package dashboard

import (
	"sort"

	"capig-dash-go/internal/aggregator"
	"capig-dash-go/internal/coerce"
	"capig-dash-go/internal/entity"
	"capig-dash-go/internal/table"
	"capig-dash-go/internal/types"
)

const million = 1e6

// companyYear is the total sold by one company in one year, with the
// attributes the performance tables slice by.
type companyYear struct {
	Year      string
	Key       string
	RUC       string
	Name      string
	Size      string
	Sector    string
	Status    string
	Employees int
	Amount    float64
}

// quarterSale is one dated live sale.
type quarterSale struct {
	companyYear
	Quarter string
}

type attributes struct {
	sector    map[string]string
	status    map[string]string
	employees map[string]int
}

// BuildPerformance builds the yearly sales performance tables: totals by
// size and status, sectors, payment status shares, quarters and the top
// companies of each year.
func BuildPerformance(c *Context) ([]*types.Sheet, error) {
	base, err := c.Table(BaseSheets...)
	if err != nil {
		return nil, err
	}
	live, err := c.Table(SalesSheets...)
	if err != nil {
		return nil, err
	}
	status, err := c.Table(StatusSheets...)
	if err != nil {
		return nil, err
	}
	sectors, err := c.Table(SectorSheets...)
	if err != nil {
		return nil, err
	}

	dir := c.Directory()
	dir.AddTable(base)
	dir.AddTable(live)
	attrs := lookups(c, dir, base, status, sectors)

	facts := salesFacts(c, dir, base, live)
	years, quarters := companyYears(facts, attrs)

	sheets := []*types.Sheet{
		perfSummary(years),
		perfSector(years),
		perfStatus(years),
		perfQuarter(quarters),
		perfTop(years, c.TopN),
	}
	sheets = append(sheets, aggregator.Merge(OutPerfMaster, sheets...))
	c.finish(dir, sheets)
	return sheets, nil
}

// lookups reads the sector sheet, the status sheet and the roster head
// counts, all keyed by entity. The status sheet overrides the roster status
// when it says something definite.
func lookups(c *Context, dir *entity.Directory, base, status, sectors table.Table) attributes {
	f := c.Fields
	a := attributes{sector: map[string]string{}, status: map[string]string{}, employees: map[string]int{}}

	for _, row := range sectors.Rows {
		p := dir.Known(sectors.Value(row, f.RUC), sectors.Value(row, f.Name), row, sectors.Columns)
		s := sectors.Value(row, f.Sector)
		if p == nil || s == "" {
			continue
		}
		if _, ok := a.sector[p.Key]; !ok {
			a.sector[p.Key] = coerce.Sector(s)
		}
	}

	for _, row := range status.Rows {
		p := dir.Known(status.Value(row, f.RUC), status.Value(row, f.Name), row, status.Columns)
		if p == nil {
			continue
		}
		if s := coerce.Status(status.Value(row, f.Status)); s != coerce.StatusUnknown {
			a.status[p.Key] = s
		}
	}

	for _, row := range base.Rows {
		n := int(coerce.Amount(base.Value(row, f.Employees)))
		if n <= 0 {
			continue
		}
		p := dir.Known(base.Value(row, f.RUC), base.Value(row, f.Name), row, base.Columns)
		if p == nil {
			continue
		}
		if _, ok := a.employees[p.Key]; !ok {
			a.employees[p.Key] = n
		}
	}
	return a
}

// companyYears folds sales facts into one record per (company, year) and
// lists the dated live sales by quarter.
func companyYears(facts []sale, a attributes) ([]companyYear, []quarterSale) {
	byKey := map[string]*companyYear{}
	var order []string
	var quarters []quarterSale
	for _, s := range facts {
		p := s.Profile
		k := p.Key + "|" + s.Year
		cy, ok := byKey[k]
		if !ok {
			cy = &companyYear{
				Year:      s.Year,
				Key:       p.Key,
				RUC:       p.RUC,
				Name:      p.Name,
				Size:      sizeOr(p.Size),
				Sector:    sectorOr(firstOf(a.sector[p.Key], p.Sector)),
				Status:    firstOf(a.status[p.Key], known(p.Status), coerce.StatusUnknown),
				Employees: a.employees[p.Key],
			}
			if cy.RUC == "" {
				cy.RUC = p.Key
			}
			byKey[k] = cy
			order = append(order, k)
		}
		cy.Amount += s.Amount
		if !s.Date.IsZero() {
			q := quarterSale{companyYear: *cy, Quarter: coerce.Quarter(s.Date)}
			q.Amount = s.Amount
			quarters = append(quarters, q)
		}
	}
	out := make([]companyYear, 0, len(order))
	for _, k := range order {
		if byKey[k].Amount > 0 {
			out = append(out, *byKey[k])
		}
	}
	return out, quarters
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func known(status string) string {
	if status == coerce.StatusUnknown {
		return ""
	}
	return status
}

var (
	cyYear   = aggregator.Dimension[companyYear]{Name: "ANIO", Value: func(r companyYear) string { return r.Year }}
	cySize   = aggregator.Dimension[companyYear]{Name: "TAMANO", Value: func(r companyYear) string { return r.Size }}
	cyStatus = aggregator.Dimension[companyYear]{Name: "ESTADO", Value: func(r companyYear) string { return r.Status }}
	cySector = aggregator.Dimension[companyYear]{Name: "SECTOR", Value: func(r companyYear) string { return r.Sector }}

	cyAmount    = aggregator.Measure[companyYear]{Name: "VENTAS", Kind: aggregator.Sum, Value: func(r companyYear) float64 { return r.Amount }}
	cyCompanies = aggregator.Measure[companyYear]{Name: "EMPRESAS", Kind: aggregator.Distinct, Key: func(r companyYear) string { return r.Key }}
	cyEmployees = aggregator.Measure[companyYear]{Name: "COLABORADORES", Kind: aggregator.Sum, Value: func(r companyYear) float64 { return float64(r.Employees) }}
)

func perfSummary(recs []companyYear) *types.Sheet {
	rows := aggregator.Build(recs, aggregator.Spec[companyYear]{
		Dimensions: []aggregator.Dimension[companyYear]{cyYear, cySize, cyStatus},
		Measures:   []aggregator.Measure[companyYear]{cyAmount, cyCompanies, cyEmployees},
		Less:       aggregator.Order(aggregator.Year(0), aggregator.Size(1), aggregator.Text(2)),
	})
	out := types.NewSheet(OutPerfSummary, "ANIO", "TAMANO", "ESTADO", "VENTAS_TOTALES", "VENTAS_TOTALES_M", "EMPRESAS", "COLABORADORES").
		Format(types.FormatMoney, "VENTAS_TOTALES").
		Format(types.FormatMillions, "VENTAS_TOTALES_M")
	for _, r := range rows {
		out.Append(yearCell(r.Dim(0)), r.Dim(1), r.Dim(2), r.Value(0), r.Value(0)/million, r.Int(1), r.Int(2))
	}
	return out
}

// perfSector orders sectors by amount within each year.
func perfSector(recs []companyYear) *types.Sheet {
	rows := aggregator.Build(recs, aggregator.Spec[companyYear]{
		Dimensions: []aggregator.Dimension[companyYear]{cyYear, cySize, cyStatus, cySector},
		Measures:   []aggregator.Measure[companyYear]{cyAmount, cyCompanies},
		Less: func(a, b aggregator.Row) bool {
			if d := aggregator.CompareYears(a.Dim(0), b.Dim(0)); d != 0 {
				return d < 0
			}
			if a.Value(0) != b.Value(0) {
				return a.Value(0) > b.Value(0)
			}
			return aggregator.ByDims(a, b)
		},
	})
	out := types.NewSheet(OutPerfSector, "ANIO", "TAMANO", "ESTADO", "SECTOR", "VENTAS_MONTO", "VENTAS_MONTO_M", "EMPRESAS").
		Format(types.FormatMoney, "VENTAS_MONTO").
		Format(types.FormatMillions, "VENTAS_MONTO_M")
	for _, r := range rows {
		out.Append(yearCell(r.Dim(0)), r.Dim(1), r.Dim(2), r.Dim(3), r.Value(0), r.Value(0)/million, r.Int(1))
	}
	return out
}

// perfStatus is the share of each payment status within a year and size.
func perfStatus(recs []companyYear) *types.Sheet {
	rows := aggregator.Build(recs, aggregator.Spec[companyYear]{
		Dimensions: []aggregator.Dimension[companyYear]{cyYear, cySize, cyStatus},
		Measures:   []aggregator.Measure[companyYear]{cyCompanies},
		Less:       aggregator.Order(aggregator.Year(0), aggregator.Size(1), aggregator.Text(2)),
	})
	totals := aggregator.Build(recs, aggregator.Spec[companyYear]{
		Dimensions: []aggregator.Dimension[companyYear]{cyYear, cySize},
		Measures:   []aggregator.Measure[companyYear]{cyCompanies},
	})
	bySize := map[string]float64{}
	for _, t := range totals {
		bySize[t.Dim(0)+"|"+t.Dim(1)] = t.Value(0)
	}
	out := types.NewSheet(OutPerfStatus, "ANIO", "TAMANO", "ESTADO", "EMPRESAS", "PCT").
		Format(types.FormatPercent, "PCT")
	for _, r := range rows {
		total := bySize[r.Dim(0)+"|"+r.Dim(1)]
		out.Append(yearCell(r.Dim(0)), r.Dim(1), r.Dim(2), r.Int(0), aggregator.Ratio(r.Value(0), total))
	}
	return out
}

func perfQuarter(recs []quarterSale) *types.Sheet {
	rows := aggregator.Build(recs, aggregator.Spec[quarterSale]{
		Dimensions: []aggregator.Dimension[quarterSale]{
			{Name: "ANIO", Value: func(q quarterSale) string { return q.Year }},
			{Name: "TRIMESTRE", Value: func(q quarterSale) string { return q.Quarter }},
			{Name: "TAMANO", Value: func(q quarterSale) string { return q.Size }},
			{Name: "ESTADO", Value: func(q quarterSale) string { return q.Status }},
		},
		Measures: []aggregator.Measure[quarterSale]{
			{Name: "VENTAS", Kind: aggregator.Sum, Value: func(q quarterSale) float64 { return q.Amount }},
			{Name: "EMPRESAS", Kind: aggregator.Distinct, Key: func(q quarterSale) string { return q.Key }},
		},
		Less: aggregator.Order(aggregator.Year(0), aggregator.Desc(aggregator.Text(1)), aggregator.Size(2), aggregator.Text(3)),
	})
	out := types.NewSheet(OutPerfQuarter, "ANIO_TRIMESTRE", "ANIO", "TRIMESTRE", "TAMANO", "ESTADO", "VENTAS_MONTO", "VENTAS_MONTO_M", "EMPRESAS").
		Format(types.FormatMoney, "VENTAS_MONTO").
		Format(types.FormatMillions, "VENTAS_MONTO_M")
	for _, r := range rows {
		out.Append(r.Dim(0)+"-"+r.Dim(1), yearCell(r.Dim(0)), r.Dim(1), r.Dim(2), r.Dim(3), r.Value(0), r.Value(0)/million, r.Int(1))
	}
	return out
}

// perfTop keeps the n best selling companies of each year. Ties go to the
// lower entity key.
func perfTop(recs []companyYear, n int) *types.Sheet {
	years, parts := aggregator.Partition(recs, func(r companyYear) string { return r.Year })
	sort.SliceStable(years, func(i, j int) bool { return aggregator.CompareYears(years[i], years[j]) < 0 })

	out := types.NewSheet(OutPerfTop, "ANIO", "RUC", "RAZON_SOCIAL", "SECTOR", "TAMANO", "ESTADO", "VENTAS_MONTO", "VENTAS_MONTO_M", "RANK").
		Format(types.FormatMoney, "VENTAS_MONTO").
		Format(types.FormatMillions, "VENTAS_MONTO_M")
	for _, y := range years {
		top := aggregator.TopN(parts[y], n,
			func(r companyYear) float64 { return r.Amount },
			func(r companyYear) string { return r.Key })
		for _, t := range top {
			r := t.Item
			out.Append(yearCell(r.Year), r.RUC, r.Name, r.Sector, r.Size, r.Status, r.Amount, r.Amount/million, t.Rank)
		}
	}
	return out
}
