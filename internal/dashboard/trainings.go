package dashboard

import (
	"sort"
	"strconv"

	"capig-dash-go/internal/aggregator"
	"capig-dash-go/internal/coerce"
	"capig-dash-go/internal/entity"
	"capig-dash-go/internal/label"
	"capig-dash-go/internal/table"
	"capig-dash-go/internal/types"
)

const nonMembers = "NO_SOCIOS"

// Source tags of training records.
const (
	SourceHistoric = "HIST"
	SourceLive     = "REGISTRO"
)

// training is one training event, or one historical summary row, of one
// company.
type training struct {
	Year   string
	Key    string
	RUC    string
	Name   string
	Size   string
	Member bool
	Date   string
	Count  float64
	Value  float64
	Source string
}

// BuildTrainings builds the training tables from the historical and the
// live training sheets.
func BuildTrainings(c *Context) ([]*types.Sheet, error) {
	base, err := c.Table(BaseSheets...)
	if err != nil {
		return nil, err
	}
	hist, err := c.Table(TrainingHistSheets...)
	if err != nil {
		return nil, err
	}
	live, err := c.Table(TrainingSheets...)
	if err != nil {
		return nil, err
	}

	dir := c.Directory()
	dir.AddTable(base)

	recs, dups := trainings(c, dir, hist, live)

	sheets := []*types.Sheet{
		trainSummary(recs),
		trainMemberSummary(recs),
		trainTop(recs),
		trainMembers(recs),
		trainMembersBySize(recs),
		trainDetail(recs),
	}
	master := aggregator.Merge(OutTrainMaster, sheets...)
	sheets = append(sheets, trainDuplicates(dups), master)
	c.finish(dir, sheets)
	return sheets, nil
}

// trainings reads both sheets. Undated historical rows fall in the newest
// year of the live sheet, else in the company's affiliation year, else in
// the default historical year. Undated live rows skip the affiliation step.
// Rows repeating (year, company, date, source) are returned apart as
// duplicates.
func trainings(c *Context, dir *entity.Directory, hist, live table.Table) ([]training, []training) {
	f := c.Fields
	ref := maxYear(live, f)

	seen := aggregator.Seen{}
	var recs, dups []training
	keep := func(r training) {
		date := r.Date
		if date == "" {
			date = aggregator.YearNoDate
		}
		if !seen.Add(r.Year, r.Key, date, r.Source) {
			c.Run.Duplicate()
			dups = append(dups, r)
			return
		}
		recs = append(recs, r)
	}

	for i, row := range hist.Rows {
		r, p, ok := trainingRow(c, dir, hist, i)
		if !ok {
			continue
		}
		r.Count = coerce.Amount(hist.Value(row, f.Trainings))
		if r.Count <= 0 {
			r.Count = sumGroups(hist, row, f.QuarterCounts)
		}
		r.Value = coerce.Amount(hist.Value(row, f.Value))
		if r.Value <= 0 {
			r.Value = sumGroups(hist, row, f.QuarterValues)
		}
		if r.Count <= 0 && r.Value <= 0 {
			c.skip(hist, i, "no training count or value")
			continue
		}
		r.Year = yearLabel(firstYear(dateYear(r.Date), ref, p.AffiliationYear, c.HistYear))
		r.Source = SourceHistoric
		keep(r)
	}

	for i, row := range live.Rows {
		r, _, ok := trainingRow(c, dir, live, i)
		if !ok {
			continue
		}
		r.Count = 1
		r.Value = coerce.Amount(live.Value(row, f.Value))
		r.Year = yearLabel(firstYear(dateYear(r.Date), ref, c.HistYear))
		r.Source = SourceLive
		keep(r)
	}
	return recs, dups
}

// trainingRow resolves the company of a training row.
func trainingRow(c *Context, dir *entity.Directory, t table.Table, i int) (training, *types.Profile, bool) {
	f := c.Fields
	row := t.Rows[i]
	if table.Blank(row) {
		return training{}, nil, false
	}
	name := t.Value(row, f.Name)
	p := dir.Find(t.Value(row, f.RUC), name, row, t.Columns)
	if p == nil {
		c.skip(t, i, "no company identity")
		return training{}, nil, false
	}
	r := training{
		Key:    p.Key,
		RUC:    p.RUC,
		Name:   p.Name,
		Size:   sizeOr(p.Size),
		Member: p.RUC != "" && label.Normalize(name) != nonMembers,
		Date:   t.Value(row, f.Date),
	}
	return r, p, true
}

func dateYear(s string) int {
	if d, ok := coerce.Date(s); ok {
		return d.Year()
	}
	return 0
}

// firstYear is the first positive year of years, or 0.
func firstYear(years ...int) int {
	for _, y := range years {
		if y > 0 {
			return y
		}
	}
	return 0
}

func yearLabel(y int) string {
	if y <= 0 {
		return aggregator.YearNoDate
	}
	return strconv.Itoa(y)
}

func sumGroups(t table.Table, row []string, groups [][]string) float64 {
	total := 0.0
	for _, g := range groups {
		total += coerce.Amount(t.Value(row, g))
	}
	return total
}

var (
	trYear   = aggregator.Dimension[training]{Name: "ANIO", Value: func(r training) string { return r.Year }}
	trSize   = aggregator.Dimension[training]{Name: "TAMANO", Value: func(r training) string { return r.Size }}
	trMember = aggregator.Dimension[training]{Name: "ES_SOCIO", Value: func(r training) string { return strconv.FormatBool(r.Member) }}

	trMeasures = []aggregator.Measure[training]{
		{Name: "EMPRESAS", Kind: aggregator.Distinct, Key: func(r training) string { return r.Key }},
		{Name: "CAPACITACIONES", Kind: aggregator.Sum, Value: func(r training) float64 { return r.Count }},
		{Name: "VALOR_TOTAL", Kind: aggregator.Sum, Value: func(r training) float64 { return r.Value }},
	}
)

func isMember(r training) bool { return r.Member }

func trainSummary(recs []training) *types.Sheet {
	rows := aggregator.Build(recs, aggregator.Spec[training]{
		Dimensions: []aggregator.Dimension[training]{trYear, trSize, trMember},
		Measures:   trMeasures,
		Less:       aggregator.Order(aggregator.Year(0), aggregator.Size(1), aggregator.Desc(aggregator.Text(2))),
	})
	out := types.NewSheet(OutTrainSummary, "ANIO", "TAMANO", "ES_SOCIO", "EMPRESAS", "CAPACITACIONES", "VALOR_TOTAL").
		Format(types.FormatMoney, "VALOR_TOTAL")
	for _, r := range rows {
		out.Append(yearCell(r.Dim(0)), r.Dim(1), r.Dim(2) == "true", r.Int(0), r.Value(1), r.Value(2))
	}
	return out
}

func trainMemberSummary(recs []training) *types.Sheet {
	rows := aggregator.Build(recs, aggregator.Spec[training]{
		Dimensions: []aggregator.Dimension[training]{trYear, trSize},
		Measures:   trMeasures,
		Filter:     isMember,
		Less:       aggregator.Order(aggregator.Year(0), aggregator.Size(1)),
	})
	out := types.NewSheet(OutTrainMemberSummary, "ANIO", "TAMANO", "EMPRESAS", "CAPACITACIONES", "VALOR_TOTAL").
		Format(types.FormatMoney, "VALOR_TOTAL")
	for _, r := range rows {
		out.Append(yearCell(r.Dim(0)), r.Dim(1), r.Int(0), r.Value(1), r.Value(2))
	}
	return out
}

func trainMembers(recs []training) *types.Sheet {
	rows := aggregator.Build(recs, aggregator.Spec[training]{
		Dimensions: []aggregator.Dimension[training]{trYear, trMember},
		Measures:   trMeasures,
		Less:       aggregator.Order(aggregator.Year(0), aggregator.Desc(aggregator.Text(1))),
	})
	out := types.NewSheet(OutTrainMembers, "ANIO", "ES_SOCIO", "EMPRESAS", "CAPACITACIONES", "VALOR_TOTAL").
		Format(types.FormatMoney, "VALOR_TOTAL")
	for _, r := range rows {
		out.Append(yearCell(r.Dim(0)), r.Dim(1) == "true", r.Int(0), r.Value(1), r.Value(2))
	}
	return out
}

func trainMembersBySize(recs []training) *types.Sheet {
	rows := aggregator.Build(recs, aggregator.Spec[training]{
		Dimensions: []aggregator.Dimension[training]{trYear, trMember, trSize},
		Measures:   trMeasures,
		Less:       aggregator.Order(aggregator.Year(0), aggregator.Desc(aggregator.Text(1)), aggregator.Size(2)),
	})
	out := types.NewSheet(OutTrainMembersBySize, "ANIO", "ES_SOCIO", "TAMANO", "EMPRESAS", "CAPACITACIONES", "VALOR_TOTAL").
		Format(types.FormatMoney, "VALOR_TOTAL")
	for _, r := range rows {
		out.Append(yearCell(r.Dim(0)), r.Dim(1) == "true", r.Dim(2), r.Int(0), r.Value(1), r.Value(2))
	}
	return out
}

// trainTop ranks every company of a year twice: by number of trainings and
// by amount paid. Equal measures rank by entity key.
func trainTop(recs []training) *types.Sheet {
	perCompany := map[string]*training{}
	var order []string
	for _, r := range recs {
		k := r.Year + "|" + r.Key
		cur, ok := perCompany[k]
		if !ok {
			cp := r
			cp.Count, cp.Value = 0, 0
			cur = &cp
			perCompany[k] = cur
			order = append(order, k)
		}
		cur.Count += r.Count
		cur.Value += r.Value
	}
	totals := make([]training, 0, len(order))
	for _, k := range order {
		totals = append(totals, *perCompany[k])
	}

	years, parts := aggregator.Partition(totals, func(r training) string { return r.Year })
	sort.SliceStable(years, func(i, j int) bool { return aggregator.CompareYears(years[i], years[j]) < 0 })

	out := types.NewSheet(OutTrainTop, "ANIO", "RUC", "RAZON_SOCIAL", "TAMANO", "ES_SOCIO", "CAPACITACIONES", "VALOR_TOTAL", "RANK_CAP", "RANK_VALOR").
		Format(types.FormatMoney, "VALOR_TOTAL")
	key := func(r training) string { return r.Key }
	for _, y := range years {
		byCount := map[string]int{}
		for _, rk := range aggregator.Rank(parts[y], func(r training) float64 { return r.Count }, key) {
			byCount[rk.Item.Key] = rk.Rank
		}
		for _, rk := range aggregator.Rank(parts[y], func(r training) float64 { return r.Value }, key) {
			r := rk.Item
			out.Append(yearCell(r.Year), r.RUC, r.Name, r.Size, r.Member, r.Count, r.Value, byCount[r.Key], rk.Rank)
		}
	}
	return out
}

// trainDetail lists every kept record, newest year first, then by amount.
func trainDetail(recs []training) *types.Sheet {
	sorted := append([]training(nil), recs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if d := aggregator.CompareYears(a.Year, b.Year); d != 0 {
			return d < 0
		}
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		return a.Key < b.Key
	})
	out := types.NewSheet(OutTrainDetail, "ANIO", "KEY", "RUC", "RAZON_SOCIAL", "TAMANO", "ES_SOCIO", "CAPACITACIONES", "VALOR_TOTAL", "FUENTE").
		Format(types.FormatMoney, "VALOR_TOTAL")
	for _, r := range sorted {
		out.Append(yearCell(r.Year), r.Key, r.RUC, r.Name, r.Size, r.Member, r.Count, r.Value, r.Source)
	}
	return out
}

func trainDuplicates(dups []training) *types.Sheet {
	sorted := append([]training(nil), dups...)
	sort.SliceStable(sorted, func(i, j int) bool { return aggregator.CompareYears(sorted[i].Year, sorted[j].Year) < 0 })
	out := types.NewSheet(OutTrainDuplicates, "FUENTE", "ANIO", "KEY", "RUC", "RAZON_SOCIAL", "FECHA", "CAPACITACIONES", "VALOR").
		Format(types.FormatMoney, "VALOR")
	for _, r := range sorted {
		out.Append(r.Source, yearCell(r.Year), r.Key, r.RUC, r.Name, r.Date, r.Count, r.Value)
	}
	return out
}
