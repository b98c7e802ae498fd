package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"capig-dash-go/internal/aggregator"
	"capig-dash-go/internal/coerce"
	"capig-dash-go/internal/dataset"
	"capig-dash-go/internal/entity"
	"capig-dash-go/internal/table"
	"capig-dash-go/internal/types"
)

const diagLegal = "LEGAL"

// Legal subtypes that belong to the advisory dashboard, not to diagnostics.
var advisorySubtypes = map[string]bool{
	"LABORAL":               true,
	"PROPIEDAD INTELECTUAL": true,
	"SOCIETARIO":            true,
	"CONTACTO":              true,
	"OTROS":                 true,
}

var diagSizes = []string{coerce.SizeMicro, coerce.SizeSmall, coerce.SizeMedium, coerce.SizeLarge, coerce.SizeUnknown}

// diagnostic is the count of one diagnostic type taken by one company in one
// year.
type diagnostic struct {
	Year     string
	Profile  *types.Profile
	Type     string
	Subtypes []string
	Count    float64
}

type diagCount struct {
	Type  string
	Count int
}

// denominators holds, per size, the companies that appeared with usable
// diagnostic data, whether or not they took one.
type denominators map[string]aggregator.Seen

func (d denominators) add(p *types.Profile) {
	size := sizeOr(p.Size)
	if d[size] == nil {
		d[size] = aggregator.Seen{}
	}
	d[size].Add(p.Key)
}

// rosterDenominators counts every known company when no row carried usable
// data.
func rosterDenominators(dir *entity.Directory) denominators {
	d := denominators{}
	for _, p := range dir.Profiles() {
		if !p.Placeholder {
			d.add(&p)
		}
	}
	return d
}

// BuildDiagnostics builds the diagnostics tables. Companies are resolved
// against the roster after the manual overrides; unknown names become
// placeholders that never enter the denominators.
func BuildDiagnostics(c *Context) ([]*types.Sheet, error) {
	base, err := c.Table(BaseSheets...)
	if err != nil {
		return nil, err
	}
	live, err := c.Table(DiagSheets...)
	if err != nil {
		return nil, err
	}
	hist, err := diagHistory(c)
	if err != nil {
		return nil, err
	}

	dir := c.Directory()
	dir.AddTable(base)
	if n := dir.ApplyOverrides(c.Overrides); n > 0 {
		c.Log.WithField("overrides", n).Debug("manual aliases applied")
	}

	b := diagBuilder{c: c, dir: dir, buckets: map[string]*diagnostic{}, companies: denominators{}}
	b.live(live)
	if b.allDated && hist.Len() > 0 {
		b.history(hist)
	} else if hist.Len() > 0 {
		c.Log.WithField("sheet", hist.Name).Debug("historical sheet skipped, undated rows found in live sheet")
	}

	diags := b.result()
	companies := b.companies
	if len(companies) == 0 {
		companies = rosterDenominators(dir)
	}

	sheets := []*types.Sheet{
		diagSummary(diags, companies),
		diagByType(diags),
		diagByCompany(diags),
	}
	sheets = append(sheets, aggregator.Merge(OutDiagMaster, sheets...))
	c.finish(dir, sheets)
	return sheets, nil
}

// diagHistory reads the historical diagnostics sheet by name, else the first
// sheet whose name looks like one.
func diagHistory(c *Context) (table.Table, error) {
	names := append([]string(nil), DiagHistSheets...)
	for _, partial := range []string{"DIAGNOSTICOS_HIST", "DIAGNOSTICO_HIST"} {
		if s, ok := dataset.FindSheet(c.Source, partial, "PIVOT"); ok {
			names = append(names, s)
		}
	}
	return c.Table(names...)
}

type diagBuilder struct {
	c         *Context
	dir       *entity.Directory
	buckets   map[string]*diagnostic
	order     []string
	companies denominators
	allDated  bool
}

// collect lists the diagnostic types of a row: the type column counts once,
// each flagged type column counts its flag.
func (b *diagBuilder) collect(t table.Table, row []string, typeCell string) []diagCount {
	var out []diagCount
	idx := map[string]int{}
	add := func(typ string, n int) {
		if typ == "" || typ == coerce.DiagNoType || typ == coerce.DiagNone {
			return
		}
		if i, ok := idx[typ]; ok {
			out[i].Count += n
			return
		}
		idx[typ] = len(out)
		out = append(out, diagCount{Type: typ, Count: n})
	}
	if typeCell != "" {
		add(coerce.DiagType(typeCell), 1)
	}
	for _, col := range b.c.Fields.DiagColumns {
		if n := coerce.CountFlag(t.Value(row, []string{col})); n > 0 {
			add(coerce.DiagType(col), n)
		}
	}
	return out
}

// row folds one sheet row. Rows flagged NO still count their company in the
// denominators.
func (b *diagBuilder) row(t table.Table, i int, typeCell, subtype string, year int) {
	f := b.c.Fields
	row := t.Rows[i]
	flag := strings.ToUpper(t.Value(row, f.DiagFlag))
	found := b.collect(t, row, typeCell)
	if flag == "" && len(found) == 0 {
		b.c.skip(t, i, "no diagnostic type or flag")
		return
	}
	p := b.dir.Find(t.Value(row, f.RUC), t.Value(row, f.Name), row, t.Columns)
	if p == nil {
		b.c.skip(t, i, "no company identity")
		return
	}
	if !p.Placeholder {
		b.companies.add(p)
	}
	if flag != "" && coerce.SkipFlag(flag) {
		b.c.Run.Skip()
		return
	}
	y := strconv.Itoa(year)
	for _, d := range found {
		if d.Type == diagLegal && advisorySubtypes[subtype] {
			b.c.Log.WithFields(logrus.Fields{"key": p.Key, "subtype": subtype}).Debug("legal advisory row excluded")
			continue
		}
		b.add(p, y, d, subtype)
	}
}

func (b *diagBuilder) add(p *types.Profile, year string, d diagCount, subtype string) {
	k := p.Key + "|" + year + "|" + d.Type
	bk, ok := b.buckets[k]
	if !ok {
		bk = &diagnostic{Year: year, Profile: p, Type: d.Type}
		b.buckets[k] = bk
		b.order = append(b.order, k)
	} else {
		b.c.Run.Duplicate()
	}
	bk.Count += float64(d.Count)
	if subtype == coerce.DiagNoSubtype || subtype == "PENDIENTE" || subtype == "" {
		return
	}
	for _, s := range bk.Subtypes {
		if s == subtype {
			return
		}
	}
	bk.Subtypes = append(bk.Subtypes, subtype)
}

// live folds the live sheet. Undated rows are historical records and take
// the default historical year.
func (b *diagBuilder) live(t table.Table) {
	f := b.c.Fields
	b.allDated = true
	for i, row := range t.Rows {
		if table.Blank(row) {
			continue
		}
		year := b.c.HistYear
		if d, ok := coerce.Date(t.Value(row, f.Date)); ok {
			year = d.Year()
		} else {
			b.allDated = false
		}
		b.row(t, i, t.Value(row, f.DiagType), coerce.Subtype(t.Value(row, f.DiagSubtype)), year)
	}
}

// history folds the historical sheet. It has no type column, only flagged
// type columns.
func (b *diagBuilder) history(t table.Table) {
	f := b.c.Fields
	for i, row := range t.Rows {
		if table.Blank(row) {
			continue
		}
		year := b.c.HistYear
		if d, ok := coerce.Date(t.Value(row, f.Date)); ok {
			year = d.Year()
		}
		b.row(t, i, "", coerce.DiagNoSubtype, year)
	}
}

func (b *diagBuilder) result() []diagnostic {
	out := make([]diagnostic, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, *b.buckets[k])
	}
	return out
}

var (
	dgYear = aggregator.Dimension[diagnostic]{Name: "ANIO", Value: func(d diagnostic) string { return d.Year }}
	dgSize = aggregator.Dimension[diagnostic]{Name: "TAMANO", Value: func(d diagnostic) string { return sizeOr(d.Profile.Size) }}
	dgType = aggregator.Dimension[diagnostic]{Name: "TIPO_DIAGNOSTICO", Value: func(d diagnostic) string { return d.Type }}

	dgCount     = aggregator.Measure[diagnostic]{Name: "TOTAL_DIAGNOSTICOS", Kind: aggregator.Sum, Value: func(d diagnostic) float64 { return d.Count }}
	dgCompanies = aggregator.Measure[diagnostic]{Name: "EMPRESAS_CON_DIAG", Kind: aggregator.Distinct, Key: func(d diagnostic) string { return d.Profile.Key }}
)

// diagSummary writes one row per year and size, sizes without diagnostics
// included.
func diagSummary(diags []diagnostic, companies denominators) *types.Sheet {
	rows := aggregator.Build(diags, aggregator.Spec[diagnostic]{
		Dimensions: []aggregator.Dimension[diagnostic]{dgYear, dgSize},
		Measures:   []aggregator.Measure[diagnostic]{dgCount, dgCompanies},
	})
	byGroup := map[string]aggregator.Row{}
	for _, r := range rows {
		byGroup[r.Dim(0)+"|"+r.Dim(1)] = r
	}

	out := types.NewSheet(OutDiagSummary, "ANIO", "TAMANO", "TOTAL_DIAGNOSTICOS", "EMPRESAS_CON_DIAG", "EMPRESAS_SIN_DIAG", "EMPRESAS_TOTALES")
	for _, y := range yearsOf(diags, func(d diagnostic) string { return d.Year }) {
		for _, size := range diagSizes {
			total, with := 0.0, 0
			if r, ok := byGroup[y+"|"+size]; ok {
				total, with = r.Value(0), r.Int(1)
			}
			all := len(companies[size])
			out.Append(yearCell(y), size, total, with, max(0, all-with), all)
		}
	}
	return out
}

func diagByType(diags []diagnostic) *types.Sheet {
	rows := aggregator.Build(diags, aggregator.Spec[diagnostic]{
		Dimensions: []aggregator.Dimension[diagnostic]{dgYear, dgSize, dgType},
		Measures:   []aggregator.Measure[diagnostic]{dgCount},
		Less:       aggregator.Order(aggregator.Year(0), aggregator.Size(1), aggregator.Text(2)),
	})
	totals := map[string]float64{}
	for _, r := range rows {
		totals[r.Dim(0)+"|"+r.Dim(1)] += r.Value(0)
	}
	out := types.NewSheet(OutDiagByType, "ANIO", "TAMANO", "TIPO_DIAGNOSTICO", "CANTIDAD", "PCT").
		Format(types.FormatPercent, "PCT")
	for _, r := range rows {
		n := r.Value(0)
		out.Append(yearCell(r.Dim(0)), r.Dim(1), r.Dim(2), n, aggregator.Ratio(n, totals[r.Dim(0)+"|"+r.Dim(1)]))
	}
	return out
}

type diagCompany struct {
	Year     string
	Size     string
	Profile  *types.Profile
	Count    float64
	Types    []string
	Subtypes []string
}

func appendNew(list []string, vals ...string) []string {
	for _, v := range vals {
		dup := false
		for _, s := range list {
			if s == v {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, v)
		}
	}
	return list
}

// diagByCompany ranks companies by diagnostics taken within each year and
// size.
func diagByCompany(diags []diagnostic) *types.Sheet {
	byKey := map[string]*diagCompany{}
	var order []string
	for _, d := range diags {
		size := sizeOr(d.Profile.Size)
		k := d.Year + "|" + size + "|" + d.Profile.Key
		dc, ok := byKey[k]
		if !ok {
			dc = &diagCompany{Year: d.Year, Size: size, Profile: d.Profile}
			byKey[k] = dc
			order = append(order, k)
		}
		dc.Count += d.Count
		dc.Types = appendNew(dc.Types, d.Type)
		dc.Subtypes = appendNew(dc.Subtypes, d.Subtypes...)
	}
	list := make([]diagCompany, 0, len(order))
	for _, k := range order {
		list = append(list, *byKey[k])
	}

	groups, parts := aggregator.Partition(list, func(d diagCompany) string { return d.Year + "|" + d.Size })
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := parts[groups[i]][0], parts[groups[j]][0]
		if d := aggregator.CompareYears(a.Year, b.Year); d != 0 {
			return d < 0
		}
		return aggregator.CompareSizes(a.Size, b.Size) < 0
	})

	out := types.NewSheet(OutDiagByCompany, "ANIO", "TAMANO", "RUC", "RAZON_SOCIAL", "SECTOR", "TOTAL_DIAGNOSTICOS", "TIPOS_TOMADOS", "SUBTIPOS", "RANK")
	for _, g := range groups {
		ranked := aggregator.Rank(parts[g], func(d diagCompany) float64 { return d.Count }, func(d diagCompany) string { return d.Profile.Key })
		for _, rk := range ranked {
			d := rk.Item
			subtypes := coerce.DiagNoSubtype
			if len(d.Subtypes) > 0 {
				subtypes = strings.Join(d.Subtypes, ", ")
			}
			out.Append(yearCell(d.Year), d.Size, d.Profile.RUC, d.Profile.Name, sectorOr(d.Profile.Sector), d.Count,
				strings.Join(d.Types, ", "), subtypes, rk.Rank)
		}
	}
	return out
}
