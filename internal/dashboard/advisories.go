package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"capig-dash-go/internal/aggregator"
	"capig-dash-go/internal/coerce"
	"capig-dash-go/internal/entity"
	"capig-dash-go/internal/table"
	"capig-dash-go/internal/types"
)

const subtypeOther = "OTROS"

// Subtype count columns of the legal sheets.
var legalSubtypeColumns = []struct {
	Subtype string
	Aliases []string
}{
	{"LABORAL", []string{"LABORAL"}},
	{"SOCIETARIO", []string{"SOCIETARIO"}},
	{"PROPIEDAD INTELECTUAL", []string{"PROPIEDAD_INTELECTUAL", "INTELECTUAL"}},
	{subtypeOther, []string{"OTROS"}},
}

// advisory holds the legal advisories one company took in one year. Total
// and subtype counts keep the largest value seen across rows.
type advisory struct {
	Year     string
	Profile  *types.Profile
	Total    float64
	Subtypes map[string]float64
}

// advisoryCount is one share of an advisory total attributed to a subtype.
type advisoryCount struct {
	Year    string
	Profile *types.Profile
	Subtype string
	Count   float64
}

// legalSubtype keeps the four reported subtypes. Anything else, blank
// included, is OTROS.
func legalSubtype(s string) string {
	switch sub := coerce.Subtype(s); sub {
	case "LABORAL", "SOCIETARIO", "PROPIEDAD INTELECTUAL", subtypeOther:
		return sub
	}
	return subtypeOther
}

// countCell reads a count: numbers as they are, yes-style marks as 1.
func countCell(s string) float64 {
	if v, ok := coerce.ParseAmount(s); ok {
		return max(v, 0)
	}
	return float64(coerce.CountFlag(s))
}

// BuildAdvisories builds the legal advisory tables. The dedicated legal
// sheets win when any has rows; otherwise LEGAL rows of the diagnostics
// sheet are used.
func BuildAdvisories(c *Context) ([]*types.Sheet, error) {
	base, err := c.Table(BaseSheets...)
	if err != nil {
		return nil, err
	}
	legal, err := legalSources(c)
	if err != nil {
		return nil, err
	}

	dir := c.Directory()
	dir.AddTable(base)
	if n := dir.ApplyOverrides(c.Overrides); n > 0 {
		c.Log.WithField("overrides", n).Debug("manual aliases applied")
	}

	b := advisoryBuilder{c: c, dir: dir, buckets: map[string]*advisory{}, companies: denominators{}}
	if len(legal) > 0 {
		merged := map[string]*legalEntry{}
		var order []string
		for _, t := range legal {
			for i, row := range t.Rows {
				if table.Blank(row) {
					continue
				}
				order = b.legalRow(t, i, merged, order)
			}
		}
		for _, k := range order {
			e := merged[k]
			year := e.Year
			if year == 0 {
				year = c.HistYear
			}
			b.add(e.Profile, strconv.Itoa(year), e.Total, e.Subtypes)
		}
	} else {
		diag, err := c.Table(AdvisorySheets...)
		if err != nil {
			return nil, err
		}
		for i, row := range diag.Rows {
			if table.Blank(row) {
				continue
			}
			b.diagRow(diag, i)
		}
	}

	counts := b.expand()
	companies := b.companies
	if len(companies) == 0 {
		companies = rosterDenominators(dir)
	}

	sheets := []*types.Sheet{
		advSummary(counts, companies),
		advBySubtype(counts),
		advByCompany(counts),
	}
	sheets = append(sheets, aggregator.Merge(OutAdvMaster, sheets...))
	c.finish(dir, sheets)
	return sheets, nil
}

// legalSources returns the unified legal sheet when it has rows, else every
// numbered legal sheet that has rows.
func legalSources(c *Context) ([]table.Table, error) {
	unified, err := c.Table(LegalSheets...)
	if err != nil {
		return nil, err
	}
	if unified.Len() > 0 {
		return []table.Table{unified}, nil
	}
	var out []table.Table
	for _, name := range LegalPartSheets {
		t, err := c.Table(name)
		if err != nil {
			return nil, err
		}
		if t.Len() > 0 {
			out = append(out, t)
		}
	}
	return out, nil
}

type advisoryBuilder struct {
	c         *Context
	dir       *entity.Directory
	buckets   map[string]*advisory
	order     []string
	companies denominators
}

func (b *advisoryBuilder) add(p *types.Profile, year string, total float64, subtypes map[string]float64) {
	k := p.Key + "|" + year
	a, ok := b.buckets[k]
	if !ok {
		a = &advisory{Year: year, Profile: p, Subtypes: map[string]float64{}}
		b.buckets[k] = a
		b.order = append(b.order, k)
	} else {
		b.c.Run.Duplicate()
	}
	a.Total = max(a.Total, total)
	for s, n := range subtypes {
		a.Subtypes[s] = max(a.Subtypes[s], n)
	}
}

// legalEntry is one company folded across every legal sheet. Year is the
// first dated row, 0 when none was.
type legalEntry struct {
	Profile  *types.Profile
	Year     int
	Total    float64
	Subtypes map[string]float64
}

// legalRow folds one legal sheet row into merged. A row with a service flag
// or a count enters the denominators; it counts only when the flag is yes,
// or blank with a positive count.
func (b *advisoryBuilder) legalRow(t table.Table, i int, merged map[string]*legalEntry, order []string) []string {
	f := b.c.Fields
	row := t.Rows[i]
	subtypes := map[string]float64{}
	sum := 0.0
	for _, sc := range legalSubtypeColumns {
		if n := countCell(t.Value(row, sc.Aliases)); n > 0 {
			subtypes[sc.Subtype] = n
			sum += n
		}
	}
	total := countCell(t.Value(row, f.AdvisoryTotal))
	if total <= 0 {
		total = sum
	}
	flag := t.Value(row, f.AdvisoryFlag)
	if flag == "" {
		flag = t.Value(row, []string{"DIAGNOSTICO"})
	}
	if flag == "" && total <= 0 {
		b.c.skip(t, i, "no legal service data")
		return order
	}
	p := b.dir.Find(t.Value(row, f.RUC), t.Value(row, f.Name), row, t.Columns)
	if p == nil {
		b.c.skip(t, i, "no company identity")
		return order
	}
	if p.Placeholder && p.Size == "" {
		if s := coerce.Size(t.Value(row, f.Size)); knownSize(s) {
			p.Size = s
		}
	}
	if !p.Placeholder {
		b.companies.add(p)
	}
	if (flag != "" && coerce.CountFlag(flag) == 0) || total <= 0 {
		b.c.Run.Skip()
		return order
	}

	e, ok := merged[p.Key]
	if !ok {
		e = &legalEntry{Profile: p, Subtypes: map[string]float64{}}
		merged[p.Key] = e
		order = append(order, p.Key)
	} else {
		b.c.Run.Duplicate()
	}
	e.Total = max(e.Total, total)
	for s, n := range subtypes {
		e.Subtypes[s] = max(e.Subtypes[s], n)
	}
	if e.Year == 0 {
		if y, _, ok := rowYear(t, row, f); ok {
			e.Year = y
		}
	}
	return order
}

// diagRow folds one LEGAL row of the diagnostics sheet. It counts unless its
// flag says no, and then at least once.
func (b *advisoryBuilder) diagRow(t table.Table, i int) {
	f := b.c.Fields
	row := t.Rows[i]
	if coerce.DiagType(t.Value(row, f.DiagType)) != diagLegal {
		return
	}
	p := b.dir.Find(t.Value(row, f.RUC), t.Value(row, f.Name), row, t.Columns)
	if p == nil {
		b.c.skip(t, i, "no company identity")
		return
	}

	total := countCell(t.Value(row, f.AdvisoryTotal))
	if total <= 0 {
		for _, col := range append(append([]string(nil), f.AdvisoryMarkers...), f.AdvisoryFlag...) {
			total += countCell(t.Value(row, []string{col}))
		}
	}
	flag := t.Value(row, f.DiagFlag)
	took := total > 0 || countCell(flag) > 0 || !coerce.SkipFlag(flag)
	if (took || flag != "") && !p.Placeholder {
		b.companies.add(p)
	}
	if !took {
		b.c.Run.Skip()
		return
	}

	year := b.c.HistYear
	if y, _, ok := rowYear(t, row, f); ok {
		year = y
	}
	count := max(total, 1)
	b.add(p, strconv.Itoa(year), count, map[string]float64{legalSubtype(t.Value(row, f.DiagSubtype)): count})
}

// expand splits each total over its subtypes, largest first. What the
// subtypes leave uncovered goes to OTROS.
func (b *advisoryBuilder) expand() []advisoryCount {
	var out []advisoryCount
	for _, k := range b.order {
		a := b.buckets[k]
		remaining := a.Total
		if remaining <= 0 {
			continue
		}
		subs := make([]string, 0, len(a.Subtypes))
		for s := range a.Subtypes {
			subs = append(subs, s)
		}
		sort.Slice(subs, func(i, j int) bool {
			if a.Subtypes[subs[i]] != a.Subtypes[subs[j]] {
				return a.Subtypes[subs[i]] > a.Subtypes[subs[j]]
			}
			return subs[i] < subs[j]
		})
		for _, s := range subs {
			if remaining <= 0 {
				break
			}
			n := min(a.Subtypes[s], remaining)
			if n <= 0 {
				continue
			}
			out = append(out, advisoryCount{Year: a.Year, Profile: a.Profile, Subtype: s, Count: n})
			remaining -= n
		}
		if remaining > 0 {
			out = append(out, advisoryCount{Year: a.Year, Profile: a.Profile, Subtype: subtypeOther, Count: remaining})
		}
	}
	return out
}

var (
	adYear    = aggregator.Dimension[advisoryCount]{Name: "ANIO", Value: func(a advisoryCount) string { return a.Year }}
	adSize    = aggregator.Dimension[advisoryCount]{Name: "TAMANO", Value: func(a advisoryCount) string { return sizeOr(a.Profile.Size) }}
	adSubtype = aggregator.Dimension[advisoryCount]{Name: "SUBTIPO", Value: func(a advisoryCount) string { return a.Subtype }}

	adCount     = aggregator.Measure[advisoryCount]{Name: "TOTAL_ASESORIAS", Kind: aggregator.Sum, Value: func(a advisoryCount) float64 { return a.Count }}
	adCompanies = aggregator.Measure[advisoryCount]{Name: "EMPRESAS_CON_ASE", Kind: aggregator.Distinct, Key: func(a advisoryCount) string { return a.Profile.Key }}
)

// advSummary writes one row per year and size, sizes without advisories
// included.
func advSummary(counts []advisoryCount, companies denominators) *types.Sheet {
	rows := aggregator.Build(counts, aggregator.Spec[advisoryCount]{
		Dimensions: []aggregator.Dimension[advisoryCount]{adYear, adSize},
		Measures:   []aggregator.Measure[advisoryCount]{adCount, adCompanies},
	})
	byGroup := map[string]aggregator.Row{}
	for _, r := range rows {
		byGroup[r.Dim(0)+"|"+r.Dim(1)] = r
	}

	out := types.NewSheet(OutAdvSummary, "ANIO", "TAMANO", "TOTAL_ASESORIAS", "EMPRESAS_CON_ASE", "EMPRESAS_SIN_ASE", "EMPRESAS_TOTALES")
	for _, y := range yearsOf(counts, func(a advisoryCount) string { return a.Year }) {
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

func advBySubtype(counts []advisoryCount) *types.Sheet {
	rows := aggregator.Build(counts, aggregator.Spec[advisoryCount]{
		Dimensions: []aggregator.Dimension[advisoryCount]{adYear, adSize, adSubtype},
		Measures:   []aggregator.Measure[advisoryCount]{adCount},
		Less:       aggregator.Order(aggregator.Year(0), aggregator.Size(1), aggregator.Text(2)),
	})
	totals := map[string]float64{}
	for _, r := range rows {
		totals[r.Dim(0)+"|"+r.Dim(1)] += r.Value(0)
	}
	out := types.NewSheet(OutAdvBySubtype, "ANIO", "TAMANO", "SUBTIPO", "CANTIDAD", "PCT").
		Format(types.FormatPercent, "PCT")
	for _, r := range rows {
		n := r.Value(0)
		out.Append(yearCell(r.Dim(0)), r.Dim(1), r.Dim(2), n, aggregator.Ratio(n, totals[r.Dim(0)+"|"+r.Dim(1)]))
	}
	return out
}

type advCompany struct {
	Year     string
	Size     string
	Profile  *types.Profile
	Count    float64
	Subtypes []string
}

// advByCompany ranks companies by advisories taken within each year and
// size.
func advByCompany(counts []advisoryCount) *types.Sheet {
	byKey := map[string]*advCompany{}
	var order []string
	for _, a := range counts {
		size := sizeOr(a.Profile.Size)
		k := a.Year + "|" + size + "|" + a.Profile.Key
		ac, ok := byKey[k]
		if !ok {
			ac = &advCompany{Year: a.Year, Size: size, Profile: a.Profile}
			byKey[k] = ac
			order = append(order, k)
		}
		ac.Count += a.Count
		ac.Subtypes = appendNew(ac.Subtypes, a.Subtype)
	}
	list := make([]advCompany, 0, len(order))
	for _, k := range order {
		list = append(list, *byKey[k])
	}

	groups, parts := aggregator.Partition(list, func(a advCompany) string { return a.Year + "|" + a.Size })
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := parts[groups[i]][0], parts[groups[j]][0]
		if d := aggregator.CompareYears(a.Year, b.Year); d != 0 {
			return d < 0
		}
		return aggregator.CompareSizes(a.Size, b.Size) < 0
	})

	out := types.NewSheet(OutAdvByCompany, "ANIO", "TAMANO", "RUC", "RAZON_SOCIAL", "SECTOR", "TOTAL_ASESORIAS", "SUBTIPOS_TOMADOS", "RANK")
	for _, g := range groups {
		ranked := aggregator.Rank(parts[g], func(a advCompany) float64 { return a.Count }, func(a advCompany) string { return a.Profile.Key })
		for _, rk := range ranked {
			a := rk.Item
			out.Append(yearCell(a.Year), a.Size, a.Profile.RUC, a.Profile.Name, sectorOr(a.Profile.Sector), a.Count,
				strings.Join(a.Subtypes, ", "), rk.Rank)
		}
	}
	return out
}
