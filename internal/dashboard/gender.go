package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"capig-dash-go/internal/aggregator"
	"capig-dash-go/internal/coerce"
	"capig-dash-go/internal/entity"
	"capig-dash-go/internal/label"
	"capig-dash-go/internal/table"
	"capig-dash-go/internal/types"
)

// manager is one company manager counted in one year.
type manager struct {
	Year   string
	Size   string
	Gender string
	RUC    string
	Name   string
}

func isGender(g string) func(manager) float64 {
	return func(m manager) float64 {
		if m.Gender == g {
			return 1
		}
		return 0
	}
}

// BuildGender builds the share of managers by gender and company size.
func BuildGender(c *Context) ([]*types.Sheet, error) {
	base, err := c.Table(BaseSheets...)
	if err != nil {
		return nil, err
	}
	recs := managers(c, base)

	detail := types.NewSheet(OutGenderDetail, "ANIO", "TAMANO", "GENERO", "RUC", "RAZON_SOCIAL", "FUENTE")
	for _, m := range recs {
		detail.Append(yearCell(m.Year), m.Size, m.Gender, m.RUC, m.Name, base.Name)
	}

	measures := []aggregator.Measure[manager]{
		{Name: coerce.GenderFemale, Kind: aggregator.Sum, Value: isGender(coerce.GenderFemale)},
		{Name: coerce.GenderMale, Kind: aggregator.Sum, Value: isGender(coerce.GenderMale)},
	}
	year := aggregator.Dimension[manager]{Name: "ANIO", Value: func(m manager) string { return m.Year }}
	less := aggregator.Order(aggregator.Year(0), aggregator.Size(1))
	rows := aggregator.Build(recs, aggregator.Spec[manager]{
		Dimensions: []aggregator.Dimension[manager]{year, {Name: "TAMANO", Value: func(m manager) string { return m.Size }}},
		Measures:   measures,
	})
	rows = append(rows, aggregator.Build(recs, aggregator.Spec[manager]{
		Dimensions: []aggregator.Dimension[manager]{year, {Name: "TAMANO", Value: func(manager) string { return coerce.SizeGlobal }}},
		Measures:   measures,
	})...)
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })

	pivot := types.NewSheet(OutGenderPivot, "ANIO", "TAMANO", "GENERO", "GERENTES", "TOTAL_TAMANO", "PCT_GENERO", "ORDEN_TAMANO").
		Format(types.FormatPercent, "PCT_GENERO")
	wide := types.NewSheet(OutGenderWide, "ANIO", "TAMANO", "FEMENINO", "MASCULINO", "TOTAL", "PCT_FEMENINO", "PCT_MASCULINO", "ORDEN_TAMANO").
		Format(types.FormatPercent, "PCT_FEMENINO", "PCT_MASCULINO")
	for _, r := range rows {
		f, m := r.Value(0), r.Value(1)
		total := f + m
		if total == 0 {
			continue
		}
		y, size, rank := yearCell(r.Dim(0)), r.Dim(1), coerce.SizeRank(r.Dim(1))
		pivot.Append(y, size, coerce.GenderFemale, int(f), int(total), aggregator.Ratio(f, total), rank)
		pivot.Append(y, size, coerce.GenderMale, int(m), int(total), aggregator.Ratio(m, total), rank)
		wide.Append(y, size, int(f), int(m), int(total), aggregator.Ratio(f, total), aggregator.Ratio(m, total), rank)
	}

	sheets := []*types.Sheet{detail, pivot, wide, aggregator.Merge(OutGenderMaster, pivot, wide)}
	c.finish(nil, sheets)
	return sheets, nil
}

// managers reads one record per manager row. The year and size come from
// the newest filled T20xx size-code column, else from the size and
// affiliation date fields. Rows without gender or year are skipped.
func managers(c *Context, base table.Table) []manager {
	f := c.Fields
	tagged := base.TaggedYearColumns()
	seen := aggregator.Seen{}
	var out []manager
	for i, row := range base.Rows {
		if table.Blank(row) {
			continue
		}
		if !strings.Contains(label.Normalize(base.Value(row, f.Role)), "GERENTE") {
			continue
		}
		gender := coerce.Gender(base.Value(row, f.Gender))
		if gender == "" {
			c.skip(base, i, "no manager gender")
			continue
		}

		size, year := "", 0
		for i := len(tagged) - 1; i >= 0; i-- {
			if cell := table.Cell(row, tagged[i].Index); cell != "" {
				size, year = coerce.SizeFromCode(cell), tagged[i].Year
				break
			}
		}
		if size == "" || year == 0 {
			size = coerce.Size(base.Value(row, f.Size))
			year, _ = coerce.Year(base.Value(row, f.AffiliationDate))
		}
		if year == 0 {
			c.skip(base, i, "no year")
			continue
		}
		size = sizeOr(size)

		ruc := base.Value(row, f.RUC)
		name := base.Value(row, f.Name)
		y := strconv.Itoa(year)
		if !seen.Add(entity.Key(ruc, base.Value(row, f.AltID), name), y, size, gender) {
			c.Run.Duplicate()
			continue
		}
		out = append(out, manager{Year: y, Size: size, Gender: gender, RUC: coerce.PadRUC13(ruc), Name: label.Name(name)})
	}
	return out
}
