package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capig-dash-go/internal/types"
)

type sale struct {
	key    string
	year   string
	size   string
	amount float64
}

func salesSpec() Spec[sale] {
	return Spec[sale]{
		Dimensions: []Dimension[sale]{
			{Name: "ANIO", Value: func(s sale) string { return s.year }},
			{Name: "TAMANO", Value: func(s sale) string { return s.size }},
		},
		Measures: []Measure[sale]{
			{Name: "VENTAS_TOTAL", Kind: Sum, Value: func(s sale) float64 { return s.amount }},
			{Name: "REGISTROS", Kind: Count},
			{Name: "EMPRESAS", Kind: Distinct, Key: func(s sale) string { return s.key }},
		},
		Less: Order(Year(0), Size(1)),
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	rows := Build([]sale{
		{"a", "2022", "GRANDE", 10},
		{"a", "2023", "MEDIANA", 5},
		{"b", "2023", "MEDIANA", 7.5},
		{"a", "2023", "MEDIANA", 1},
		{"c", "2023", "MICRO", 2},
		{"", "2023", "MICRO", 3},
	}, salesSpec())

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2023", "MICRO"}, rows[0].Dims)
	assert.Equal(t, []float64{5, 2, 1}, rows[0].Values)
	assert.Equal(t, []string{"2023", "MEDIANA"}, rows[1].Dims)
	assert.Equal(t, []float64{13.5, 3, 2}, rows[1].Values)
	assert.Equal(t, []string{"2022", "GRANDE"}, rows[2].Dims)
	assert.Equal(t, 1, rows[2].Int(2))
}

func TestBuildIsOrderIndependent(t *testing.T) {
	t.Parallel()

	in := []sale{
		{"a", "2022", "MICRO", 1},
		{"b", "2023", "GRANDE", 2},
		{"c", "SIN_FECHA", "MICRO", 3},
		{"d", "2023", "MICRO", 4},
	}
	rev := []sale{in[3], in[2], in[1], in[0]}
	assert.Equal(t, Build(in, salesSpec()), Build(rev, salesSpec()))
}

func TestBuildFilterAndEmpty(t *testing.T) {
	t.Parallel()

	spec := salesSpec()
	spec.Filter = func(s sale) bool { return s.amount > 0 }
	assert.Empty(t, Build([]sale{{"a", "2023", "MICRO", 0}}, spec))
	assert.Empty(t, Build(nil, spec))
}

func TestBuildDefaultOrder(t *testing.T) {
	t.Parallel()

	spec := salesSpec()
	spec.Less = nil
	rows := Build([]sale{{"a", "2023", "MICRO", 1}, {"a", "2022", "MICRO", 1}}, spec)
	assert.Equal(t, "2022", rows[0].Dim(0))
}

func TestDedupContributesOnce(t *testing.T) {
	t.Parallel()

	seen := Seen{}
	var kept []sale
	for _, s := range []sale{
		{"a", "2023", "MICRO", 100},
		{"a", "2023", "MICRO", 100},
		{"a", "2024", "MICRO", 50},
	} {
		if seen.Add(s.key, s.year, s.size, "VENTAS") {
			kept = append(kept, s)
		}
	}
	rows := Build(kept, salesSpec())
	require.Len(t, rows, 2)
	assert.Equal(t, 100.0, rows[1].Value(0))
	assert.True(t, seen.Has("a", "2023", "MICRO", "VENTAS"))
	assert.False(t, seen.Has("a", "2025", "MICRO", "VENTAS"))
}

func TestRatio(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Ratio(5, 0))
	assert.Equal(t, 0.25, Ratio(1, 4))
}

func TestCompareYears(t *testing.T) {
	t.Parallel()

	in := []string{"SIN_FECHA", "2022", "OTRO", "HISTORICO", "2024", "2023"}
	rows := make([]Row, len(in))
	for i, y := range in {
		rows[i] = Row{Dims: []string{y}}
	}
	out := Build(rows, Spec[Row]{
		Dimensions: []Dimension[Row]{{Name: "ANIO", Value: func(r Row) string { return r.Dims[0] }}},
		Less:       Order(Year(0)),
	})
	var got []string
	for _, r := range out {
		got = append(got, r.Dims[0])
	}
	assert.Equal(t, []string{"2024", "2023", "2022", "HISTORICO", "SIN_FECHA", "OTRO"}, got)
}

func TestCompareSizes(t *testing.T) {
	t.Parallel()

	assert.Negative(t, CompareSizes("GLOBAL", "MICRO"))
	assert.Negative(t, CompareSizes("MEDIANA", "GRANDE"))
	assert.Negative(t, CompareSizes("GRANDE", "SIN_TAMANO"))
	assert.Negative(t, CompareSizes("DESCONOCIDO", "SIN_TAMANO"))
	assert.Zero(t, CompareSizes("MICRO", "MICRO"))
}

func TestDesc(t *testing.T) {
	t.Parallel()

	less := Order(Year(0), Desc(Text(1)))
	a := Row{Dims: []string{"2023", "Q1"}}
	b := Row{Dims: []string{"2023", "Q4"}}
	c := Row{Dims: []string{"2024", "Q1"}}
	assert.True(t, less(b, a))
	assert.False(t, less(a, b))
	assert.True(t, less(c, b))
}

func TestMerge(t *testing.T) {
	t.Parallel()

	a := types.NewSheet("PIVOT_A", "ANIO", "TAMANO", "VENTAS")
	a.Format(types.FormatMoney, "VENTAS")
	a.Append(2023, "MICRO", 10.5)
	a.Append("", "", "")
	b := types.NewSheet("PIVOT_B", "ANIO", "", "EMPRESAS")
	b.Append(2023, "x", 3)

	m := Merge("DASH_MAESTRA", a, b)
	assert.Equal(t, []string{SourceColumn, "ANIO", "TAMANO", "VENTAS", "COL_2", "EMPRESAS"}, m.Header)
	require.Len(t, m.Rows, 2)
	assert.Equal(t, []any{"PIVOT_A", 2023, "MICRO", 10.5, "", ""}, m.Rows[0])
	assert.Equal(t, []any{"PIVOT_B", 2023, "", "", "x", 3}, m.Rows[1])
	assert.Equal(t, types.FormatMoney, m.Formats["VENTAS"])
}
