package dashboard

import (
	"testing"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"capig-dash-go/internal/aggregator"
	"capig-dash-go/internal/dataset"
	"capig-dash-go/internal/types"
)

func workbook(t *testing.T, sheets map[string][][]string) *dataset.Workbook {
	t.Helper()
	w := dataset.New()
	for name, grid := range sheets {
		require.NoError(t, w.SetGrid(name, grid))
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func newContext(w *dataset.Workbook) *Context {
	return NewContext(w, types.DefaultFields(), nil, nil)
}

func sheetNamed(t *testing.T, sheets []*types.Sheet, name string) *types.Sheet {
	t.Helper()
	for _, s := range sheets {
		if s.Name == name {
			return s
		}
	}
	require.Failf(t, "missing sheet", "no sheet %s", name)
	return nil
}

func TestSalesScenario(t *testing.T) {
	w := workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "TAMANO"},
			{"0991300333001", "TONISA S.A.", "MEDIANA"},
		},
		"VENTAS_SOCIO": {
			{"RUC", "RAZON_SOCIAL", "ANIO", "VENTAS"},
			{"0991300333001", "TONISA S.A.", "2023", "1,000.50"},
		},
	})

	sheets, err := BuildSales(newContext(w))
	require.NoError(t, err)

	pivot := sheetNamed(t, sheets, OutSalesBySize)
	require.Len(t, pivot.Rows, 2)
	assert.Equal(t, []any{2023, "MEDIANA", 1000.5, 1, 3}, pivot.Rows[0])
	assert.Equal(t, []any{2023, "TOTAL", 1000.5, 1, 999}, pivot.Rows[1])
	assert.Equal(t, types.FormatMoney, pivot.Formats["VENTAS_TOTAL"])

	master := sheets[len(sheets)-1]
	assert.Equal(t, OutSalesMaster, master.Name)
	assert.Equal(t, aggregator.SourceColumn, master.Header[0])
}

func warnings(hook *logtest.Hook, msg string) []logrus.Entry {
	var out []logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == msg {
			out = append(out, *e)
		}
	}
	return out
}

func TestSkippedRowsAreWarned(t *testing.T) {
	w := workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "TAMANO"},
			{"0991300333001", "TONISA S.A.", "MEDIANA"},
		},
		"VENTAS_SOCIO": {
			{"RUC", "RAZON_SOCIAL", "ANIO", "VENTAS"},
			{"0991300333001", "TONISA S.A.", "no year", "abc"},
		},
	})
	log, hook := logtest.NewNullLogger()
	c := NewContext(w, types.DefaultFields(), logrus.NewEntry(log), nil)

	_, err := BuildSales(c)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Run.Skipped)

	skipped := warnings(hook, "source row skipped")
	require.Len(t, skipped, 1)
	assert.Equal(t, "VENTAS_SOCIO", skipped[0].Data["sheet"])
	assert.Equal(t, 2, skipped[0].Data["line"])
	assert.Equal(t, "no year", skipped[0].Data["reason"])
	assert.Empty(t, warnings(hook, "unmatched companies given placeholder profiles"))
}

func TestSalesLiveSupersedesRoster(t *testing.T) {
	w := workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "TAMANO", "2022", "2023"},
			{"0991300333001", "TONISA S.A.", "MEDIANA", "700", "500"},
		},
		"VENTAS_SOCIO": {
			{"RUC", "RAZON_SOCIAL", "ANIO", "VENTAS"},
			{"0991300333001", "TONISA S.A.", "2023", "1,000.50"},
			{"0991300333001", "TONISA S.A.", "2023", "9"},
		},
	})
	c := newContext(w)

	sheets, err := BuildSales(c)
	require.NoError(t, err)

	detail := sheetNamed(t, sheets, OutSalesDetail)
	require.Len(t, detail.Rows, 2)
	assert.Equal(t, 2023, detail.Rows[0][0])
	assert.Equal(t, 1000.5, detail.Rows[0][3])
	assert.Equal(t, "VENTAS_SOCIO", detail.Rows[0][6])
	assert.Equal(t, 2022, detail.Rows[1][0])
	assert.Equal(t, 700.0, detail.Rows[1][3])
	assert.Equal(t, "SOCIOS", detail.Rows[1][6])

	// second live row for the same year, then the superseded roster year
	assert.Equal(t, 2, c.Run.Duplicates)
	assert.Equal(t, 1, c.Run.RowsRead["SOCIOS"])
	assert.Equal(t, 2, c.Run.RowsRead["VENTAS_SOCIO"])
}

func TestSalesInfersMissingSize(t *testing.T) {
	w := workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "TAMANO", "2023"},
			{"0990000000001", "ALFA", "", "2,500,000"},
		},
	})

	sheets, err := BuildSales(newContext(w))
	require.NoError(t, err)

	pivot := sheetNamed(t, sheets, OutSalesBySize)
	require.NotEmpty(t, pivot.Rows)
	assert.Equal(t, "MEDIANA", pivot.Rows[0][1])

	global := sheetNamed(t, sheets, OutSizeGlobal)
	assert.Equal(t, [][]any{{"0990000000001", "MEDIANA"}}, global.Rows)
}

func TestGender(t *testing.T) {
	w := workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "CARGO", "GENERO", "T2022", "T2023"},
			{"0991300333001", "TONISA", "GERENTE GENERAL", "F", "2", "3"},
			{"0992257946001", "MUNDOCARE", "Gerente", "Masculino", "1", ""},
			{"0990000000001", "OTRA", "CONTADOR", "M", "1", "1"},
			{"0991300333001", "TONISA", "GERENTE", "Mujer", "2", "3"},
			{"0990000000002", "SIN GENERO", "GERENTE", "", "1", "1"},
		},
	})
	c := newContext(w)

	sheets, err := BuildGender(c)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Run.Duplicates)
	assert.Equal(t, 1, c.Run.Skipped)

	detail := sheetNamed(t, sheets, OutGenderDetail)
	assert.Len(t, detail.Rows, 2)

	wide := sheetNamed(t, sheets, OutGenderWide)
	require.Len(t, wide.Rows, 4)
	assert.Equal(t, []any{2023, "GLOBAL", 1, 0, 1, 1.0, 0.0, 0}, wide.Rows[0])
	assert.Equal(t, []any{2023, "MEDIANA", 1, 0, 1, 1.0, 0.0, 3}, wide.Rows[1])
	assert.Equal(t, []any{2022, "GLOBAL", 0, 1, 1, 0.0, 1.0, 0}, wide.Rows[2])
	assert.Equal(t, []any{2022, "MICRO", 0, 1, 1, 0.0, 1.0, 1}, wide.Rows[3])

	pivot := sheetNamed(t, sheets, OutGenderPivot)
	assert.Len(t, pivot.Rows, 8)
	assert.Equal(t, types.FormatPercent, pivot.Formats["PCT_GENERO"])
}

func performanceBook(t *testing.T) *dataset.Workbook {
	return workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "TAMANO", "ESTADO", "2023"},
			{"0990000000002", "BETA", "MICRO", "", "100"},
			{"0990000000001", "ALFA", "MICRO", "ACTIVO", "100"},
			{"0990000000003", "GAMA", "PEQUENA", "", "50"},
		},
		"ESTADO_SOCIO": {
			{"RUC", "ESTADO"},
			{"0990000000002", "PENDIENTE"},
		},
	})
}

func TestPerformanceTopBreaksTiesByKey(t *testing.T) {
	c := newContext(performanceBook(t))
	c.TopN = 2

	sheets, err := BuildPerformance(c)
	require.NoError(t, err)

	top := sheetNamed(t, sheets, OutPerfTop)
	require.Len(t, top.Rows, 2)
	assert.Equal(t, "0990000000001", top.Rows[0][1])
	assert.Equal(t, 1, top.Rows[0][8])
	assert.Equal(t, "0990000000002", top.Rows[1][1])
	assert.Equal(t, 2, top.Rows[1][8])
}

func TestPerformanceStatusShare(t *testing.T) {
	c := newContext(performanceBook(t))

	sheets, err := BuildPerformance(c)
	require.NoError(t, err)

	status := sheetNamed(t, sheets, OutPerfStatus)
	require.Len(t, status.Rows, 3)
	assert.Equal(t, []any{2023, "MICRO", "NO PAGADO", 1, 0.5}, status.Rows[0])
	assert.Equal(t, []any{2023, "MICRO", "PAGADO", 1, 0.5}, status.Rows[1])
	assert.Equal(t, []any{2023, "PEQUENA", "DESCONOCIDO", 1, 1.0}, status.Rows[2])

	summary := sheetNamed(t, sheets, OutPerfSummary)
	require.NotEmpty(t, summary.Rows)
	assert.Equal(t, 100.0, summary.Rows[0][3])
	assert.InDelta(t, 0.0001, summary.Rows[0][4], 1e-12)
	assert.Equal(t, types.FormatMillions, summary.Formats["VENTAS_TOTALES_M"])
}

func TestTrainings(t *testing.T) {
	w := workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "TAMANO"},
			{"0991300333001", "TONISA S.A.", "MEDIANA"},
		},
		"CAPACITACIONES_HISTORICAS": {
			{"RAZON SOCIAL", "TOTAL_CAPACITACIONES", "VALOR_TOTAL"},
			{"TONISA S.A.", "3", "150"},
			{"TONISA S.A.", "3", "150"},
		},
		"CAPACITACIONES": {
			{"RUC", "RAZON SOCIAL", "FECHA", "VALOR"},
			{"0991300333001", "TONISA S.A.", "2024-05-10", "40"},
			{"", "NO_SOCIOS", "2024-06-01", "10"},
		},
	})
	log, hook := logtest.NewNullLogger()
	c := NewContext(w, types.DefaultFields(), logrus.NewEntry(log), nil)

	sheets, err := BuildTrainings(c)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Run.Duplicates)
	assert.Equal(t, 1, c.Run.Unmatched)
	unmatched := warnings(hook, "unmatched companies given placeholder profiles")
	require.Len(t, unmatched, 1)
	assert.Equal(t, 1, unmatched[0].Data["placeholders"])

	dups := sheetNamed(t, sheets, OutTrainDuplicates)
	require.Len(t, dups.Rows, 1)
	assert.Equal(t, SourceHistoric, dups.Rows[0][0])
	assert.Equal(t, 2024, dups.Rows[0][1])

	summary := sheetNamed(t, sheets, OutTrainSummary)
	require.Len(t, summary.Rows, 2)
	assert.Equal(t, []any{2024, "MEDIANA", true, 1, 4.0, 190.0}, summary.Rows[0])
	assert.Equal(t, []any{2024, "SIN_TAMANO", false, 1, 1.0, 10.0}, summary.Rows[1])

	members := sheetNamed(t, sheets, OutTrainMemberSummary)
	assert.Equal(t, [][]any{{2024, "MEDIANA", 1, 4.0, 190.0}}, members.Rows)

	top := sheetNamed(t, sheets, OutTrainTop)
	require.Len(t, top.Rows, 2)
	assert.Equal(t, "0991300333001", top.Rows[0][1])
	assert.Equal(t, 1, top.Rows[0][7])
	assert.Equal(t, 1, top.Rows[0][8])
	assert.Equal(t, 2, top.Rows[1][7])
	assert.Equal(t, 2, top.Rows[1][8])

	assert.Equal(t, OutTrainMaster, sheets[len(sheets)-1].Name)
}

func TestTrainingsUndatedFallBackToAffiliationYear(t *testing.T) {
	w := workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "TAMANO", "FECHA_AFILIACION"},
			{"0991300333001", "TONISA S.A.", "MEDIANA", "15/03/2019"},
			{"0992257946001", "MUNDOCARE S.A.", "MICRO", ""},
		},
		"CAPACITACIONES_HISTORICAS": {
			{"RAZON SOCIAL", "TOTAL_CAPACITACIONES", "VALOR_TOTAL"},
			{"TONISA S.A.", "2", "80"},
			{"MUNDOCARE S.A.", "1", "30"},
		},
	})
	c := newContext(w)
	c.HistYear = 2022

	sheets, err := BuildTrainings(c)
	require.NoError(t, err)

	summary := sheetNamed(t, sheets, OutTrainSummary)
	require.Len(t, summary.Rows, 2)
	assert.Equal(t, []any{2022, "MICRO"}, summary.Rows[0][:2])
	assert.Equal(t, []any{2019, "MEDIANA"}, summary.Rows[1][:2])
}

func TestDiagnostics(t *testing.T) {
	w := workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "TAMANO"},
			{"0991300333001", "TONISA S.A.", "MEDIANA"},
			{"0992257946001", "MUNDOCARE", "MICRO"},
		},
		"DIAGNOSTICOS": {
			{"RAZON SOCIAL", "FECHA", "TIPO", "SUBTIPO", "SE_DIAGNOSTICO"},
			{"JAZUL", "2024-03-01", "Lean", "", "SI"},
			{"TONISA S.A.", "2024-04-01", "Legal", "Laboral", "SI"},
			{"MUNDOCARE", "2024-05-01", "Estrategia", "", "NO"},
			{"DESCONOCIDA SA", "2024-06-01", "Ambiente", "", "SI"},
			{"TONISA S.A.", "2024-07-01", "lean", "", "SI"},
		},
	})
	c := newContext(w)
	c.Overrides = []types.Override{{RUC: "0991300333001", Aliases: []string{"JAZUL"}}}

	sheets, err := BuildDiagnostics(c)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Run.Unmatched)
	assert.Equal(t, 1, c.Run.Duplicates)

	summary := sheetNamed(t, sheets, OutDiagSummary)
	require.Len(t, summary.Rows, 5)
	assert.Equal(t, []any{2024, "MICRO", 0.0, 0, 1, 1}, summary.Rows[0])
	assert.Equal(t, []any{2024, "MEDIANA", 2.0, 1, 0, 1}, summary.Rows[2])
	assert.Equal(t, []any{2024, "SIN_TAMANO", 1.0, 1, 0, 0}, summary.Rows[4])

	byType := sheetNamed(t, sheets, OutDiagByType)
	assert.Equal(t, [][]any{
		{2024, "MEDIANA", "LEAN", 2.0, 1.0},
		{2024, "SIN_TAMANO", "AMBIENTE", 1.0, 1.0},
	}, byType.Rows)

	byCompany := sheetNamed(t, sheets, OutDiagByCompany)
	require.Len(t, byCompany.Rows, 2)
	assert.Equal(t, "0991300333001", byCompany.Rows[0][2])
	assert.Equal(t, "LEAN", byCompany.Rows[0][6])
	assert.Equal(t, 1, byCompany.Rows[0][8])
}

func TestDiagnosticsUndatedRowsSkipHistorySheet(t *testing.T) {
	w := workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "TAMANO"},
			{"0991300333001", "TONISA S.A.", "MEDIANA"},
		},
		"DIAGNOSTICOS": {
			{"RAZON SOCIAL", "FECHA", "TIPO"},
			{"TONISA S.A.", "", "Lean"},
		},
		"DIAGNOSTICOS_HISTORICOS": {
			{"RAZON SOCIAL", "LEAN", "RRHH"},
			{"TONISA S.A.", "1", "1"},
		},
	})
	c := newContext(w)
	c.HistYear = 2020

	sheets, err := BuildDiagnostics(c)
	require.NoError(t, err)

	byType := sheetNamed(t, sheets, OutDiagByType)
	assert.Equal(t, [][]any{{2020, "MEDIANA", "LEAN", 1.0, 1.0}}, byType.Rows)
}

func TestDiagnosticsHistorySheet(t *testing.T) {
	w := workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "TAMANO"},
			{"0991300333001", "TONISA S.A.", "MEDIANA"},
		},
		"DIAGNOSTICOS": {
			{"RAZON SOCIAL", "FECHA", "TIPO"},
			{"TONISA S.A.", "2024-01-15", "Lean"},
		},
		"DIAGNOSTICOS_HISTORICOS": {
			{"RAZON SOCIAL", "LEAN", "RRHH"},
			{"TONISA S.A.", "1", "X"},
		},
	})
	c := newContext(w)
	c.HistYear = 2020

	sheets, err := BuildDiagnostics(c)
	require.NoError(t, err)

	byType := sheetNamed(t, sheets, OutDiagByType)
	assert.Equal(t, [][]any{
		{2024, "MEDIANA", "LEAN", 1.0, 1.0},
		{2020, "MEDIANA", "LEAN", 1.0, 0.5},
		{2020, "MEDIANA", "RRHH", 1.0, 0.5},
	}, byType.Rows)
}

func TestSizes(t *testing.T) {
	w := workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "TAMANO", "FECHA_AFILIACION", "T2021", "T2022", "T2023"},
			{"0991300333001", "TONISA S.A.", "MEDIANA", "15/03/2019", "2", "3", ""},
			{"0992257946001", "MUNDOCARE S.A.", "", "", "1", "1", ""},
		},
		"VENTAS_SOCIO": {
			{"RUC", "RAZON_SOCIAL", "ANIO", "VENTAS"},
			{"0991300333001", "TONISA S.A.", "2023", "6,000,000"},
			{"0992257946001", "MUNDOCARE S.A.", "2022", "500000"},
			{"0991300333001", "TONISA S.A.", "2018", "10"},
		},
	})
	c := newContext(w)

	sheets, err := BuildSizes(c)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Run.Duplicates)

	detail := sheetNamed(t, sheets, OutSizeDetail)
	require.Len(t, detail.Rows, 6)
	assert.Equal(t, []any{"0991300333001", "TONISA S.A.", 2023, "GRANDE", "VENTAS_SOCIO"}, detail.Rows[0])
	assert.Equal(t, []any{"0992257946001", "MUNDOCARE S.A.", 2022, "MICRO", "SOCIOS"}, detail.Rows[1])
	assert.Equal(t, []any{"0991300333001", "TONISA S.A.", 2019, "MEDIANA", "SOCIOS"}, detail.Rows[5])

	pivot := sheetNamed(t, sheets, OutSizeTransitions)
	assert.Equal(t, [][]any{
		{2023, 2023, "GRANDE", "GRANDE", 4, 4, 1, 1.0, "SIN_CAMBIO", 0},
		{2022, 2023, "MEDIANA", "GRANDE", 3, 4, 1, 1.0, "CRECIMIENTO", 1},
		{2022, 2022, "MICRO", "MICRO", 1, 1, 1, 1.0, "SIN_CAMBIO", 0},
		{2021, 2022, "MICRO", "MICRO", 1, 1, 1, 1.0, "SIN_CAMBIO", 0},
		{2021, 2022, "PEQUENA", "MEDIANA", 2, 3, 1, 1.0, "CRECIMIENTO", 1},
		{2019, 2021, "MEDIANA", "PEQUENA", 3, 2, 1, 1.0, "DECRECIMIENTO", -1},
	}, pivot.Rows)
	assert.Equal(t, types.FormatPercent, pivot.Formats["PCT_ORIGEN"])

	latest := sheetNamed(t, sheets, OutSizeLatest)
	require.Len(t, latest.Rows, 1)
	assert.Equal(t, 2022, latest.Rows[0][0])
	full := sheetNamed(t, sheets, OutSizeLatestFull)
	require.Len(t, full.Rows, 1)
	assert.Equal(t, "MEDIANA -> GRANDE", full.Rows[0][len(full.Header)-1])

	flows := sheetNamed(t, sheets, OutSizeFlows)
	require.Len(t, flows.Rows, 6)
	assert.Equal(t, []any{2023, "GRANDE -> GRANDE", "GRANDE", "GRANDE", 4, 4, 1, 1.0, "SIN_CAMBIO", 0, "1 (100.00%)"}, flows.Rows[0])
	assert.Equal(t, "CRECIMIENTO", flows.Rows[1][8])

	master := sheetNamed(t, sheets, OutSizeMaster)
	require.Len(t, master.Rows, 6)
	assert.Equal(t, []any{2022, 2023, "MEDIANA -> GRANDE", "MEDIANA", "GRANDE", 3, 4, 1, 1.0, "CRECIMIENTO", 1, "1 (100.00%)"}, master.Rows[1])
}

func TestAdvisoriesFromDiagnostics(t *testing.T) {
	w := workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "TAMANO"},
			{"0991300333001", "TONISA S.A.", "MEDIANA"},
			{"0992257946001", "MUNDOCARE S.A.", "MICRO"},
		},
		"DIAGNOSTICOS": {
			{"RUC", "RAZON SOCIAL", "FECHA", "TIPO", "SUBTIPO", "SE_DIAGNOSTICO", "TOTAL_ASESORIAS"},
			{"0991300333001", "TONISA S.A.", "2024-03-01", "Legal", "Laboral", "SI", "2"},
			{"0991300333001", "TONISA S.A.", "2024-06-01", "Legal", "Societario", "SI", ""},
			{"0992257946001", "MUNDOCARE S.A.", "", "Legal", "", "NO", ""},
			{"0991300333001", "TONISA S.A.", "2024-06-01", "Lean", "", "SI", ""},
		},
	})
	c := newContext(w)

	sheets, err := BuildAdvisories(c)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Run.Skipped)
	assert.Equal(t, 1, c.Run.Duplicates)

	summary := sheetNamed(t, sheets, OutAdvSummary)
	require.Len(t, summary.Rows, 5)
	assert.Equal(t, []any{2024, "MICRO", 0.0, 0, 1, 1}, summary.Rows[0])
	assert.Equal(t, []any{2024, "MEDIANA", 2.0, 1, 0, 1}, summary.Rows[2])

	bySubtype := sheetNamed(t, sheets, OutAdvBySubtype)
	assert.Equal(t, [][]any{{2024, "MEDIANA", "LABORAL", 2.0, 1.0}}, bySubtype.Rows)

	byCompany := sheetNamed(t, sheets, OutAdvByCompany)
	assert.Equal(t, [][]any{
		{2024, "MEDIANA", "0991300333001", "TONISA S.A.", "SIN CLASIFICAR", 2.0, "LABORAL", 1},
	}, byCompany.Rows)
}

func TestAdvisoriesPreferLegalSheets(t *testing.T) {
	header := []string{"RUC", "RAZON SOCIAL", "SERVICIO LEGAL", "LABORAL", "SOCIETARIO", "TOTAL"}
	w := workbook(t, map[string][][]string{
		"SOCIOS": {
			{"RUC", "RAZON SOCIAL", "TAMANO"},
			{"0991300333001", "TONISA S.A.", "MEDIANA"},
			{"0992257946001", "MUNDOCARE S.A.", "MICRO"},
		},
		"LEGAL 1": {
			header,
			{"0991300333001", "TONISA S.A.", "SI", "1", "1", "4"},
			{"0992257946001", "MUNDOCARE S.A.", "NO", "", "", ""},
		},
		"LEGAL 2": {
			header,
			{"0991300333001", "TONISA S.A.", "", "2", "", ""},
		},
		"DIAGNOSTICOS": {
			{"RAZON SOCIAL", "TIPO"},
			{"TONISA S.A.", "Legal"},
		},
	})
	c := newContext(w)

	sheets, err := BuildAdvisories(c)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Run.Skipped)
	assert.Zero(t, c.Run.RowsRead["DIAGNOSTICOS"])

	summary := sheetNamed(t, sheets, OutAdvSummary)
	assert.Equal(t, []any{2025, "MICRO", 0.0, 0, 1, 1}, summary.Rows[0])
	assert.Equal(t, []any{2025, "MEDIANA", 4.0, 1, 0, 1}, summary.Rows[2])

	bySubtype := sheetNamed(t, sheets, OutAdvBySubtype)
	assert.Equal(t, [][]any{
		{2025, "MEDIANA", "LABORAL", 2.0, 0.5},
		{2025, "MEDIANA", "OTROS", 1.0, 0.25},
		{2025, "MEDIANA", "SOCIETARIO", 1.0, 0.25},
	}, bySubtype.Rows)

	byCompany := sheetNamed(t, sheets, OutAdvByCompany)
	require.Len(t, byCompany.Rows, 1)
	assert.Equal(t, "LABORAL, SOCIETARIO, OTROS", byCompany.Rows[0][6])
}

func TestEveryDashboardWritesItsOutputs(t *testing.T) {
	w := workbook(t, nil)
	for _, d := range All() {
		t.Run(d.Name, func(t *testing.T) {
			sheets, err := d.Build(newContext(w))
			require.NoError(t, err)
			names := make([]string, len(sheets))
			for i, s := range sheets {
				names[i] = s.Name
			}
			assert.Equal(t, d.Outputs, names)
		})
	}
}

func TestOutputNamesFitExcel(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range All() {
		for _, name := range d.Outputs {
			assert.LessOrEqual(t, utf8.RuneCountInString(name), excelize.MaxSheetNameLength, name)
			assert.False(t, seen[name], name)
			seen[name] = true
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	d, ok := Lookup("diagnostics")
	require.True(t, ok)
	assert.Equal(t, OutDiagMaster, d.Outputs[len(d.Outputs)-1])

	_, ok = Lookup("dash9")
	assert.False(t, ok)
}
