package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capig-dash-go/internal/types"
)

func newStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWriteSheetReplacesTable(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	sh := types.NewSheet("PIVOT_VENTAS_ANIO_TAMANO", "ANIO", "TAMANO", "VENTAS_TOTAL", "")
	sh.Append(2023, "MEDIANA", 1000.5)
	sh.Append(2022, "MICRO", 10.0)
	require.NoError(t, s.WriteSheet(ctx, sh))
	require.NoError(t, s.WriteSheet(ctx, sh))

	n, err := s.Count(ctx, sh.Name)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var total float64
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT SUM("VENTAS_TOTAL") FROM "PIVOT_VENTAS_ANIO_TAMANO"`).Scan(&total))
	assert.InDelta(t, 1010.5, total, 1e-9)

	sh.Rows = nil
	require.NoError(t, s.WriteSheet(ctx, sh))
	n, err = s.Count(ctx, sh.Name)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestColumns(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"ANIO", "COL_2", "ANIO_2", "PCT_GENERO"}, columns([]string{"ANIO", "", "anio", "pct genero"}))
}

func TestRunLog(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first := types.NewRunLog("r1", "sales")
	first.Read("SOCIOS", 10)
	first.Outputs["PIVOT_VENTAS_ANIO_TAMANO"] = 4
	first.FinishedAt = first.StartedAt.Add(time.Second)
	require.NoError(t, s.RecordRun(ctx, first))

	second := types.NewRunLog("r2", "gender")
	second.Error = "boom"
	second.FinishedAt = first.FinishedAt.Add(time.Minute)
	require.NoError(t, s.RecordRun(ctx, second))

	runs, err := s.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r2", runs[0].RunID)
	assert.Equal(t, "boom", runs[0].Error)
	assert.Equal(t, 10, runs[1].RowsRead["SOCIOS"])
	assert.Equal(t, 4, runs[1].Outputs["PIVOT_VENTAS_ANIO_TAMANO"])
	assert.Empty(t, runs[1].Error)
}
