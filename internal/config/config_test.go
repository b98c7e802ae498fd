package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"WORKBOOK_PATH", "WORKBOOK_URL", "OUTPUT_PATH", "SQLITE_PATH", "OVERRIDES_PATH", "PORT", "DEFAULT_HIST_YEAR", "TOP_N", "FETCH_TIMEOUT_SEC"} {
		t.Setenv(k, "")
	}

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "registry.xlsx", c.WorkbookPath)
	assert.Equal(t, "registry.xlsx", c.OutputPath)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, 2025, c.DefaultHistYear)
	assert.Equal(t, 5, c.TopN)
	assert.Equal(t, 30*time.Second, c.FetchTimeout)
	assert.Len(t, c.Overrides, 3)
	assert.Contains(t, c.Fields.RUC, "RUC")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WORKBOOK_PATH", "/data/base.xlsx")
	t.Setenv("OUTPUT_PATH", "/data/out.xlsx")
	t.Setenv("TOP_N", "10")
	t.Setenv("FETCH_TIMEOUT_SEC", "5")
	t.Setenv("OVERRIDES_PATH", "")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/base.xlsx", c.WorkbookPath)
	assert.Equal(t, "/data/out.xlsx", c.OutputPath)
	assert.Equal(t, 10, c.TopN)
	assert.Equal(t, 5*time.Second, c.FetchTimeout)
}

func TestLoadBadInt(t *testing.T) {
	t.Setenv("TOP_N", "many")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOP_N")
}

func TestLoadOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
overrides:
  - ruc: "1790000000001"
    aliases: [ACME, "ACME CIA LTDA"]
aliases:
  sales: [VENTAS_2024, VENTAS]
`), 0o644))
	t.Setenv("OVERRIDES_PATH", path)
	t.Setenv("TOP_N", "")

	c, err := Load()
	require.NoError(t, err)
	require.Len(t, c.Overrides, 4)
	assert.Equal(t, "1790000000001", c.Overrides[3].RUC)
	assert.Equal(t, []string{"ACME", "ACME CIA LTDA"}, c.Overrides[3].Aliases)
	assert.Equal(t, []string{"VENTAS_2024", "VENTAS"}, c.Fields.Sales)
	assert.Contains(t, c.Fields.Name, "RAZON_SOCIAL")
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("overrides:\n  - aliases: [X]\n"), 0o644))
	_, err = LoadFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ruc")
}
