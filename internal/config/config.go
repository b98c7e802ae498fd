// Package config reads runtime settings from the environment and the
// optional YAML overrides file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"capig-dash-go/internal/types"
)

type Config struct {
	WorkbookPath    string
	WorkbookURL     string
	OutputPath      string
	SQLitePath      string
	OverridesPath   string
	Port            string
	DefaultHistYear int
	TopN            int
	FetchTimeout    time.Duration

	Fields    types.Fields
	Overrides []types.Override
}

// File is the layout of the YAML overrides file.
type File struct {
	Overrides []types.Override `yaml:"overrides"`
	Aliases   types.Fields     `yaml:"aliases"`
}

// DefaultOverrides are the name spellings known to belong to a RUC.
func DefaultOverrides() []types.Override {
	return []types.Override{
		{RUC: "0991300333001", Aliases: []string{"JAZUL", "TONISA", "TONISA S.A.", "TONISA SA"}},
		{RUC: "0992257946001", Aliases: []string{"MUNDOCARE", "MUNDOCARE S.A.", "MUNDOCARE SA", "ECUASERVIGLOBAL", "ECUASERVIGLOBAL S.A."}},
		{RUC: "0991318380001", Aliases: []string{
			"CORDOVA DONOSO SONIA SALOME", "CONSTRUME",
			"CONSTRUCCIONES CIVILES Y METALICAS CONSTRUME", "CONSTRUCCIONES CIVILES Y METALICAS CONSTRUME S.A.",
		}},
	}
}

func Default() Config {
	return Config{
		WorkbookPath:    "registry.xlsx",
		Port:            "8080",
		DefaultHistYear: 2025,
		TopN:            5,
		FetchTimeout:    30 * time.Second,
		Fields:          types.DefaultFields(),
		Overrides:       DefaultOverrides(),
	}
}

// Load builds a Config from the environment. Call godotenv.Load first when
// a .env file should be honoured.
func Load() (Config, error) {
	c := Default()
	c.WorkbookPath = envOr("WORKBOOK_PATH", c.WorkbookPath)
	c.WorkbookURL = os.Getenv("WORKBOOK_URL")
	c.OutputPath = envOr("OUTPUT_PATH", c.WorkbookPath)
	c.SQLitePath = os.Getenv("SQLITE_PATH")
	c.OverridesPath = os.Getenv("OVERRIDES_PATH")
	c.Port = envOr("PORT", c.Port)

	var err error
	if c.DefaultHistYear, err = envInt("DEFAULT_HIST_YEAR", c.DefaultHistYear); err != nil {
		return c, err
	}
	if c.TopN, err = envInt("TOP_N", c.TopN); err != nil {
		return c, err
	}
	secs, err := envInt("FETCH_TIMEOUT_SEC", int(c.FetchTimeout/time.Second))
	if err != nil {
		return c, err
	}
	c.FetchTimeout = time.Duration(secs) * time.Second

	if c.OverridesPath != "" {
		f, err := LoadFile(c.OverridesPath)
		if err != nil {
			return c, err
		}
		c.Fields = c.Fields.Merge(f.Aliases)
		c.Overrides = append(c.Overrides, f.Overrides...)
	}
	return c, nil
}

// LoadFile parses the YAML overrides file at path.
func LoadFile(path string) (File, error) {
	var f File
	b, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read overrides: %w", err)
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("parse overrides %s: %w", path, err)
	}
	for i, o := range f.Overrides {
		if o.RUC == "" {
			return f, fmt.Errorf("parse overrides %s: entry %d has no ruc", path, i)
		}
	}
	return f, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}
