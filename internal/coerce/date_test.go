package coerce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	t.Parallel()

	cases := map[string]time.Time{
		"2023-05-17":          time.Date(2023, 5, 17, 0, 0, 0, 0, time.UTC),
		"2023-05-17 10:30:00": time.Date(2023, 5, 17, 10, 30, 0, 0, time.UTC),
		"2023/05/17":          time.Date(2023, 5, 17, 0, 0, 0, 0, time.UTC),
		"17/05/2023":          time.Date(2023, 5, 17, 0, 0, 0, 0, time.UTC),
		"7-5-23":              time.Date(2023, 5, 7, 0, 0, 0, 0, time.UTC),
		"01/02/2024 08:00":    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		"45292":               time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, ok := Date(in)
		require.True(t, ok, "input %q", in)
		assert.True(t, want.Equal(got), "input %q got %s", in, got)
	}
}

func TestDateRejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "hoy", "31/02/2023", "12/13/2023", "2023", "1/2", "1/2/123", "1/2/20231"} {
		_, ok := Date(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestYear(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"2023":       2023,
		" 2021 ":     2021,
		"2022.0":     2022,
		"15/03/2020": 2020,
		"45292":      2024,
	}
	for in, want := range cases {
		got, ok := Year(in)
		require.True(t, ok, "input %q", in)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"SIN FECHA", "2/0/19", "20-19", "2023-13-01"} {
		_, ok := Year(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestQuarter(t *testing.T) {
	t.Parallel()

	for m, want := range map[time.Month]string{1: "Q1", 3: "Q1", 4: "Q2", 8: "Q3", 12: "Q4"} {
		assert.Equal(t, want, Quarter(time.Date(2023, m, 1, 0, 0, 0, 0, time.UTC)))
	}
}
