// Package aggregator builds pivot-shaped group-by tables from typed records.
package aggregator

import (
	"sort"
	"strings"
)

type Kind int

const (
	// Sum adds Value(r) per group.
	Sum Kind = iota
	// Count counts records per group.
	Count
	// Distinct counts distinct Key(r) per group; empty keys are ignored.
	Distinct
)

type Dimension[R any] struct {
	Name  string
	Value func(R) string
}

type Measure[R any] struct {
	Name  string
	Kind  Kind
	Value func(R) float64
	Key   func(R) string
}

// Spec describes one pivot: group keys, measures, an optional record filter
// and the output order.
type Spec[R any] struct {
	Dimensions []Dimension[R]
	Measures   []Measure[R]
	Filter     func(R) bool
	Less       func(a, b Row) bool
}

// Row is one flattened group.
type Row struct {
	Dims   []string
	Values []float64
}

func (r Row) Dim(i int) string    { return r.Dims[i] }
func (r Row) Value(i int) float64 { return r.Values[i] }
func (r Row) Int(i int) int       { return int(r.Values[i]) }

type group struct {
	dims []string
	sums []float64
	sets []map[string]struct{}
}

// Build groups records by the spec dimensions and accumulates its measures.
// Groups come out ordered by spec.Less, or by dimensions when Less is nil.
func Build[R any](records []R, spec Spec[R]) []Row {
	groups := map[string]*group{}
	var order []*group
	for _, r := range records {
		if spec.Filter != nil && !spec.Filter(r) {
			continue
		}
		dims := make([]string, len(spec.Dimensions))
		for i, d := range spec.Dimensions {
			dims[i] = d.Value(r)
		}
		k := strings.Join(dims, "\x1f")
		g, ok := groups[k]
		if !ok {
			g = &group{dims: dims, sums: make([]float64, len(spec.Measures)), sets: make([]map[string]struct{}, len(spec.Measures))}
			groups[k] = g
			order = append(order, g)
		}
		for i, m := range spec.Measures {
			switch m.Kind {
			case Sum:
				g.sums[i] += m.Value(r)
			case Count:
				g.sums[i]++
			case Distinct:
				key := m.Key(r)
				if key == "" {
					continue
				}
				if g.sets[i] == nil {
					g.sets[i] = map[string]struct{}{}
				}
				g.sets[i][key] = struct{}{}
			}
		}
	}

	out := make([]Row, 0, len(order))
	for _, g := range order {
		vals := make([]float64, len(spec.Measures))
		for i, m := range spec.Measures {
			if m.Kind == Distinct {
				vals[i] = float64(len(g.sets[i]))
			} else {
				vals[i] = g.sums[i]
			}
		}
		out = append(out, Row{Dims: g.dims, Values: vals})
	}
	less := spec.Less
	if less == nil {
		less = ByDims
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// ByDims orders rows lexicographically by their dimension values.
func ByDims(a, b Row) bool {
	for i := range a.Dims {
		if i >= len(b.Dims) {
			return false
		}
		if a.Dims[i] != b.Dims[i] {
			return a.Dims[i] < b.Dims[i]
		}
	}
	return len(a.Dims) < len(b.Dims)
}

// Ratio divides, returning 0 when den is 0.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Seen is a dedup set over composite keys.
type Seen map[string]struct{}

// Add records the key built from parts and reports whether it was new.
func (s Seen) Add(parts ...string) bool {
	k := strings.Join(parts, "|")
	if _, ok := s[k]; ok {
		return false
	}
	s[k] = struct{}{}
	return true
}

// Has reports whether the key built from parts was added before.
func (s Seen) Has(parts ...string) bool {
	_, ok := s[strings.Join(parts, "|")]
	return ok
}
