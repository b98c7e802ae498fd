package aggregator

import "sort"

type Ranked[T any] struct {
	Item T
	Rank int
}

// Rank orders items by value descending. Equal values are ordered by key
// ascending, so ranking is independent of input order. Ranks start at 1.
func Rank[T any](items []T, value func(T) float64, key func(T) string) []Ranked[T] {
	out := make([]Ranked[T], len(items))
	for i, it := range items {
		out[i] = Ranked[T]{Item: it}
	}
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := value(out[i].Item), value(out[j].Item)
		if vi != vj {
			return vi > vj
		}
		return key(out[i].Item) < key(out[j].Item)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// TopN is Rank truncated to n entries. n <= 0 keeps everything.
func TopN[T any](items []T, n int, value func(T) float64, key func(T) string) []Ranked[T] {
	r := Rank(items, value, key)
	if n > 0 && len(r) > n {
		r = r[:n]
	}
	return r
}

// Partition splits items by key, keeping first-seen key order.
func Partition[T any](items []T, key func(T) string) ([]string, map[string][]T) {
	var keys []string
	parts := map[string][]T{}
	for _, it := range items {
		k := key(it)
		if _, ok := parts[k]; !ok {
			keys = append(keys, k)
		}
		parts[k] = append(parts[k], it)
	}
	return keys, parts
}
