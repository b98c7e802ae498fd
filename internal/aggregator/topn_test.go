package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type company struct {
	key   string
	sales float64
}

func TestTopNTieBreakByKey(t *testing.T) {
	t.Parallel()

	items := []company{{"c", 10}, {"a", 10}, {"d", 50}, {"b", 10}, {"e", 1}}
	value := func(c company) float64 { return c.sales }
	key := func(c company) string { return c.key }

	top := TopN(items, 3, value, key)
	require.Len(t, top, 3)
	assert.Equal(t, "d", top[0].Item.key)
	assert.Equal(t, "a", top[1].Item.key)
	assert.Equal(t, "b", top[2].Item.key)
	assert.Equal(t, []int{1, 2, 3}, []int{top[0].Rank, top[1].Rank, top[2].Rank})

	reversed := []company{items[4], items[3], items[2], items[1], items[0]}
	assert.Equal(t, top, TopN(reversed, 3, value, key))

	assert.Len(t, TopN(items, 0, value, key), 5)
	assert.Len(t, TopN(items, 10, value, key), 5)
}

func TestPartition(t *testing.T) {
	t.Parallel()

	keys, parts := Partition([]company{{"a", 1}, {"b", 2}, {"a", 3}}, func(c company) string { return c.key })
	assert.Equal(t, []string{"a", "b"}, keys)
	assert.Len(t, parts["a"], 2)
}
