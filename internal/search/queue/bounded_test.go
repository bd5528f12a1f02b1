package queue

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBounded_AcceptsBelowCapacity(t *testing.T) {
	q := NewBounded[string](3)
	assert.True(t, q.Add("a", 0.1, nil))
	assert.True(t, q.Add("b", -5, nil))
	assert.True(t, q.Add("c", 0.3, nil))
	assert.Equal(t, 3, q.Len())
	assert.True(t, q.Full())
	assert.Equal(t, []string{"c", "a", "b"}, q.Items())
}

func TestBounded_EvictsMinimumOnlyWhenStrictlyGreater(t *testing.T) {
	q := NewBounded[string](2)
	q.Add("a", 0.1, nil)
	q.Add("b", 0.2, nil)

	// Equal to the minimum: the existing entry survives
	assert.False(t, q.Add("tie", 0.1, nil))
	assert.Equal(t, []string{"b", "a"}, q.Items())

	// Below the minimum: silent no-op
	assert.False(t, q.Add("low", 0.05, nil))
	assert.Equal(t, 2, q.Len())

	assert.True(t, q.Add("high", 0.15, nil))
	assert.Equal(t, []string{"b", "high"}, q.Items())
}

func TestBounded_TieBreakLaterInsertionFirst(t *testing.T) {
	q := NewBounded[string](4)
	q.Add("first", 0.5, nil)
	q.Add("second", 0.5, nil)
	q.Add("third", 0.7, nil)

	values := q.Values()
	require.Len(t, values, 3)
	assert.Equal(t, "third", values[0].Item)
	assert.Equal(t, "second", values[1].Item)
	assert.Equal(t, "first", values[2].Item)
	assert.Greater(t, values[1].Seq, values[2].Seq)
}

func TestBounded_AuxPayloadKept(t *testing.T) {
	q := NewBounded[string](1)
	q.Add("a", 1, map[string]int{"size": 10})
	v := q.Values()[0]
	assert.Equal(t, map[string]int{"size": 10}, v.Aux)
}

func TestBounded_MinMonotoneAtCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	q := NewBounded[int](10)

	prevMin := 0.0
	for i := 0; i < 2000; i++ {
		q.Add(i, rng.NormFloat64(), nil)
		if q.Len() > q.Cap() {
			t.Fatalf("queue exceeded capacity: %d > %d", q.Len(), q.Cap())
		}
		if !q.Full() {
			continue
		}
		minEntry, ok := q.Min()
		require.True(t, ok)
		if i >= q.Cap() && minEntry.Quality < prevMin {
			t.Fatalf("minimum decreased from %f to %f at step %d", prevMin, minEntry.Quality, i)
		}
		prevMin = minEntry.Quality
	}
}

func TestBounded_KeepsTopK(t *testing.T) {
	q := NewBounded[int](5)
	for i := 0; i < 100; i++ {
		q.Add(i, float64(i), nil)
	}
	assert.Equal(t, []int{99, 98, 97, 96, 95}, q.Items())
}

func TestBounded_ZeroCapacity(t *testing.T) {
	q := NewBounded[int](0)
	assert.False(t, q.Add(1, 1, nil))
	assert.Equal(t, 0, q.Len())
	_, ok := q.Min()
	assert.False(t, ok)
}
