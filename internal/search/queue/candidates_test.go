package queue

import (
	"testing"

	"gosubgroup/domain/subgroup"

	"github.com/stretchr/testify/assert"
)

func TestCandidates_Deduplicates(t *testing.T) {
	c := NewCandidates()
	a := subgroup.NewDescription(subgroup.Greater("x", 1))
	b := subgroup.NewDescription(subgroup.Equal("color", "red"))

	assert.True(t, c.Enqueue(a))
	assert.True(t, c.Enqueue(b))
	assert.False(t, c.Enqueue(subgroup.NewDescription(subgroup.Greater("x", 1))))

	assert.Equal(t, 2, c.Len())
	values := c.Values()
	assert.True(t, values[0].Equal(a))
	assert.True(t, values[1].Equal(b))
}

func TestCandidates_KeepsLookalikeDescriptions(t *testing.T) {
	c := NewCandidates()
	single := subgroup.NewDescription(subgroup.Equal("c", "x' and d == 'y"))
	pair := subgroup.NewDescription(subgroup.Equal("c", "x"), subgroup.Equal("d", "y"))

	assert.True(t, c.Enqueue(single))
	assert.True(t, c.Enqueue(pair))
	assert.Equal(t, 2, c.Len())
}

func TestCandidates_DequeueFIFO(t *testing.T) {
	c := NewCandidates()
	c.AddAll([]subgroup.Description{
		subgroup.CatchAll(),
		subgroup.NewDescription(subgroup.Greater("x", 1)),
	})

	first, ok := c.Dequeue()
	assert.True(t, ok)
	assert.True(t, first.IsEmpty())

	second, ok := c.Dequeue()
	assert.True(t, ok)
	assert.Equal(t, "x > 1", second.String())

	_, ok = c.Dequeue()
	assert.False(t, ok)
	assert.True(t, c.IsEmpty())
}

func TestCandidates_Clear(t *testing.T) {
	c := NewCandidates()
	c.Enqueue(subgroup.CatchAll())
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Enqueue(subgroup.CatchAll()), "a cleared queue accepts the description again")
}
