package queue

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"gosubgroup/domain/subgroup"
)

// Candidates is an insertion-ordered set of descriptions waiting to be
// refined. A description already present is never added twice.
type Candidates struct {
	items *linkedhashmap.Map
}

// NewCandidates creates an empty candidate queue
func NewCandidates() *Candidates {
	return &Candidates{items: linkedhashmap.New()}
}

// Enqueue adds d unless an equal description is queued; reports whether it was added.
func (c *Candidates) Enqueue(d subgroup.Description) bool {
	key := d.Key()
	if _, found := c.items.Get(key); found {
		return false
	}
	c.items.Put(key, d)
	return true
}

// AddAll enqueues every description in order
func (c *Candidates) AddAll(ds []subgroup.Description) {
	for _, d := range ds {
		c.Enqueue(d)
	}
}

// Dequeue removes and returns the oldest description
func (c *Candidates) Dequeue() (subgroup.Description, bool) {
	keys := c.items.Keys()
	if len(keys) == 0 {
		return subgroup.Description{}, false
	}
	v, _ := c.items.Get(keys[0])
	c.items.Remove(keys[0])
	return v.(subgroup.Description), true
}

// Values returns the queued descriptions in insertion order
func (c *Candidates) Values() []subgroup.Description {
	raw := c.items.Values()
	out := make([]subgroup.Description, len(raw))
	for i, v := range raw {
		out[i] = v.(subgroup.Description)
	}
	return out
}

// Len returns the number of queued descriptions
func (c *Candidates) Len() int { return c.items.Size() }

// IsEmpty reports whether nothing is queued
func (c *Candidates) IsEmpty() bool { return c.items.Empty() }

// Clear removes every description
func (c *Candidates) Clear() { c.items.Clear() }
