// Package queue holds the two worklists of the level-wise search: a bounded
// priority queue that keeps the best scored items, and a deduplicating
// candidate queue that seeds the next level.
package queue

import (
	"slices"

	pq "github.com/emirpasic/gods/queues/priorityqueue"
)

// Scored is an item with its quality, insertion sequence and payload.
type Scored[T any] struct {
	Quality float64
	Seq     uint64
	Item    T
	Aux     any
}

// Bounded retains at most bound items with the highest quality. The
// underlying heap is ordered ascending so the eviction candidate is on top.
type Bounded[T any] struct {
	heap  *pq.Queue
	bound int
	seq   uint64
}

// NewBounded creates an empty queue holding at most bound items
func NewBounded[T any](bound int) *Bounded[T] {
	return &Bounded[T]{
		heap:  pq.NewWith(ascending[T]),
		bound: bound,
	}
}

// ascending orders by quality, then by insertion sequence
func ascending[T any](a, b interface{}) int {
	x := a.(*Scored[T])
	y := b.(*Scored[T])
	return compareScored(x, y)
}

func compareScored[T any](x, y *Scored[T]) int {
	switch {
	case x.Quality < y.Quality:
		return -1
	case x.Quality > y.Quality:
		return 1
	case x.Seq < y.Seq:
		return -1
	case x.Seq > y.Seq:
		return 1
	}
	return 0
}

// Add offers an item. Below capacity it is always kept; at capacity it
// replaces the current minimum only when its quality is strictly greater.
// It reports whether the item was kept.
func (b *Bounded[T]) Add(item T, quality float64, aux any) bool {
	entry := &Scored[T]{Quality: quality, Seq: b.seq, Item: item, Aux: aux}
	b.seq++

	if b.bound <= 0 {
		return false
	}
	if b.heap.Size() < b.bound {
		b.heap.Enqueue(entry)
		return true
	}

	top, _ := b.heap.Peek()
	if quality <= top.(*Scored[T]).Quality {
		return false
	}
	b.heap.Dequeue()
	b.heap.Enqueue(entry)
	return true
}

// Min returns the lowest quality entry
func (b *Bounded[T]) Min() (Scored[T], bool) {
	top, ok := b.heap.Peek()
	if !ok {
		return Scored[T]{}, false
	}
	return *top.(*Scored[T]), true
}

// Len returns the number of stored entries
func (b *Bounded[T]) Len() int { return b.heap.Size() }

// Cap returns the capacity bound
func (b *Bounded[T]) Cap() int { return b.bound }

// Full reports whether the queue is at capacity
func (b *Bounded[T]) Full() bool { return b.heap.Size() >= b.bound }

// Values returns the stored entries by descending quality. Equal qualities
// rank the later insertion first.
func (b *Bounded[T]) Values() []Scored[T] {
	raw := b.heap.Values()
	out := make([]Scored[T], len(raw))
	for i, v := range raw {
		out[i] = *v.(*Scored[T])
	}
	slices.SortFunc(out, func(x, y Scored[T]) int {
		return compareScored(&y, &x)
	})
	return out
}

// Items returns the stored items in Values order
func (b *Bounded[T]) Items() []T {
	values := b.Values()
	items := make([]T, len(values))
	for i, v := range values {
		items[i] = v.Item
	}
	return items
}
