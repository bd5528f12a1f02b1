package strategy

import (
	"math"

	pq "github.com/emirpasic/gods/queues/priorityqueue"

	"gosubgroup/domain/subgroup"
)

// BestFirst expands the frontier node with the highest optimistic estimate
// first and stops once no node can improve the result set.
type BestFirst struct{}

func (BestFirst) Name() string { return "best-first" }

type frontierNode struct {
	estimate float64
	seq      uint64
	desc     subgroup.Description
	// next is the search space index the node's refinements start at
	next int
}

// byEstimate puts the highest estimate on top, oldest first on ties
func byEstimate(a, b interface{}) int {
	x := a.(*frontierNode)
	y := b.(*frontierNode)
	switch {
	case x.estimate > y.estimate:
		return -1
	case x.estimate < y.estimate:
		return 1
	case x.seq < y.seq:
		return -1
	case x.seq > y.seq:
		return 1
	}
	return 0
}

func (s BestFirst) Execute(task Task) (*Result, error) {
	task, eval, err := task.prepare()
	if err != nil {
		return nil, err
	}

	rs := NewResultSet(task.ResultSetSize)
	frontier := pq.NewWith(byEstimate)
	var seq uint64
	frontier.Enqueue(&frontierNode{estimate: math.Inf(1), desc: subgroup.CatchAll()})
	evaluated := 0

	for !frontier.Empty() {
		v, _ := frontier.Dequeue()
		node := v.(*frontierNode)
		if !(node.estimate > minimumRequired(rs, task)) {
			break
		}

		for i := node.next; i < len(task.SearchSpace); i++ {
			p := task.SearchSpace[i]
			if node.desc.Contains(p) {
				continue
			}
			candidate := node.desc.Refine(p)
			cov, err := eval.Cover(candidate)
			if err != nil {
				return nil, err
			}
			if cov.Size == 0 {
				continue
			}
			q, err := task.Quality.Evaluate(cov)
			if err != nil {
				return nil, err
			}
			evaluated++
			AddIfRequired(rs, task, candidate, q, cov)

			if candidate.Len() < task.Depth {
				estimate := task.Quality.OptimisticEstimate(cov)
				if estimate >= minimumRequired(rs, task) && task.constraintsSatisfied(cov) {
					seq++
					frontier.Enqueue(&frontierNode{estimate: estimate, seq: seq, desc: candidate, next: i + 1})
				}
			}
		}
	}

	return &Result{Strategy: s.Name(), Entries: rs.Entries(), Evaluated: evaluated}, nil
}
