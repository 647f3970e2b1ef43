// Package labeling implements a label-setting algorithm for the
// elementary shortest path problem with resource constraints. The caller
// supplies the arc weights and a Model that extends resource vectors
// along arcs and accepts or rejects partial paths.
package labeling

import (
	"container/heap"
	"errors"
	"math"
	"time"
)

var ErrDeadline = errors.New("labeling: deadline exceeded")

// Model encodes the resource semantics of one subproblem. Extend returns
// the resource vector after traversing (tail, head) and whether the
// extension stays feasible. Finalize runs once for labels reaching the
// sink and may reject the complete path.
type Model interface {
	Init() []float64
	Extend(res []float64, tail, head string) ([]float64, bool)
	Finalize(res []float64) bool
}

type Arc struct {
	Tail, Head string
	Weight     float64
}

type Instance struct {
	Source string
	Sink   string
	Arcs   []Arc
}

type Options struct {
	// Exact keeps all non-dominated labels. When false, at most
	// MaxLabels labels are retained per node, trading optimality for
	// speed.
	Exact     bool
	MaxLabels int
	Deadline  time.Time
}

type Path struct {
	Nodes     []string
	Weight    float64
	Resources []float64
}

type label struct {
	node    int
	weight  float64
	res     []float64
	visited []uint64
	prev    *label
	index   int // heap bookkeeping
}

func (l *label) visits(n int) bool {
	return l.visited[n/64]&(1<<(uint(n)%64)) != 0
}

func (l *label) markVisited(n int) {
	l.visited[n/64] |= 1 << (uint(n) % 64)
}

type labelHeap []*label

func (h labelHeap) Len() int            { return len(h) }
func (h labelHeap) Less(i, j int) bool  { return h[i].weight < h[j].weight }
func (h labelHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *labelHeap) Push(x interface{}) { l := x.(*label); l.index = len(*h); *h = append(*h, l) }
func (h *labelHeap) Pop() interface{} {
	old := *h
	n := len(old)
	l := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return l
}

// Solve returns the minimum-weight elementary source-sink path that is
// feasible under the model, or nil when no feasible path exists.
func Solve(inst *Instance, model Model, opts Options) (*Path, error) {
	ids := map[string]int{}
	var names []string
	nodeID := func(name string) int {
		if id, ok := ids[name]; ok {
			return id
		}
		ids[name] = len(names)
		names = append(names, name)
		return len(names) - 1
	}
	src := nodeID(inst.Source)
	snk := nodeID(inst.Sink)

	type outArc struct {
		head   int
		weight float64
	}
	adj := map[int][]outArc{}
	for _, a := range inst.Arcs {
		t, h := nodeID(a.Tail), nodeID(a.Head)
		adj[t] = append(adj[t], outArc{head: h, weight: a.Weight})
	}
	words := (len(names) + 63) / 64

	start := &label{node: src, res: model.Init(), visited: make([]uint64, words)}
	start.markVisited(src)

	pq := &labelHeap{}
	heap.Init(pq)
	heap.Push(pq, start)

	kept := make(map[int][]*label)
	kept[src] = []*label{start}

	var best *label
	popped := 0
	for pq.Len() > 0 {
		popped++
		if popped%256 == 0 && !opts.Deadline.IsZero() && time.Now().After(opts.Deadline) {
			if best != nil {
				break
			}
			return nil, ErrDeadline
		}
		// Arc weights may be negative (reduced costs), so no pruning
		// against the incumbent: dominance alone bounds the search.
		cur := heap.Pop(pq).(*label)
		for _, a := range adj[cur.node] {
			if cur.visits(a.head) {
				continue
			}
			res, ok := model.Extend(cur.res, names[cur.node], names[a.head])
			if !ok {
				continue
			}
			next := &label{
				node:    a.head,
				weight:  cur.weight + a.weight,
				res:     res,
				visited: append([]uint64{}, cur.visited...),
				prev:    cur,
			}
			next.markVisited(a.head)
			if a.head == snk {
				if !model.Finalize(res) {
					continue
				}
				if best == nil || next.weight < best.weight {
					best = next
				}
				continue
			}
			if !insertLabel(kept, a.head, next, opts) {
				continue
			}
			heap.Push(pq, next)
		}
	}

	if best == nil {
		return nil, nil
	}
	var rev []string
	for l := best; l != nil; l = l.prev {
		rev = append(rev, names[l.node])
	}
	path := &Path{Weight: best.weight, Resources: best.res}
	for i := len(rev) - 1; i >= 0; i-- {
		path.Nodes = append(path.Nodes, rev[i])
	}
	return path, nil
}

// insertLabel applies dominance at a node and reports whether the new
// label survives. A label dominates another when its weight and all
// resources are no worse and it has visited a subset of the nodes.
func insertLabel(kept map[int][]*label, node int, next *label, opts Options) bool {
	list := kept[node]
	out := list[:0]
	for _, l := range list {
		if dominates(l, next) {
			return false
		}
		if !dominates(next, l) {
			out = append(out, l)
		}
	}
	out = append(out, next)
	if !opts.Exact && opts.MaxLabels > 0 && len(out) > opts.MaxLabels {
		// Drop the heaviest label to bound the frontier.
		worst := 0
		for i, l := range out {
			if l.weight > out[worst].weight {
				worst = i
			}
		}
		out = append(out[:worst], out[worst+1:]...)
	}
	kept[node] = out
	return true
}

func dominates(a, b *label) bool {
	if a.weight > b.weight+1e-12 {
		return false
	}
	for i := range a.res {
		if a.res[i] > b.res[i]+1e-9 {
			return false
		}
	}
	for i := range a.visited {
		if a.visited[i]&^b.visited[i] != 0 {
			return false
		}
	}
	return true
}

// MinWeight is a convenience for callers that only need the value.
func MinWeight(p *Path) float64 {
	if p == nil {
		return math.Inf(1)
	}
	return p.Weight
}
