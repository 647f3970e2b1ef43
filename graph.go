package vrp

import "fmt"

const (
	SourceID = "Source"
	SinkID   = "Sink"
)

// Node carries the customer attributes used by the pricing resources.
// Zero values mean "unconstrained" and are normalized by preprocessing.
type Node struct {
	ID          string
	Demand      float64
	Collect     float64
	ServiceTime float64
	TWLower     float64
	TWUpper     float64
	Frequency   int
	Request     string // delivery node paired with this pickup, if any
}

// Edge holds one cost per vehicle type. Instances with a homogeneous
// fleet keep a single entry.
type Edge struct {
	Tail string
	Head string
	Cost []float64
	Time float64
}

func (e *Edge) CostFor(vehicleType int) float64 {
	if vehicleType < len(e.Cost) {
		return e.Cost[vehicleType]
	}
	return e.Cost[0]
}

// Graph is a directed network with a Source and a Sink depot node.
// Iteration order is the node insertion order, so repeated solves of the
// same input walk the network identically.
type Graph struct {
	nodes map[string]*Node
	order []string
	pos   map[string]int
	succ  map[string]map[string]*Edge
	pred  map[string]map[string]*Edge
}

func NewGraph() *Graph {
	return &Graph{
		nodes: map[string]*Node{},
		pos:   map[string]int{},
		succ:  map[string]map[string]*Edge{},
		pred:  map[string]map[string]*Edge{},
	}
}

func (g *Graph) AddNode(n Node) *Node {
	if old, ok := g.nodes[n.ID]; ok {
		*old = n
		return old
	}
	cp := n
	g.nodes[n.ID] = &cp
	g.pos[n.ID] = len(g.order)
	g.order = append(g.order, n.ID)
	return &cp
}

func (g *Graph) ensureNode(id string) *Node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	return g.AddNode(Node{ID: id})
}

func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	res := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		res = append(res, g.nodes[id])
	}
	return res
}

// Customers returns all nodes except Source and Sink, in insertion order.
func (g *Graph) Customers() []*Node {
	var res []*Node
	for _, id := range g.order {
		if id == SourceID || id == SinkID {
			continue
		}
		res = append(res, g.nodes[id])
	}
	return res
}

func (g *Graph) NumNodes() int { return len(g.order) }

func (g *Graph) AddEdge(tail, head string, cost float64, travel float64) *Edge {
	return g.AddEdgeCosts(tail, head, []float64{cost}, travel)
}

func (g *Graph) AddEdgeCosts(tail, head string, cost []float64, travel float64) *Edge {
	g.ensureNode(tail)
	g.ensureNode(head)
	e := &Edge{Tail: tail, Head: head, Cost: append([]float64{}, cost...), Time: travel}
	if g.succ[tail] == nil {
		g.succ[tail] = map[string]*Edge{}
	}
	if g.pred[head] == nil {
		g.pred[head] = map[string]*Edge{}
	}
	g.succ[tail][head] = e
	g.pred[head][tail] = e
	return e
}

func (g *Graph) Edge(tail, head string) (*Edge, bool) {
	e, ok := g.succ[tail][head]
	return e, ok
}

func (g *Graph) RemoveEdge(tail, head string) {
	delete(g.succ[tail], head)
	delete(g.pred[head], tail)
}

func (g *Graph) RemoveNode(id string) {
	for _, e := range g.Successors(id) {
		g.RemoveEdge(id, e.Head)
	}
	for _, e := range g.Predecessors(id) {
		g.RemoveEdge(e.Tail, id)
	}
	delete(g.nodes, id)
	delete(g.pos, id)
	for i, nid := range g.order {
		if nid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	for i, nid := range g.order {
		g.pos[nid] = i
	}
}

// Successors returns the outgoing edges of a node ordered by head.
func (g *Graph) Successors(id string) []*Edge {
	return g.orderedEdges(g.succ[id], func(e *Edge) string { return e.Head })
}

// Predecessors returns the incoming edges of a node ordered by tail.
func (g *Graph) Predecessors(id string) []*Edge {
	return g.orderedEdges(g.pred[id], func(e *Edge) string { return e.Tail })
}

func (g *Graph) orderedEdges(m map[string]*Edge, key func(*Edge) string) []*Edge {
	if len(m) == 0 {
		return nil
	}
	res := make([]*Edge, 0, len(m))
	for _, e := range m {
		res = append(res, e)
	}
	for i := 1; i < len(res); i++ {
		for j := i; j > 0 && g.pos[key(res[j])] < g.pos[key(res[j-1])]; j-- {
			res[j], res[j-1] = res[j-1], res[j]
		}
	}
	return res
}

// Edges returns all edges, tails in node order, heads in node order.
func (g *Graph) Edges() []*Edge {
	var res []*Edge
	for _, id := range g.order {
		res = append(res, g.Successors(id)...)
	}
	return res
}

func (g *Graph) NumEdges() int {
	count := 0
	for _, m := range g.succ {
		count += len(m)
	}
	return count
}

// Copy returns a deep copy that can be mutated independently.
func (g *Graph) Copy() *Graph {
	cp := NewGraph()
	for _, id := range g.order {
		cp.AddNode(*g.nodes[id])
	}
	for _, e := range g.Edges() {
		cp.AddEdgeCosts(e.Tail, e.Head, e.Cost, e.Time)
	}
	return cp
}

// PathCost sums the edge costs along a node sequence for a vehicle type.
func (g *Graph) PathCost(nodes []string, vehicleType int) (float64, error) {
	total := 0.0
	for i := 0; i+1 < len(nodes); i++ {
		e, ok := g.Edge(nodes[i], nodes[i+1])
		if !ok {
			return 0, fmt.Errorf("no edge (%s,%s)", nodes[i], nodes[i+1])
		}
		total += e.CostFor(vehicleType)
	}
	return total, nil
}
