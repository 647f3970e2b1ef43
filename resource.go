package vrp

import "math"

// Resource vector layout used by the pricing subproblems. All entries
// are monotone along a path except resDelta, which is carried only for
// dominance of the distribution/collection check.
const (
	resStops   = iota // customers visited
	resLoad           // delivered demand
	resElapsed        // travel plus service time
	resArrival        // clock including waiting, time windows only
	resCollect        // collected amount
	resDelta          // collected minus delivered
	resPeak           // max prefix of resDelta, onboard peak proxy
	numResources
)

// resourceModel evaluates feasibility of partial routes for one vehicle
// type. A zero capacity, stop or duration limit means unconstrained.
type resourceModel struct {
	g           *Graph
	vehicleType int
	maxStops    float64
	capacity    float64
	duration    float64
	timeWindows bool
	distCollect bool
}

func (p *Problem) newResourceModel(g *Graph, vehicleType int, stopCap int) *resourceModel {
	m := &resourceModel{
		g:           g,
		vehicleType: vehicleType,
		maxStops:    math.Inf(1),
		capacity:    math.Inf(1),
		duration:    math.Inf(1),
		timeWindows: p.TimeWindows,
		distCollect: p.DistributionCollection,
	}
	if p.NumStops > 0 {
		m.maxStops = float64(p.NumStops)
	}
	if p.stopBound > 0 && float64(p.stopBound) < m.maxStops {
		m.maxStops = float64(p.stopBound)
	}
	if stopCap > 0 && float64(stopCap) < m.maxStops {
		m.maxStops = float64(stopCap)
	}
	if cap := p.capacityFor(vehicleType); cap > 0 {
		m.capacity = float64(cap)
	}
	if p.Duration > 0 {
		m.duration = float64(p.Duration)
	}
	return m
}

func (m *resourceModel) Init() []float64 {
	res := make([]float64, numResources)
	if m.timeWindows {
		if src := m.g.Node(SourceID); src != nil {
			res[resArrival] = src.TWLower
		}
	}
	return res
}

func (m *resourceModel) Extend(res []float64, tail, head string) ([]float64, bool) {
	e, ok := m.g.Edge(tail, head)
	if !ok {
		return nil, false
	}
	hn := m.g.Node(head)
	tn := m.g.Node(tail)
	next := append([]float64{}, res...)

	if head != SinkID {
		next[resStops]++
		if next[resStops] > m.maxStops {
			return nil, false
		}
	}

	next[resLoad] += hn.Demand
	if next[resLoad] > m.capacity {
		return nil, false
	}

	next[resElapsed] += e.Time + hn.ServiceTime
	if next[resElapsed] > m.duration {
		return nil, false
	}

	if m.timeWindows {
		depart := next[resArrival] + tn.ServiceTime + e.Time
		arrive := math.Max(depart, hn.TWLower)
		if arrive > hn.TWUpper {
			return nil, false
		}
		next[resArrival] = arrive
	}

	if m.distCollect {
		next[resCollect] += hn.Collect
		if next[resCollect] > m.capacity {
			return nil, false
		}
		next[resDelta] = next[resCollect] - next[resLoad]
		if next[resDelta] > next[resPeak] {
			next[resPeak] = next[resDelta]
		}
	}
	return next, true
}

// Finalize checks the complete route. With simultaneous distribution and
// collection the onboard peak is total deliveries plus the worst prefix
// of collected-minus-delivered, which only becomes known at the Sink.
func (m *resourceModel) Finalize(res []float64) bool {
	if !m.distCollect {
		return true
	}
	return res[resLoad]+math.Max(res[resPeak], 0) <= m.capacity
}

// feasibleRoute walks a full Source..Sink sequence through the resource
// extensions and reports the delivered load.
func (m *resourceModel) feasibleRoute(nodes []string) (float64, bool) {
	if len(nodes) < 2 || nodes[0] != SourceID || nodes[len(nodes)-1] != SinkID {
		return 0, false
	}
	res := m.Init()
	ok := false
	for i := 0; i+1 < len(nodes); i++ {
		res, ok = m.Extend(res, nodes[i], nodes[i+1])
		if !ok {
			return 0, false
		}
	}
	if !m.Finalize(res) {
		return 0, false
	}
	return res[resLoad], true
}
