package vrp

import "math"

// RouteArrivalTimes replays a route on the input network and returns
// the service start time at every node, including waiting for windows
// to open. Index 0 is the departure from the Source.
func (p *Problem) RouteArrivalTimes(r *Route) []float64 {
	times := make([]float64, len(r.Nodes))
	if src := p.G.Node(SourceID); src != nil {
		times[0] = src.TWLower
	}
	for i := 0; i+1 < len(r.Nodes); i++ {
		e, ok := p.G.Edge(r.Nodes[i], r.Nodes[i+1])
		if !ok {
			return nil
		}
		tn := p.G.Node(r.Nodes[i])
		hn := p.G.Node(r.Nodes[i+1])
		arrive := times[i] + tn.ServiceTime + e.Time
		if p.TimeWindows {
			arrive = math.Max(arrive, hn.TWLower)
		}
		times[i+1] = arrive
	}
	return times
}

// RouteDuration is the total travel plus service time of a route.
func (p *Problem) RouteDuration(r *Route) float64 {
	total := 0.0
	for i := 0; i+1 < len(r.Nodes); i++ {
		e, ok := p.G.Edge(r.Nodes[i], r.Nodes[i+1])
		if !ok {
			return 0
		}
		total += e.Time + p.G.Node(r.Nodes[i+1]).ServiceTime
	}
	return total
}

// RouteLoad is the total demand delivered by a route.
func (p *Problem) RouteLoad(r *Route) float64 {
	load := 0.0
	for _, n := range r.Customers() {
		if node := p.G.Node(n); node != nil && node.Demand > 0 {
			load += node.Demand
		}
	}
	return load
}
