package vrp

import (
	"errors"
	"fmt"
	"math"
	"time"

	"git.solver4all.com/azaryc2s/vrp/lpsolve"
)

// priceLP solves the subproblem as a flow MIP. This formulation covers
// everything the labeling pricer does and additionally the pairing and
// precedence constraints of pickup and delivery requests.
func (p *Problem) priceLP(sub *Graph, duals *DualPrices, vehicleType, stopCap int, deadline time.Time) (*Route, error) {
	rm := p.newResourceModel(sub, vehicleType, stopCap)
	m := lpsolve.NewModel("pricing")

	var edges []*Edge
	for _, e := range sub.Edges() {
		if e.Tail == SourceID && e.Head == SinkID {
			continue // the empty round trip never improves the master
		}
		edges = append(edges, e)
	}
	if len(edges) == 0 {
		return nil, nil
	}
	customers := sub.Customers()
	n := len(customers)

	xCol := make([]int, len(edges))
	for i, e := range edges {
		xCol[i] = m.AddColumn(fmt.Sprintf("x_%s_%s", e.Tail, e.Head), reducedCost(e, vehicleType, duals), true, nil)
	}

	// Degree and flow conservation.
	srcRow := m.AddRow("source_degree", lpsolve.EQ, 1)
	snkRow := m.AddRow("sink_degree", lpsolve.EQ, 1)
	flowRow := map[string]int{}
	for _, c := range customers {
		flowRow[c.ID] = m.AddRow(fmt.Sprintf("flow_%s", c.ID), lpsolve.EQ, 0)
	}
	for i, e := range edges {
		if e.Tail == SourceID {
			m.SetCoefficient(srcRow, xCol[i], 1)
		} else if r, ok := flowRow[e.Tail]; ok {
			m.SetCoefficient(r, xCol[i], -1)
		}
		if e.Head == SinkID {
			m.SetCoefficient(snkRow, xCol[i], 1)
		} else if r, ok := flowRow[e.Head]; ok {
			m.SetCoefficient(r, xCol[i], 1)
		}
	}

	if !math.IsInf(rm.maxStops, 1) {
		row := m.AddRow("max_stops", lpsolve.LE, rm.maxStops)
		for i, e := range edges {
			if e.Head != SinkID {
				m.SetCoefficient(row, xCol[i], 1)
			}
		}
	}

	trackLoad := p.PickupDelivery || p.DistributionCollection
	if !math.IsInf(rm.capacity, 1) && !trackLoad {
		row := m.AddRow("capacity", lpsolve.LE, rm.capacity)
		for i, e := range edges {
			if e.Head != SinkID {
				m.SetCoefficient(row, xCol[i], sub.Node(e.Head).Demand)
			}
		}
	}

	if !math.IsInf(rm.duration, 1) {
		row := m.AddRow("duration", lpsolve.LE, rm.duration)
		for i, e := range edges {
			coef := e.Time
			if e.Head != SinkID {
				coef += sub.Node(e.Head).ServiceTime
			}
			m.SetCoefficient(row, xCol[i], coef)
		}
	}

	// Visit order variables double as subtour elimination and as the
	// precedence handle for pickup and delivery.
	uCol := map[string]int{}
	for _, c := range customers {
		col := m.AddColumn(fmt.Sprintf("u_%s", c.ID), 0, false, nil)
		uCol[c.ID] = col
		ub := m.AddRow(fmt.Sprintf("u_ub_%s", c.ID), lpsolve.LE, float64(n))
		m.SetCoefficient(ub, col, 1)
		lb := m.AddRow(fmt.Sprintf("u_lb_%s", c.ID), lpsolve.GE, 1)
		m.SetCoefficient(lb, col, 1)
	}
	for i, e := range edges {
		ut, okT := uCol[e.Tail]
		uh, okH := uCol[e.Head]
		if !okT || !okH {
			continue
		}
		row := m.AddRow(fmt.Sprintf("order_%s_%s", e.Tail, e.Head), lpsolve.LE, float64(n)-1)
		m.SetCoefficient(row, ut, 1)
		m.SetCoefficient(row, uh, -1)
		m.SetCoefficient(row, xCol[i], float64(n))
	}

	if p.TimeWindows {
		p.addTimeWindowRows(m, sub, edges, xCol)
	}
	if trackLoad {
		p.addLoadRows(m, sub, rm, edges, xCol)
	}
	if p.PickupDelivery {
		if err := p.addRequestRows(m, sub, edges, xCol, uCol); err != nil {
			return nil, err
		}
	}

	res, err := m.Solve(deadline)
	if err != nil {
		if errors.Is(err, lpsolve.ErrInfeasible) {
			return nil, nil
		}
		return nil, fmt.Errorf("pricing MIP: %w", err)
	}
	if res.Objective > negativeTol {
		return nil, nil
	}

	succ := map[string]string{}
	for i, e := range edges {
		if res.X[xCol[i]] > 0.5 {
			succ[e.Tail] = e.Head
		}
	}
	nodes := []string{SourceID}
	for cur := SourceID; cur != SinkID; {
		next, ok := succ[cur]
		if !ok {
			return nil, fmt.Errorf("pricing MIP produced a broken path at %s", cur)
		}
		nodes = append(nodes, next)
		cur = next
	}
	cost, err := sub.PathCost(nodes, vehicleType)
	if err != nil {
		return nil, err
	}
	load := 0.0
	for _, id := range nodes {
		if id == SourceID || id == SinkID {
			continue
		}
		if d := sub.Node(id).Demand; d > 0 {
			load += d
		}
	}
	Log(4, "LP pricer found path %v with reduced cost %.4f for type %d\n", nodes, res.Objective, vehicleType)
	return &Route{Nodes: nodes, Cost: cost, Load: load, VehicleType: vehicleType}, nil
}

// addTimeWindowRows introduces arrival time variables linked along the
// chosen arcs with the usual big-M construction. Waiting for a window
// to open is allowed because the link is an inequality.
func (p *Problem) addTimeWindowRows(m *lpsolve.Model, sub *Graph, edges []*Edge, xCol []int) {
	bigM := sub.Node(SinkID).TWUpper
	tCol := map[string]int{}
	for _, node := range sub.Nodes() {
		col := m.AddColumn(fmt.Sprintf("t_%s", node.ID), 0, false, nil)
		tCol[node.ID] = col
		if node.TWLower > 0 {
			row := m.AddRow(fmt.Sprintf("t_lb_%s", node.ID), lpsolve.GE, node.TWLower)
			m.SetCoefficient(row, col, 1)
		}
		row := m.AddRow(fmt.Sprintf("t_ub_%s", node.ID), lpsolve.LE, node.TWUpper)
		m.SetCoefficient(row, col, 1)
	}
	for i, e := range edges {
		tn := sub.Node(e.Tail)
		row := m.AddRow(fmt.Sprintf("tw_%s_%s", e.Tail, e.Head), lpsolve.LE, bigM-tn.ServiceTime-e.Time)
		m.SetCoefficient(row, tCol[e.Tail], 1)
		m.SetCoefficient(row, tCol[e.Head], -1)
		m.SetCoefficient(row, xCol[i], bigM)
	}
}

// addLoadRows tracks the onboard quantity along the route. For pickup
// and delivery the net change at a node is its signed demand; for
// simultaneous distribution and collection it is collected minus
// delivered, with the initial load equal to everything to deliver.
func (p *Problem) addLoadRows(m *lpsolve.Model, sub *Graph, rm *resourceModel, edges []*Edge, xCol []int) {
	bigM := 2 * rm.capacity
	if math.IsInf(bigM, 1) {
		bigM = 1e6
	}
	lCol := map[string]int{}
	for _, node := range sub.Nodes() {
		col := m.AddColumn(fmt.Sprintf("l_%s", node.ID), 0, false, nil)
		lCol[node.ID] = col
		if !math.IsInf(rm.capacity, 1) {
			row := m.AddRow(fmt.Sprintf("l_ub_%s", node.ID), lpsolve.LE, rm.capacity)
			m.SetCoefficient(row, col, 1)
		}
	}

	net := func(id string) float64 {
		node := sub.Node(id)
		if p.DistributionCollection {
			return node.Collect - node.Demand
		}
		return node.Demand
	}

	if p.DistributionCollection {
		// The vehicle leaves the depot loaded with every delivery it
		// will make: l_Source = sum of visited demands.
		row := m.AddRow("l_start", lpsolve.EQ, 0)
		m.SetCoefficient(row, lCol[SourceID], 1)
		for i, e := range edges {
			if e.Head != SinkID {
				m.SetCoefficient(row, xCol[i], -sub.Node(e.Head).Demand)
			}
		}
	} else {
		row := m.AddRow("l_start", lpsolve.EQ, 0)
		m.SetCoefficient(row, lCol[SourceID], 1)
	}

	for i, e := range edges {
		delta := 0.0
		if e.Head != SinkID {
			delta = net(e.Head)
		}
		up := m.AddRow(fmt.Sprintf("l_up_%s_%s", e.Tail, e.Head), lpsolve.LE, bigM-delta)
		m.SetCoefficient(up, lCol[e.Tail], 1)
		m.SetCoefficient(up, lCol[e.Head], -1)
		m.SetCoefficient(up, xCol[i], bigM)
		down := m.AddRow(fmt.Sprintf("l_down_%s_%s", e.Tail, e.Head), lpsolve.LE, bigM+delta)
		m.SetCoefficient(down, lCol[e.Tail], -1)
		m.SetCoefficient(down, lCol[e.Head], 1)
		m.SetCoefficient(down, xCol[i], bigM)
	}
}

// addRequestRows pairs every pickup with its delivery: both on the same
// route, the pickup strictly before the delivery.
func (p *Problem) addRequestRows(m *lpsolve.Model, sub *Graph, edges []*Edge, xCol []int, uCol map[string]int) error {
	for _, c := range sub.Customers() {
		if c.Request == "" {
			continue
		}
		if !sub.HasNode(c.Request) {
			return fmt.Errorf("request target %s of node %s is not in the network", c.Request, c.ID)
		}
		same := m.AddRow(fmt.Sprintf("pair_%s_%s", c.ID, c.Request), lpsolve.EQ, 0)
		for i, e := range edges {
			if e.Tail == c.ID {
				m.SetCoefficient(same, xCol[i], 1)
			}
			if e.Tail == c.Request {
				m.SetCoefficient(same, xCol[i], -1)
			}
		}
		prec := m.AddRow(fmt.Sprintf("precede_%s_%s", c.ID, c.Request), lpsolve.LE, -1)
		m.SetCoefficient(prec, uCol[c.ID], 1)
		m.SetCoefficient(prec, uCol[c.Request], -1)
	}
	return nil
}
