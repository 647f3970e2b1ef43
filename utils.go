package vrp

import (
	"fmt"
	"math"
	"regexp"
)

// CalcEdgeDist computes the symmetric distance matrix for coordinate
// based instances.
func CalcEdgeDist(coordinates [][]float64, distType string) [][]int {
	n := len(coordinates)
	result := make([][]int, n)
	for node := 0; node < n; node++ {
		result[node] = make([]int, n)
	}
	for node := 0; node < n; node++ {
		for node2 := 0; node2 < node; node2++ {
			xDist := coordinates[node][0] - coordinates[node2][0]
			yDist := coordinates[node][1] - coordinates[node2][1]
			var distance int
			if distType == "EUC_2D" {
				distance = int(math.Sqrt(math.Pow(xDist, 2)+math.Pow(yDist, 2)) + 0.5)
			} else if distType == "CEIL_2D" {
				distance = int(math.Ceil(math.Sqrt(math.Pow(xDist, 2) + math.Pow(yDist, 2))))
			}
			result[node][node2] = distance
			result[node2][node] = distance
		}
	}
	return result
}

// BuildProblem turns an instance file into a Problem. Node 0 of the
// coordinate list is the depot and becomes both Source and Sink; every
// other node becomes a customer with the listed attributes.
func (inst *VRPInstance) BuildProblem() (*Problem, error) {
	if inst.NodeCount < 2 {
		return nil, fmt.Errorf("instance %s has no customers", inst.Name)
	}
	if len(inst.NodeCoordinates) < inst.NodeCount {
		return nil, fmt.Errorf("instance %s: %d coordinates for %d nodes", inst.Name, len(inst.NodeCoordinates), inst.NodeCount)
	}
	dist := CalcEdgeDist(inst.NodeCoordinates, inst.EdgeWeightType)

	attr := func(vals []int, i int) float64 {
		if i < len(vals) {
			return float64(vals[i])
		}
		return 0
	}

	g := NewGraph()
	g.AddNode(Node{ID: SourceID})
	g.AddNode(Node{ID: SinkID})
	name := func(i int) string { return fmt.Sprintf("%d", i) }
	for i := 1; i < inst.NodeCount; i++ {
		n := Node{
			ID:          name(i),
			Demand:      attr(inst.Demands, i),
			Collect:     attr(inst.Collections, i),
			ServiceTime: attr(inst.ServiceTimes, i),
		}
		if i < len(inst.TimeWindows) && len(inst.TimeWindows[i]) == 2 {
			n.TWLower = float64(inst.TimeWindows[i][0])
			n.TWUpper = float64(inst.TimeWindows[i][1])
		}
		if i < len(inst.Frequencies) {
			n.Frequency = inst.Frequencies[i]
		}
		g.AddNode(n)
	}
	for i := 1; i < inst.NodeCount; i++ {
		g.AddEdge(SourceID, name(i), float64(dist[0][i]), float64(dist[0][i]))
		g.AddEdge(name(i), SinkID, float64(dist[i][0]), float64(dist[i][0]))
		for j := 1; j < inst.NodeCount; j++ {
			if i != j {
				g.AddEdge(name(i), name(j), float64(dist[i][j]), float64(dist[i][j]))
			}
		}
	}

	p := NewProblem(g)
	p.LoadCapacity = inst.LoadCapacities
	p.NumVehicles = inst.NumVehicles
	p.FixedCost = inst.FixedCosts
	p.NumStops = inst.NumStops
	p.Duration = inst.Duration
	p.DropPenalty = inst.DropPenalty
	p.Periodic = inst.Periodic
	p.UseAllVehicles = inst.UseAllVehicles
	p.TimeWindows = len(inst.TimeWindows) > 0
	p.DistributionCollection = len(inst.Collections) > 0
	return p, nil
}

// ValidateSolution replays a set of routes against the problem and
// confirms coverage, per route feasibility and the reported objective
// value. Vehicle types may be passed per route; a route without one is
// charged the cheapest type whose resource limits it satisfies.
func (p *Problem) ValidateSolution(routes [][]string, types []int, dropped []string, obj float64) (bool, string) {
	g := p.G.Copy()
	p.setDefaults(g)
	p.normalizeEdgeCosts(g)
	droppedSet := map[string]bool{}
	for _, n := range dropped {
		droppedSet[n] = true
	}
	visits := map[string]int{}
	total := float64(len(dropped) * p.DropPenalty)
	for ri, nodes := range routes {
		if len(nodes) < 2 || nodes[0] != SourceID || nodes[len(nodes)-1] != SinkID {
			return false, fmt.Sprintf("route %v does not run from %s to %s! ", nodes, SourceID, SinkID)
		}
		kFrom, kTo := 0, p.numVehicleTypes()
		if ri < len(types) {
			kFrom, kTo = types[ri], types[ri]+1
		}
		cost := math.Inf(1)
		for k := kFrom; k < kTo; k++ {
			c, err := g.PathCost(nodes, k)
			if err != nil {
				return false, fmt.Sprintf("route %v uses a missing edge: %s! ", nodes, err.Error())
			}
			if _, ok := p.newResourceModel(g, k, 0).feasibleRoute(nodes); !ok {
				continue
			}
			c += float64(p.fixedCostFor(k))
			if c < cost {
				cost = c
			}
		}
		if math.IsInf(cost, 1) {
			return false, fmt.Sprintf("route %v is feasible for no vehicle type! ", nodes)
		}
		total += cost
		for _, n := range nodes[1 : len(nodes)-1] {
			visits[n]++
		}
	}
	for _, c := range p.G.Customers() {
		need := 1
		if p.Periodic > 0 {
			need = c.Frequency
			if need == 0 {
				need = 1
			}
		}
		if droppedSet[c.ID] {
			continue
		}
		if visits[c.ID] < need {
			return false, fmt.Sprintf("node %s is visited %d times but needs %d! ", c.ID, visits[c.ID], need)
		}
	}
	if obj > 0 && math.Abs(total-obj) > 1e-4 {
		return false, fmt.Sprintf("reported objective %.4f does not match the recomputed cost %.4f! ", obj, total)
	}
	return true, ""
}

// SanitizeJsonArrayLineBreaks collapses the line breaks json.Marshal
// puts inside numeric arrays, keeping instance files readable.
func SanitizeJsonArrayLineBreaks(json string) string {
	res := fmt.Sprintf("%s", json)
	var numbers = regexp.MustCompile(`\s*([-]?[0-9]+(\.[0-9]+)?),\s+([-]?[0-9]+(\.[0-9]+)?)(,)?`)
	var brackets = regexp.MustCompile(`\[(([-]?[0-9]+(\.[0-9]+)?,)+[-]?[0-9]+(\.[0-9]+)?)\s+\](,?)(\s+)`)
	for numbers.MatchString(res) {
		res = numbers.ReplaceAllString(res, "$1,$3$5")
	}
	for brackets.MatchString(res) {
		res = brackets.ReplaceAllString(res, "[$1]$5$6")
	}
	return res
}
