package vrp

import (
	"errors"
	"time"

	"git.solver4all.com/azaryc2s/vrp/labeling"
)

// heuristicFrontier bounds the labels kept per node when the labeling
// pricer runs in heuristic mode.
const heuristicFrontier = 10

// priceLabeling solves the subproblem as an elementary shortest path
// with resource constraints on the given network.
func (p *Problem) priceLabeling(sub *Graph, duals *DualPrices, vehicleType, stopCap int, exact bool, deadline time.Time) (*Route, error) {
	inst := &labeling.Instance{Source: SourceID, Sink: SinkID}
	for _, e := range sub.Edges() {
		inst.Arcs = append(inst.Arcs, labeling.Arc{
			Tail:   e.Tail,
			Head:   e.Head,
			Weight: reducedCost(e, vehicleType, duals),
		})
	}
	model := p.newResourceModel(sub, vehicleType, stopCap)
	path, err := labeling.Solve(inst, model, labeling.Options{
		Exact:     exact,
		MaxLabels: heuristicFrontier,
		Deadline:  deadline,
	})
	if err != nil {
		if errors.Is(err, labeling.ErrDeadline) {
			Log(3, "Labeling pricer hit the deadline for type %d\n", vehicleType)
			return nil, nil
		}
		return nil, err
	}
	if labeling.MinWeight(path) > negativeTol {
		return nil, nil
	}
	if len(path.Nodes) <= 2 {
		// The empty Source->Sink round trip never improves the master.
		return nil, nil
	}
	cost, err := sub.PathCost(path.Nodes, vehicleType)
	if err != nil {
		return nil, err
	}
	Log(4, "Labeling found path %v with reduced cost %.4f for type %d\n", path.Nodes, path.Weight, vehicleType)
	return &Route{
		Nodes:       path.Nodes,
		Cost:        cost,
		Load:        path.Resources[resLoad],
		VehicleType: vehicleType,
	}, nil
}
