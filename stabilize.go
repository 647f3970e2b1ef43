package vrp

// dualStabilization damps the oscillation of the dual prices between
// master iterations by interpolating with the previous smoothed values.
// Smoothed duals are only ever handed to the pricing subproblems; the
// engine disables smoothing before it concludes convergence, so the
// termination proof always runs on true duals.
type dualStabilization struct {
	alpha  float64
	prev   *DualPrices
	active bool
}

func newDualStabilization() *dualStabilization {
	return &dualStabilization{alpha: 0.8, active: true}
}

func (s *dualStabilization) smooth(d *DualPrices) *DualPrices {
	if !s.active {
		return d
	}
	if s.prev == nil {
		s.prev = d
		return d
	}
	out := &DualPrices{
		Node:    make(map[string]float64, len(d.Node)),
		Fleet:   make([]float64, len(d.Fleet)),
		Version: d.Version,
	}
	for n, v := range d.Node {
		out.Node[n] = s.alpha*s.prev.Node[n] + (1-s.alpha)*v
	}
	for k, v := range d.Fleet {
		prev := 0.0
		if k < len(s.prev.Fleet) {
			prev = s.prev.Fleet[k]
		}
		out.Fleet[k] = s.alpha*prev + (1-s.alpha)*v
	}
	s.prev = out
	return out
}

func (s *dualStabilization) enabled() bool { return s.active }

func (s *dualStabilization) disable() {
	if s.active {
		Log(3, "Disabling dual stabilization before the convergence check\n")
	}
	s.active = false
}
