package vrp

import (
	"errors"
	"fmt"
	"time"

	"git.solver4all.com/azaryc2s/vrp/lpsolve"
)

// computeSchedule assigns the final routes to days of the planning
// horizon. Every route gets exactly one day, a customer is visited at
// most once per day, the daily fleet bound holds per vehicle type and
// the spread between the busiest and the calmest day is minimized.
func (p *Problem) computeSchedule(routes []*Route, deadline time.Time) (map[int][]int, error) {
	days := p.Periodic
	if days <= 0 || len(routes) == 0 {
		return nil, nil
	}
	m := lpsolve.NewModel("schedule")

	yCol := make([][]int, len(routes))
	for r := range routes {
		yCol[r] = make([]int, days)
		for t := 0; t < days; t++ {
			yCol[r][t] = m.AddColumn(fmt.Sprintf("y_%d_%d", r, t), 0, true, nil)
		}
	}
	loadMax := m.AddColumn("load_max", 1, false, nil)
	loadMin := m.AddColumn("load_min", -1, false, nil)

	for r := range routes {
		row := m.AddRow(fmt.Sprintf("one_day_%d", r), lpsolve.EQ, 1)
		for t := 0; t < days; t++ {
			m.SetCoefficient(row, yCol[r][t], 1)
		}
	}

	visitors := map[string][]int{}
	for r, route := range routes {
		for _, n := range route.Customers() {
			visitors[n] = append(visitors[n], r)
		}
	}
	for n, rs := range visitors {
		if len(rs) < 2 {
			continue
		}
		for t := 0; t < days; t++ {
			row := m.AddRow(fmt.Sprintf("visit_%s_day_%d", n, t), lpsolve.LE, 1)
			for _, r := range rs {
				m.SetCoefficient(row, yCol[r][t], 1)
			}
		}
	}

	for t := 0; t < days; t++ {
		// Daily spread: load_min <= routes on day t <= load_max.
		up := m.AddRow(fmt.Sprintf("spread_up_%d", t), lpsolve.LE, 0)
		down := m.AddRow(fmt.Sprintf("spread_down_%d", t), lpsolve.LE, 0)
		m.SetCoefficient(up, loadMax, -1)
		m.SetCoefficient(down, loadMin, 1)
		for r := range routes {
			m.SetCoefficient(up, yCol[r][t], 1)
			m.SetCoefficient(down, yCol[r][t], -1)
		}

		for k := 0; k < p.numVehicleTypes(); k++ {
			bound := p.vehiclesFor(k)
			if bound == 0 {
				continue
			}
			row := m.AddRow(fmt.Sprintf("fleet_%d_day_%d", k, t), lpsolve.LE, float64(bound))
			for r, route := range routes {
				if route.VehicleType == k {
					m.SetCoefficient(row, yCol[r][t], 1)
				}
			}
		}
	}

	res, err := m.Solve(deadline)
	if err != nil {
		if errors.Is(err, lpsolve.ErrInfeasible) {
			return nil, fmt.Errorf("no feasible schedule over %d days", days)
		}
		return nil, fmt.Errorf("schedule: %w", err)
	}

	schedule := map[int][]int{}
	for r := range routes {
		for t := 0; t < days; t++ {
			if res.X[yCol[r][t]] > 0.5 {
				schedule[t] = append(schedule[t], r)
				break
			}
		}
	}
	return schedule, nil
}
