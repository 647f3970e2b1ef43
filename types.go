package vrp

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	STRAT_EXACT        = "Exact"
	STRAT_BEST_EDGES1  = "BestEdges1"
	STRAT_BEST_EDGES2  = "BestEdges2"
	STRAT_BEST_PATHS   = "BestPaths"
	STRAT_BOUND_STOPS  = "BoundedStops"
	STRAT_HYPER        = "Hyper"

	PRICER_LABELING = "LABELING"
	PRICER_LP       = "LP"

	STATUS_OPTIMAL    = "OPTIMAL"
	STATUS_TIME_LIMIT = "TIME_LIMIT"
	STATUS_INFEASIBLE = "INFEASIBLE"

	MEASURE_WEIGHTED_AVG = "weighted_average"
	MEASURE_REL_IMPROVE  = "relative_improvement"

	ACCEPT_ALL       = "accept_all"
	ACCEPT_TABLE     = "table"
	ACCEPT_OBJECTIVE = "objective_threshold"
)

// PricingStrategies lists the valid values of the -strat flag and of
// SolveOptions.PricingStrategy.
var PricingStrategies = []string{
	STRAT_EXACT, STRAT_BEST_EDGES1, STRAT_BEST_EDGES2,
	STRAT_BEST_PATHS, STRAT_BOUND_STOPS, STRAT_HYPER,
}

// Route is one column of the master problem: an elementary path from
// Source to Sink with its cost for the vehicle type it was priced for.
type Route struct {
	Nodes       []string
	Cost        float64
	Load        float64
	VehicleType int
	PricedBy    string
}

// Key identifies a route independent of when it was generated.
func (r *Route) Key() string {
	return fmt.Sprintf("%d|%s", r.VehicleType, strings.Join(r.Nodes, ","))
}

func (r *Route) Customers() []string {
	var res []string
	for _, n := range r.Nodes {
		if n != SourceID && n != SinkID {
			res = append(res, n)
		}
	}
	return res
}

// Solution is the result of Problem.Solve.
type Solution struct {
	Value            float64
	Routes           []*Route
	Dropped          []string
	Schedule         map[int][]int // day -> indices into Routes
	Status           string
	LowerBound       float64
	Iterations       int
	ColumnsGenerated int
	TimeLimitReached bool
	PricingExhausted bool
	PriceAndBranch   bool
	Runtime          time.Duration
}

// BestRoutesByNode maps every visited customer to the route serving it.
func (s *Solution) BestRoutesByNode() map[string][]int {
	res := map[string][]int{}
	for i, r := range s.Routes {
		for _, n := range r.Customers() {
			res[n] = append(res[n], i)
		}
	}
	return res
}

// VRPInstance is the on-disk description read by the solver and
// produced by the generator.
type VRPInstance struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
	Type    string `json:"type"`

	NodeCount       int         `json:"node_count"`
	DisplayDataType string      `json:"display_data_type"`
	EdgeWeightType  string      `json:"edge_weight_type"`
	NodeCoordinates [][]float64 `json:"node_coordinates"`

	Demands      []int   `json:"demands,omitempty"`
	Collections  []int   `json:"collections,omitempty"`
	ServiceTimes []int   `json:"service_times,omitempty"`
	TimeWindows  [][]int `json:"time_windows,omitempty"`
	Frequencies  []int   `json:"frequencies,omitempty"`

	LoadCapacities []int `json:"load_capacities,omitempty"`
	NumVehicles    []int `json:"num_vehicles,omitempty"`
	FixedCosts     []int `json:"fixed_costs,omitempty"`

	NumStops       int  `json:"num_stops,omitempty"`
	Duration       int  `json:"duration,omitempty"`
	DropPenalty    int  `json:"drop_penalty,omitempty"`
	Periodic       int  `json:"periodic,omitempty"`
	UseAllVehicles bool `json:"use_all_vehicles,omitempty"`

	Solution *VRPSolution `json:"solution,omitempty"`
}

// VRPSolution is appended to the instance file after solving.
type VRPSolution struct {
	ID         string     `json:"id"`
	Obj        float64    `json:"obj"`
	LBound     float64    `json:"lbound"`
	Optimal    bool       `json:"optimal"`
	Routes     [][]string `json:"routes"`
	RouteCosts []float64  `json:"route_costs"`
	RouteLoads []float64  `json:"route_loads"`
	Vehicles   []int      `json:"vehicles"`
	Dropped    []string   `json:"dropped,omitempty"`
	Schedule   [][]int    `json:"schedule,omitempty"`
	Iterations int        `json:"iterations"`
	Columns    int        `json:"columns"`

	Time    string  `json:"time"`
	System  SysInfo `json:"system"`
	Comment string  `json:"comment"`
}

// SysInfo saves the basic system information
type SysInfo struct {
	Platform string
	CPU      string
	RAM      string
}

type ArrayStringFlags []string

func (f *ArrayStringFlags) String() string {
	return strings.Join(*f, ",")
}

func (f *ArrayStringFlags) Set(value string) error {
	*f = append(*f, value)
	return nil
}

type ArrayIntFlags []int

func (f *ArrayIntFlags) String() string {
	parts := make([]string, len(*f))
	for i, v := range *f {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func (f *ArrayIntFlags) Set(value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return err
	}
	*f = append(*f, v)
	return nil
}
