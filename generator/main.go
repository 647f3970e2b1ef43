package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"math/rand"
	"time"

	"git.solver4all.com/azaryc2s/vrp"
)

var nodes vrp.ArrayIntFlags
var vehicles vrp.ArrayIntFlags
var capacities vrp.ArrayIntFlags
var name *string
var output *string
var count *int
var demandMin *int
var demandMax *int
var numStops *int
var duration *int
var dropPenalty *int
var periodic *int
var timeWindows *bool
var horizon *int
var xTo *int
var yTo *int
var w *string

func main() {
	flag.Var(&nodes, "n", "List of number of nodes")
	flag.Var(&vehicles, "m", "List of fleet sizes (0 for an unbounded fleet)")
	flag.Var(&capacities, "c", "List of load capacities (0 for uncapacitated)")
	name = flag.String("name", "zarychta", "Name for the instance")
	output = flag.String("outputDir", ".", "Output directory")
	count = flag.Int("count", 1, "Number of instances per combination")
	demandMin = flag.Int("demandMin", 1, "The lowest customer demand")
	demandMax = flag.Int("demandMax", 10, "The highest customer demand")
	numStops = flag.Int("stops", 0, "Stop limit per route (0 for none)")
	duration = flag.Int("duration", 0, "Duration limit per route (0 for none)")
	dropPenalty = flag.Int("dropPenalty", 0, "Penalty for dropping a customer (0 forbids dropping)")
	periodic = flag.Int("periodic", 0, "Planning horizon in days (0 for aperiodic)")
	timeWindows = flag.Bool("tw", false, "Generate time windows")
	horizon = flag.Int("horizon", 1000, "Latest time window upper bound")
	xTo = flag.Int("x", 10000, "Max value on the x-axis")
	yTo = flag.Int("y", 10000, "Max value on the y-axis")
	w = flag.String("w", "EUC_2D", "EDGE_WEIGHT_TYPE - how the distance between nodes is calculated.")

	flag.Parse()
	if len(capacities) == 0 {
		capacities.Set("0")
	}
	if len(vehicles) == 0 {
		vehicles.Set("0")
	}

	for l := 0; l < *count; l++ {
		rand.Seed(time.Now().UnixNano())
		for i := 0; i < len(nodes); i++ {
			n := nodes[i]
			coordinatesArray := make([][]float64, n)
			for node := 0; node < n; node++ {
				x := rand.Intn(*xTo)
				y := rand.Intn(*yTo)
				coordinatesArray[node] = []float64{float64(x), float64(y)}
			}
			demands := make([]int, n)
			for node := 1; node < n; node++ {
				demands[node] = *demandMin + rand.Intn(*demandMax-*demandMin+1)
			}
			var windows [][]int
			if *timeWindows {
				windows = make([][]int, n)
				windows[0] = []int{0, *horizon}
				for node := 1; node < n; node++ {
					lower := rand.Intn(*horizon / 2)
					width := 1 + rand.Intn(*horizon/2)
					windows[node] = []int{lower, lower + width}
				}
			}
			var frequencies []int
			if *periodic > 0 {
				frequencies = make([]int, n)
				for node := 1; node < n; node++ {
					frequencies[node] = 1 + rand.Intn(*periodic)
				}
			}
			for j := 0; j < len(vehicles); j++ {
				m := vehicles[j]
				for k := 0; k < len(capacities); k++ {
					c := capacities[k]

					comment := fmt.Sprintf("%s instance Nr. %d with %d nodes, %d vehicles and capacity %d", *name, l, n, m, c)
					instName := fmt.Sprintf("%s_%d_%d_%d_%d", *name, n, m, c, l)
					inst := vrp.VRPInstance{
						Name:            instName,
						Comment:         comment,
						Type:            "VRP",
						NodeCount:       n,
						NodeCoordinates: coordinatesArray,
						DisplayDataType: "COORD_DISPLAY",
						EdgeWeightType:  *w,
						Demands:         demands,
						TimeWindows:     windows,
						Frequencies:     frequencies,
						NumStops:        *numStops,
						Duration:        *duration,
						DropPenalty:     *dropPenalty,
						Periodic:        *periodic,
					}
					if c > 0 {
						inst.LoadCapacities = []int{c}
					}
					if m > 0 {
						inst.NumVehicles = []int{m}
					}

					jsonInst, err := json.MarshalIndent(inst, "", "\t")
					if err != nil {
						log.Fatal(err)
					}

					jsonInst = []byte(vrp.SanitizeJsonArrayLineBreaks(string(jsonInst)))
					err = ioutil.WriteFile(fmt.Sprintf("%s/%s.json", *output, instName), jsonInst, 0644)
					if err != nil {
						log.Fatal(err)
					}
				}
			}
		}
	}
}
