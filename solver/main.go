/* Copyright 2021, Arkadiusz Zarychta, arkadiusz.zarychta@h-brs.de */

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"time"

	"git.solver4all.com/azaryc2s/vrp"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
	"gopkg.in/yaml.v3"
)

var (
	sol   vrp.VRPSolution
	pInst vrp.VRPInstance

	strat        *string
	pricer       *string
	inputF       *string
	outputF      *string
	confF        *string
	logLvl       *int
	timeLimit    *int
	maxIter      *int
	dive         *bool
	greedy       *bool
	stabilize    *bool
	seed         *int64
	hyperHistory *string
)

// runConfig mirrors the command line flags for yaml driven runs. Keys
// absent from the file keep the flag values.
type runConfig struct {
	Strat        string `yaml:"strat"`
	Pricer       string `yaml:"pricer"`
	Log          int    `yaml:"log"`
	Time         int    `yaml:"time"`
	MaxIter      int    `yaml:"max_iter"`
	Dive         bool   `yaml:"dive"`
	Greedy       bool   `yaml:"greedy"`
	Stabilize    bool   `yaml:"stabilize"`
	Seed         int64  `yaml:"seed"`
	HyperHistory string `yaml:"hyper_history"`
}

func loadRunConfig(path string, rc *runConfig) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, rc)
}

func main() {
	var err error

	strat = flag.String("strat", vrp.STRAT_BEST_EDGES1, fmt.Sprintf("Pricing strategy. Possible: %v", vrp.PricingStrategies))
	pricer = flag.String("pricer", vrp.PRICER_LABELING, "Subproblem engine. LABELING (default) or LP")
	inputF = flag.String("input", "input.json", "Path to the input instance")
	outputF = flag.String("output", "", "Path to the output file. By default the input file will be overwritten adding the solution")
	confF = flag.String("conf", "", "Path to a yaml run configuration. Its keys override the other flags")
	logLvl = flag.Int("log", 2, "Level of the logging output. Higher value is more verbose. Range 1-4")
	timeLimit = flag.Int("time", 0, "Time limit in seconds. 0 means no limit")
	maxIter = flag.Int("maxIter", 0, "Iteration limit for the column generation. 0 means no limit")
	dive = flag.Bool("dive", false, "Use the diving heuristic instead of the final MIP")
	greedy = flag.Bool("greedy", false, "Run the randomized greedy pricer before the main pricer")
	stabilize = flag.Bool("stabilize", false, "Smooth the dual prices between iterations")
	seed = flag.Int64("seed", 1, "Seed for the randomized components")
	hyperHistory = flag.String("hyperHistory", "", "Path to the yaml file the hyper heuristic scores persist in")

	flag.Parse()

	rc := runConfig{
		Strat:        *strat,
		Pricer:       *pricer,
		Log:          *logLvl,
		Time:         *timeLimit,
		MaxIter:      *maxIter,
		Dive:         *dive,
		Greedy:       *greedy,
		Stabilize:    *stabilize,
		Seed:         *seed,
		HyperHistory: *hyperHistory,
	}
	if *confF != "" {
		if err := loadRunConfig(*confF, &rc); err != nil {
			vrp.InitLoggers(rc.Log)
			vrp.Log(1, "At %s: %s\n", *confF, err.Error())
			return
		}
	}

	hostStat, _ := host.Info()
	cpuStat, _ := cpu.Info()
	vmStat, _ := mem.VirtualMemory()
	sol = vrp.VRPSolution{
		ID:      uuid.NewString(),
		Comment: "",
		System: vrp.SysInfo{
			Platform: hostStat.Platform,
			CPU:      cpuStat[0].ModelName,
			RAM:      fmt.Sprintf("%d GB", (vmStat.Total / 1024 / 1024 / 1024)),
		},
	}

	instStr, err := ioutil.ReadFile(*inputF)

	vrp.InitLoggers(rc.Log)
	if err != nil {
		vrp.Log(1, "At %s: %s\n", *inputF, err.Error())
		return
	}

	err = json.Unmarshal(instStr, &pInst)
	if err != nil {
		vrp.Log(1, "At %s: %s\n", *inputF, err.Error())
		return
	}
	pInst.Solution = &sol

	prob, err := pInst.BuildProblem()
	if err != nil {
		vrp.Log(1, "At %s: %s\n", *inputF, err.Error())
		return
	}
	opts := vrp.SolveOptions{
		PricingStrategy: rc.Strat,
		LPPricing:       rc.Pricer == vrp.PRICER_LP,
		TimeLimit:       time.Duration(rc.Time) * time.Second,
		MaxIter:         rc.MaxIter,
		Dive:            rc.Dive,
		Greedy:          rc.Greedy,
		Stabilize:       rc.Stabilize,
		Seed:            rc.Seed,
		HyperHistory:    rc.HyperHistory,
	}
	sol.Comment = fmt.Sprintf("Solver-Settings: SolverDev: Zarychta, Strat=%s, Pricer=%s, Dive=%t, Greedy=%t, Stabilize=%t", rc.Strat, rc.Pricer, rc.Dive, rc.Greedy, rc.Stabilize)

	startTime := time.Now()
	result, err := prob.Solve(opts)
	if err != nil {
		sol.Comment += fmt.Sprintf(". Solve failed: %s", err.Error())
		vrp.Log(1, "At %s: %s\n", *inputF, err.Error())
		writeSolution()
		return
	}
	sol.Time = time.Since(startTime).String()
	vrp.Log(2, "\n---OPTIMIZATION DONE---\n")
	captureSolution(prob, result)

	solValid, validComment := prob.ValidateSolution(sol.Routes, sol.Vehicles, sol.Dropped, sol.Obj)
	if !solValid {
		vrp.Log(1, validComment)
	} else {
		vrp.Log(2, "The computed solution is valid!\n")
	}
	vrp.Log(2, "Found a VRP-Solution with obj-Value of %.2f\n", sol.Obj)
}

func captureSolution(prob *vrp.Problem, result *vrp.Solution) {
	defer writeSolution()

	sol.Obj = result.Value
	sol.LBound = result.LowerBound
	sol.Optimal = result.Status == vrp.STATUS_OPTIMAL && result.PricingExhausted
	sol.Dropped = result.Dropped
	sol.Iterations = result.Iterations
	sol.Columns = result.ColumnsGenerated
	if result.TimeLimitReached {
		sol.Comment += ". Time limit reached"
	}
	if result.PriceAndBranch {
		sol.Comment += ". Integer value is exact over the generated column pool only"
	}

	for _, r := range result.Routes {
		sol.Routes = append(sol.Routes, r.Nodes)
		sol.RouteCosts = append(sol.RouteCosts, r.Cost)
		sol.RouteLoads = append(sol.RouteLoads, r.Load)
		sol.Vehicles = append(sol.Vehicles, r.VehicleType)
	}
	if result.Schedule != nil {
		sol.Schedule = make([][]int, prob.Periodic)
		for day, routes := range result.Schedule {
			sol.Schedule[day] = routes
		}
	}
	vrp.Log(2, "Found routes with value %.2f : %v \n", sol.Obj, sol.Routes)
}

func writeSolution() {
	jsonInst, err := json.MarshalIndent(pInst, "", "\t")
	if err != nil {
		vrp.Log(1, "At %s: %s\n", *inputF, err.Error())
		return
	}
	jsonInst = []byte(vrp.SanitizeJsonArrayLineBreaks(string(jsonInst)))
	var fileName string
	if *outputF == "" {
		fileName = *inputF //overwrite the input file
	} else {
		fileName = *outputF
	}
	err = ioutil.WriteFile(fileName, jsonInst, 0644)
	if err != nil {
		vrp.Log(1, "At %s: %s\n", *inputF, err.Error())
		return
	}
}
