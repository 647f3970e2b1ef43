package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"math"
	"os"
	"strings"

	"git.solver4all.com/azaryc2s/vrp"
)

func main() {
	if len(os.Args) < 2 {
		log.Printf("No arguments passed!")
		return
	}
	dirName := os.Args[1]
	dir, err := ioutil.ReadDir(dirName)
	if err != nil {
		log.Printf("Couldn't open directory %s: %s\n", os.Args[1], err.Error())
		return
	}
	fmt.Printf("Name,Optimal,Time,Obj,LBound,Gap,Routes,Dropped,Iterations,Columns,Dimension,Comment\n")
	for _, f := range dir {
		fileName := dirName + "/" + f.Name()
		if strings.Contains(fileName, ".json") {
			inst := vrp.VRPInstance{}
			instStr, err := ioutil.ReadFile(fileName)
			if err != nil {
				log.Printf("Couldn't read %s: %s\n", f.Name(), err.Error())
				return
			}
			err = json.Unmarshal(instStr, &inst)
			if err != nil {
				log.Printf("Couldn't parse %s: %s\n", f.Name(), err.Error())
				return
			}
			if inst.Solution == nil {
				fmt.Printf("No solution for %s\n", inst.Name)
				continue
			}
			sol := *inst.Solution
			prob, err := inst.BuildProblem()
			if err != nil {
				log.Printf("Couldn't rebuild %s: %s\n", inst.Name, err.Error())
				continue
			}
			solValid, validComment := prob.ValidateSolution(sol.Routes, sol.Vehicles, sol.Dropped, sol.Obj)
			if !solValid {
				sol.Comment = fmt.Sprintf("%s %s", sol.Comment, validComment)
			}
			gap := 0.0
			if sol.LBound > 0 {
				gap = math.Round(((sol.Obj-sol.LBound)/sol.LBound)*1000) / 1000.0
			}
			fmt.Printf("%s,%t,%s,%.2f,%.2f,%.4f,%d,%d,%d,%d,%d,%s\n", inst.Name, sol.Optimal, sol.Time, sol.Obj, sol.LBound, gap, len(sol.Routes), len(sol.Dropped), sol.Iterations, sol.Columns, inst.NodeCount, sol.Comment)
		}
	}
}
