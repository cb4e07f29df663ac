// Package main runs every option strategy on a directory of instance
// files and collects metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/elektrokombinacija/magcubes/internal/algo"
	"github.com/elektrokombinacija/magcubes/internal/scenario"
)

var strategies = []algo.Strategy{algo.MinDist, algo.GrowLargest, algo.GrowSmallest}

// plannerMetrics holds per-planner aggregates.
type plannerMetrics struct {
	Name        string
	TotalRuns   int
	Successes   int
	TotalMs     float64
	TotalCost   float64
	TotalNLocal int
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func printSummary(results []scenario.Result) {
	byName := make(map[string]*plannerMetrics)
	for _, r := range results {
		m, ok := byName[r.Planner]
		if !ok {
			m = &plannerMetrics{Name: r.Planner}
			byName[r.Planner] = m
		}
		m.TotalRuns++
		m.TotalMs += r.ElapsedMs
		m.TotalNLocal += r.NLocal
		if r.Success {
			m.Successes++
			m.TotalCost += r.Cost
		}
	}
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Println("\n=== Benchmark Summary ===")
	fmt.Printf("%-22s %8s %10s %12s %10s\n", "Planner", "Success", "Avg Cost", "Avg ms", "Avg nlocal")
	fmt.Println(strings.Repeat("-", 66))
	for _, n := range names {
		m := byName[n]
		rate := 100 * float64(m.Successes) / float64(m.TotalRuns)
		avgCost := 0.0
		if m.Successes > 0 {
			avgCost = m.TotalCost / float64(m.Successes)
		}
		fmt.Printf("%-22s %7.1f%% %10.2f %12.1f %10.1f\n",
			m.Name, rate, avgCost, m.TotalMs/float64(m.TotalRuns), float64(m.TotalNLocal)/float64(m.TotalRuns))
	}
}

func main() {
	inputDir := flag.String("input", "testdata", "Directory containing instance JSON files")
	outputFile := flag.String("output", "evidence/benchmark_results.csv", "Output CSV file")
	timeout := flag.Duration("timeout", 5*time.Minute, "Timeout per planner run")
	filter := flag.String("strategy", "", "Run only specific strategies (comma-separated)")
	tilesFilter := flag.Int("tiles", 0, "Run only instances with this target size (0 = all)")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*outputFile), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	files, err := filepath.Glob(filepath.Join(*inputDir, "*.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding instance files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No instance files found in %s\n", *inputDir)
		fmt.Fprintf(os.Stderr, "Run gen_instances first: go run ./tools/gen_instances -suite -output testdata\n")
		os.Exit(1)
	}

	active := strategies
	if *filter != "" {
		active = nil
		for _, name := range strings.Split(*filter, ",") {
			s, err := algo.ParseStrategy(strings.TrimSpace(name))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			active = append(active, s)
		}
	}
	planners := make([]*algo.GlobalPlanner, len(active))
	for i, s := range active {
		cfg := algo.DefaultGlobalConfig()
		cfg.Strategy = s
		cfg.Timeout = *timeout
		planners[i] = algo.NewGlobalPlanner(cfg)
	}

	totalRuns := len(files) * len(planners)
	fmt.Printf("Running benchmarks at %s: %d instances x %d planners = %d runs\n",
		gitCommit(), len(files), len(planners), totalRuns)
	fmt.Printf("Timeout per run: %v\n\n", *timeout)

	ctx := context.Background()
	var results []scenario.Result
	run := 0
	for _, file := range files {
		inst, err := scenario.LoadInstance(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", file, err)
			continue
		}
		if *tilesFilter > 0 && inst.Params.Tiles != *tilesFilter {
			continue
		}
		initial, target, err := inst.Decode()
		if err != nil || target == nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: no plannable target (%v)\n", file, err)
			continue
		}

		for _, p := range planners {
			run++
			if *verbose {
				fmt.Printf("[%d/%d] %s / %s ... ", run, totalRuns, inst.Name, p.Name())
			} else {
				fmt.Printf("\r[%d/%d] Running...", run, totalRuns)
			}

			plan := p.Plan(ctx, initial, target)
			r := scenario.NewResult(inst.Name, p.Name(), inst.Params, plan)
			results = append(results, r)

			if *verbose {
				if r.Success {
					fmt.Printf("OK (%.2fms, cost=%.2f)\n", r.ElapsedMs, r.Cost)
				} else {
					fmt.Printf("%s\n", r.State)
				}
			}
		}
	}
	fmt.Println()

	if err := scenario.SaveCSV(*outputFile, results); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results written to: %s\n", *outputFile)
	printSummary(results)
}
