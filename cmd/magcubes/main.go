// Command magcubes runs reconfiguration experiments: it generates
// instances over a parameter grid, plans each with every option strategy
// and writes the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/elektrokombinacija/magcubes/internal/algo"
	"github.com/elektrokombinacija/magcubes/internal/scenario"
)

func main() {
	instance := flag.String("instance", "", "plan a single instance or configuration file instead of a sweep")
	shapes := flag.String("shapes", "line,square,l,t", "comma-separated target shapes")
	tiles := flag.String("tiles", "2,3,4", "comma-separated target sizes")
	leftover := flag.Int("leftover", 0, "extra single cubes per instance")
	seeds := flag.Int("seeds", 3, "instances per parameter combination")
	boardName := flag.String("board", "medium", "board preset: small, medium or large")
	variant := flag.String("variant", "fixed", "type variant: fixed or free")
	strategies := flag.String("strategies", "min-dist,grow-largest,grow-smallest", "comma-separated option strategies")
	timeout := flag.Duration("timeout", 60*time.Second, "per-plan timeout")
	parallel := flag.Bool("parallel", true, "run local rollouts in parallel")
	out := flag.String("out", "results", "output directory")
	savePlans := flag.Bool("save-plans", false, "write a replayable plan file per successful run")
	verbose := flag.Bool("v", false, "log planner progress")
	flag.Parse()

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var planners []*algo.GlobalPlanner
	for _, name := range splitList(*strategies) {
		s, err := algo.ParseStrategy(name)
		if err != nil {
			log.Fatalf("strategy: %v", err)
		}
		cfg := algo.DefaultGlobalConfig()
		cfg.Strategy = s
		cfg.Timeout = *timeout
		cfg.Local.Parallel = *parallel
		cfg.Logger = logger
		planners = append(planners, algo.NewGlobalPlanner(cfg))
	}

	if err := os.MkdirAll(*out, 0755); err != nil {
		log.Fatalf("output dir: %v", err)
	}

	var instances []*scenario.Instance
	if *instance != "" {
		in, err := loadInstance(*instance)
		if err != nil {
			log.Fatalf("load instance: %v", err)
		}
		instances = append(instances, in)
	} else {
		var err error
		instances, err = sweep(*shapes, *tiles, *leftover, *seeds, *boardName, *variant)
		if err != nil {
			log.Fatalf("generate: %v", err)
		}
	}

	fmt.Println("=== Magnetic Cube Reconfiguration ===")
	fmt.Printf("%d instances x %d planners\n", len(instances), len(planners))

	ctx := context.Background()
	var results []scenario.Result
	for _, in := range instances {
		initial, target, err := in.Decode()
		if err != nil {
			log.Fatalf("%s: %v", in.Name, err)
		}
		if target == nil {
			log.Fatalf("%s: no target shape", in.Name)
		}
		fmt.Printf("\n--- %s (%d cubes, target %d) ---\n", in.Name, initial.Len(), target.Size())
		results = append(results, runPlanners(ctx, planners, in, *out, *savePlans)...)
	}

	jsonPath := filepath.Join(*out, "results.json")
	csvPath := filepath.Join(*out, "results.csv")
	if err := scenario.SaveResults(jsonPath, results); err != nil {
		log.Fatalf("write results: %v", err)
	}
	if err := scenario.SaveCSV(csvPath, results); err != nil {
		log.Fatalf("write results: %v", err)
	}
	printSummary(results)
	fmt.Printf("\nResults written to %s and %s\n", jsonPath, csvPath)
}

func runPlanners(ctx context.Context, planners []*algo.GlobalPlanner, in *scenario.Instance, out string, save bool) []scenario.Result {
	initial, target, _ := in.Decode()
	var results []scenario.Result
	for _, p := range planners {
		fmt.Printf("  %s: ", p.Name())
		plan := p.Plan(ctx, initial, target)
		fmt.Println(plan)
		results = append(results, scenario.NewResult(in.Name, p.Name(), in.Params, plan))

		if save && plan.State == algo.Success {
			rec, err := scenario.NewPlanRecord(p.Name(), plan)
			if err != nil {
				log.Printf("  plan record: %v", err)
				continue
			}
			path := filepath.Join(out, in.Name+"."+strings.ToLower(p.Name())+".plan.json")
			if err := scenario.SavePlan(path, rec); err != nil {
				log.Printf("  save plan: %v", err)
			}
		}
	}
	return results
}

func sweep(shapes, tiles string, leftover, seeds int, boardName, variant string) ([]*scenario.Instance, error) {
	board, ok := scenario.BoardByName(boardName)
	if !ok {
		return nil, fmt.Errorf("unknown board %q", boardName)
	}
	sizes, err := parseInts(tiles)
	if err != nil {
		return nil, err
	}
	var out []*scenario.Instance
	for _, name := range splitList(shapes) {
		kind, err := scenario.ParseShapeKind(name)
		if err != nil {
			return nil, err
		}
		for _, n := range sizes {
			for seed := 1; seed <= seeds; seed++ {
				p := scenario.DefaultGenParams()
				p.Width, p.Height = board.Width, board.Height
				p.Shape, p.Tiles, p.Leftover = kind, n, leftover
				p.Variant = scenario.Variant(variant)
				p.Seed = int64(seed)
				in, err := scenario.Generate(p)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", scenario.InstanceName(p), err)
				}
				out = append(out, in)
			}
		}
	}
	return out, nil
}

// loadInstance accepts an instance file or a bare configuration file.
func loadInstance(path string) (*scenario.Instance, error) {
	if in, err := scenario.LoadInstance(path); err == nil && len(in.Config.Cubes) > 0 {
		return in, nil
	}
	c, target, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &scenario.Instance{Name: name, Config: scenario.EncodeConfiguration(c, target)}, nil
}

func printSummary(results []scenario.Result) {
	type agg struct {
		runs, ok int
		cost     float64
		ms       float64
		nlocal   int
	}
	stats := make(map[string]*agg)
	var order []string
	for _, r := range results {
		a, ok := stats[r.Planner]
		if !ok {
			a = &agg{}
			stats[r.Planner] = a
			order = append(order, r.Planner)
		}
		a.runs++
		a.ms += r.ElapsedMs
		a.nlocal += r.NLocal
		if r.Success {
			a.ok++
			a.cost += r.Cost
		}
	}

	fmt.Println("\n=== Summary ===")
	fmt.Printf("%-22s %8s %10s %12s %10s\n", "Planner", "Success", "Avg Cost", "Avg ms", "Avg nlocal")
	fmt.Println(strings.Repeat("-", 66))
	for _, name := range order {
		a := stats[name]
		avgCost := 0.0
		if a.ok > 0 {
			avgCost = a.cost / float64(a.ok)
		}
		fmt.Printf("%-22s %4d/%-3d %10.2f %12.1f %10.1f\n",
			name, a.ok, a.runs, avgCost, a.ms/float64(a.runs), float64(a.nlocal)/float64(a.runs))
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, part := range splitList(s) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("bad size %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}
