// Command magcubesvis opens the plan viewer and sandbox.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/elektrokombinacija/magcubes/internal/algo"
	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/scenario"
	"github.com/elektrokombinacija/magcubes/internal/sim"
	"github.com/elektrokombinacija/magcubes/internal/vis"
	"github.com/elektrokombinacija/magcubes/internal/vis/state"
)

func main() {
	instance := flag.String("instance", "", "instance or configuration file to open")
	planFile := flag.String("plan", "", "saved plan file to replay")
	shape := flag.String("shape", "line", "target shape when generating")
	tiles := flag.Int("tiles", 3, "target size when generating")
	seed := flag.Int64("seed", 1, "generator seed")
	strategy := flag.String("strategy", "min-dist", "option strategy for plans started in the viewer")
	flag.Parse()

	st, err := load(*instance, *planFile, *shape, *tiles, *seed)
	if err != nil {
		log.Fatal(err)
	}
	cfg := algo.DefaultGlobalConfig()
	if cfg.Strategy, err = algo.ParseStrategy(*strategy); err != nil {
		log.Fatal(err)
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("Magnetic Cubes"),
			app.Size(unit.Dp(1400), unit.Dp(900)),
		)
		if err := vis.NewApp(st, cfg).Run(window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func load(instance, planFile, shape string, tiles int, seed int64) (*state.State, error) {
	cfg := sim.DefaultConfig()
	if planFile != "" {
		rec, err := scenario.LoadPlan(planFile)
		if err != nil {
			return nil, err
		}
		start, target, motions, err := rec.Decode()
		if err != nil {
			return nil, err
		}
		st := state.NewState(cfg, start, target)
		return st, st.LoadMotions(context.Background(), start, motions)
	}

	var start *core.Configuration
	var target *core.Shape
	var err error
	if instance != "" {
		start, target, err = scenario.Load(instance)
	} else {
		p := scenario.DefaultGenParams()
		p.Tiles, p.Seed = tiles, seed
		if p.Shape, err = scenario.ParseShapeKind(shape); err != nil {
			return nil, err
		}
		var in *scenario.Instance
		if in, err = scenario.Generate(p); err != nil {
			return nil, err
		}
		start, target, err = in.Decode()
	}
	if err != nil {
		return nil, err
	}
	return state.NewState(cfg, start, target), nil
}
