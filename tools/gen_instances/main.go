// Package main writes reconfiguration benchmark instances.
// Generation is deterministic in the seed.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elektrokombinacija/magcubes/internal/scenario"
)

func main() {
	seed := flag.Int64("seed", 1, "Random seed for the first instance")
	count := flag.Int("count", 1, "Instances per parameter combination, seeds counting up")
	width := flag.Float64("width", 400, "Board width")
	height := flag.Float64("height", 300, "Board height")
	tiles := flag.Int("tiles", 4, "Target shape size")
	shape := flag.String("shape", "line", "Target shape: line, square, l, t or random")
	leftover := flag.Int("leftover", 0, "Extra single cubes")
	variant := flag.String("variant", "fixed", "Type variant: fixed or free")
	outputDir := flag.String("output", "testdata", "Output directory")
	suite := flag.Bool("suite", false, "Generate the full suite: every board, shape and 2-6 tiles")

	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	var grid []scenario.GenParams
	if *suite {
		for _, b := range scenario.Boards {
			for _, kind := range scenario.ShapeKinds() {
				for n := 2; n <= 6; n++ {
					p := scenario.DefaultGenParams()
					p.Width, p.Height = b.Width, b.Height
					p.Shape, p.Tiles, p.Leftover = kind, n, *leftover
					p.Variant = scenario.Variant(*variant)
					grid = append(grid, p)
				}
			}
		}
	} else {
		kind, err := scenario.ParseShapeKind(*shape)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		p := scenario.DefaultGenParams()
		p.Width, p.Height = *width, *height
		p.Shape, p.Tiles, p.Leftover = kind, *tiles, *leftover
		p.Variant = scenario.Variant(*variant)
		grid = append(grid, p)
	}

	written := 0
	for _, p := range grid {
		for i := 0; i < *count; i++ {
			p.Seed = *seed + int64(i)
			inst, err := scenario.Generate(p)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", scenario.InstanceName(p), err)
				continue
			}
			filename := filepath.Join(*outputDir, inst.Name+".json")
			if err := inst.Save(filename); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing instance %s: %v\n", filename, err)
				continue
			}
			written++
			fmt.Printf("Generated: %s (%d cubes, %s of %d, %.0fx%.0f board)\n",
				filename, len(inst.Config.Cubes), p.Shape, p.Tiles, p.Width, p.Height)
		}
	}
	fmt.Printf("%d instances written to %s\n", written, *outputDir)
}
