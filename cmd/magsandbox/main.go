// Command magsandbox drives cubes with the field from a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/scenario"
	"github.com/elektrokombinacija/magcubes/internal/sim"
	"github.com/elektrokombinacija/magcubes/internal/tui"
)

func main() {
	instance := flag.String("instance", "", "instance or configuration file to start from")
	shape := flag.String("shape", "line", "target shape when generating")
	tiles := flag.Int("tiles", 3, "target size when generating")
	seed := flag.Int64("seed", 1, "generator seed")
	logFile := flag.String("log", "", "write debug log to this file")
	flag.Parse()

	start, target, err := load(*instance, *shape, *tiles, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "magsandbox: %v\n", err)
		os.Exit(1)
	}

	var logger *slog.Logger
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "magsandbox: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "magsandbox: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "magsandbox: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	sb := tui.NewSandbox(screen, sim.DefaultConfig(), start, target, logger)
	err = sb.Run(ctx)
	stop()
	screen.Fini()
	if err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "magsandbox: %v\n", err)
		os.Exit(1)
	}
}

func load(instance, shape string, tiles int, seed int64) (*core.Configuration, *core.Shape, error) {
	if instance != "" {
		return scenario.Load(instance)
	}
	p := scenario.DefaultGenParams()
	p.Tiles, p.Seed = tiles, seed
	var err error
	if p.Shape, err = scenario.ParseShapeKind(shape); err != nil {
		return nil, nil, err
	}
	in, err := scenario.Generate(p)
	if err != nil {
		return nil, nil, err
	}
	return in.Decode()
}
