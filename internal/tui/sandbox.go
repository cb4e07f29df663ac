package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/elektrokombinacija/magcubes/internal/core"
	"github.com/elektrokombinacija/magcubes/internal/sim"
)

const (
	frameInterval = 33 * time.Millisecond
	stepsPerFrame = 6
)

var commandKeys = map[rune]sim.Command{
	'q': sim.RotateLeft,
	'e': sim.RotateRight,
	'a': sim.WalkWest,
	'd': sim.WalkEast,
	'w': sim.TiltNorth,
	's': sim.TiltSouth,
	'h': sim.Level,
}

// Sandbox runs a sim.Driver on a terminal screen.
type Sandbox struct {
	screen tcell.Screen
	driver *sim.Driver
	start  *core.Configuration
	target *core.Shape
	view   View
	cursor core.Vec
	place  core.CubeType
	logger *slog.Logger
}

// NewSandbox drives a copy of start on screen. The screen must already be
// initialized. target may be nil.
func NewSandbox(screen tcell.Screen, cfg sim.Config, start *core.Configuration, target *core.Shape, logger *slog.Logger) *Sandbox {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Sandbox{
		screen: screen,
		driver: sim.NewDriver(cfg, start),
		start:  start,
		target: target,
		cursor: core.V(start.Width/2, start.Height/2),
		logger: logger,
	}
	s.resize()
	return s
}

// Driver returns the underlying driver.
func (s *Sandbox) Driver() *sim.Driver { return s.driver }

func (s *Sandbox) resize() {
	w, h := s.screen.Size()
	s.view = FitView(s.start.Width, s.start.Height, w, h)
}

// Run handles input and animates queued motions until the user quits or
// ctx is done.
func (s *Sandbox) Run(ctx context.Context) error {
	s.screen.EnableMouse()
	defer s.screen.DisableMouse()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	s.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !s.Handle(ev) {
				return nil
			}
			s.draw()
		case <-ticker.C:
			if s.driver.Busy() {
				s.driver.Tick(stepsPerFrame)
				s.draw()
			}
		}
	}
}

// Handle applies one input event and reports whether the sandbox should
// keep running.
func (s *Sandbox) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyEnter:
			s.Place()
		case tcell.KeyUp:
			s.MoveCursor(0, -1)
		case tcell.KeyDown:
			s.MoveCursor(0, 1)
		case tcell.KeyLeft:
			s.MoveCursor(-1, 0)
		case tcell.KeyRight:
			s.MoveCursor(1, 0)
		case tcell.KeyRune:
			s.Press(ev.Rune())
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			s.cursor = s.view.ToBoard(x, y)
			s.Place()
		}
	case *tcell.EventResize:
		s.screen.Sync()
		s.resize()
	}
	return true
}

// Press handles a printable key.
func (s *Sandbox) Press(r rune) {
	if cmd, ok := commandKeys[r]; ok {
		s.driver.Do(cmd)
		s.logger.Debug("command", "motion", s.driver.Motion(cmd))
		return
	}
	switch r {
	case 't':
		s.place = 1 - s.place
	case 'r':
		s.driver.Reset(s.start)
	case ' ':
		s.Place()
	}
}

// MoveCursor shifts the placement cursor by whole terminal cells.
func (s *Sandbox) MoveCursor(dx, dy int) {
	x, y := s.view.ToCell(s.cursor)
	next := s.view.ToBoard(x+dx, y+dy)
	if next.X < 0 || next.X > s.view.Width || next.Y < 0 || next.Y > s.view.Height {
		return
	}
	s.cursor = next
}

// Place drops a cube of the selected type at the cursor.
func (s *Sandbox) Place() bool {
	c, ok := s.driver.Place(s.place, s.cursor)
	if !ok {
		s.logger.Debug("place rejected", "pos", s.cursor)
		return false
	}
	s.logger.Debug("placed", "cube", c, "pos", s.cursor)
	return true
}

func (s *Sandbox) draw() {
	Render(s.screen, s.view, Frame{
		Config:  s.driver.World().Snapshot(),
		Target:  s.target,
		Cursor:  s.cursor,
		Place:   s.place,
		Motions: len(s.driver.History()),
		Busy:    s.driver.Busy(),
	})
}
