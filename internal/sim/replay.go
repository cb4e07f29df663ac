package sim

import (
	"context"

	"github.com/elektrokombinacija/magcubes/internal/core"
)

// Frame is a recorded snapshot during a replay.
type Frame struct {
	Step   int // world step count
	Motion int // index of the motion being executed
	Config *core.Configuration
}

// Recorder collects a snapshot every Every steps.
type Recorder struct {
	Every  int
	Frames []Frame
}

func (r *Recorder) capture(w *World, motion int) {
	r.Frames = append(r.Frames, Frame{Step: w.metrics.Steps, Motion: motion, Config: w.Snapshot()})
}

// Replay re-runs motions from initial. With a recorder it also keeps
// periodic frames. The first frame holds initial itself and the last one
// the returned state.
func Replay(ctx context.Context, cfg Config, initial *core.Configuration, motions []Motion, rec *Recorder) (*core.Configuration, error) {
	w := NewWorld(cfg, initial)
	if rec != nil {
		rec.Frames = append(rec.Frames, Frame{Config: initial})
	}
	for i, m := range motions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, s := range m.Steps(w.params()) {
			w.Step(s.AngleChange, s.Elevation)
			if rec != nil && rec.Every > 0 && w.metrics.Steps%rec.Every == 0 {
				rec.capture(w, i)
			}
		}
	}
	final := w.Snapshot()
	if rec != nil {
		rec.Frames = append(rec.Frames, Frame{Step: w.Metrics().Steps, Motion: len(motions), Config: final})
	}
	return final, nil
}
