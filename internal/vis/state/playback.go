package state

import "time"

// PlaybackState manages replay timing in simulated seconds.
type PlaybackState struct {
	CurrentTime float64 // simulated seconds
	MaxTime     float64 // length of the replay
	Speed       float64 // 1.0 plays at simulated real time
	Playing     bool
	lastUpdate  time.Time
}

// NewPlaybackState creates a paused playback of length maxTime.
func NewPlaybackState(maxTime float64) *PlaybackState {
	return &PlaybackState{
		MaxTime:    maxTime,
		Speed:      1,
		lastUpdate: time.Now(),
	}
}

// TogglePlay starts or pauses playback. Playing from the end restarts.
func (p *PlaybackState) TogglePlay() {
	p.Playing = !p.Playing
	if p.Playing {
		p.lastUpdate = time.Now()
		if p.CurrentTime >= p.MaxTime {
			p.CurrentTime = 0
		}
	}
}

// Pause stops playback.
func (p *PlaybackState) Pause() { p.Playing = false }

// Reset rewinds and pauses.
func (p *PlaybackState) Reset() {
	p.CurrentTime = 0
	p.Playing = false
}

// Advance moves the playhead by wall time since the last call.
func (p *PlaybackState) Advance() {
	if !p.Playing {
		return
	}
	now := time.Now()
	p.advanceBy(now.Sub(p.lastUpdate).Seconds())
	p.lastUpdate = now
}

func (p *PlaybackState) advanceBy(wall float64) {
	p.CurrentTime += wall * p.Speed
	if p.CurrentTime >= p.MaxTime {
		p.CurrentTime = p.MaxTime
		p.Playing = false
	}
}

// SetTime moves the playhead, clamped to the replay.
func (p *PlaybackState) SetTime(t float64) {
	p.CurrentTime = max(0, min(p.MaxTime, t))
}

// StepForward pauses and skips 1% ahead.
func (p *PlaybackState) StepForward() {
	p.Pause()
	p.SetTime(p.CurrentTime + p.step())
}

// StepBack pauses and skips 1% back.
func (p *PlaybackState) StepBack() {
	p.Pause()
	p.SetTime(p.CurrentTime - p.step())
}

func (p *PlaybackState) step() float64 { return max(0.1, p.MaxTime/100) }

// SetSpeed sets the multiplier, clamped to [0.1, 20].
func (p *PlaybackState) SetSpeed(speed float64) {
	p.Speed = max(0.1, min(20, speed))
}

// Progress returns the playhead position in [0, 1].
func (p *PlaybackState) Progress() float64 {
	if p.MaxTime <= 0 {
		return 0
	}
	return p.CurrentTime / p.MaxTime
}
