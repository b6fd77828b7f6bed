package script

import (
	"math"

	"github.com/verte-zerg/rehab/internal/engine"
)

// Tracker exposes the state an autopilot steers by.
type Tracker interface {
	Snapshot() engine.Snapshot
}

// Autopilot steers the actor toward the target, waiting Lag frames after
// each relocation to model a reaction delay.
type Autopilot struct {
	src      Tracker
	Lag      int
	waiting  int
	lastHits int
}

// NewAutopilot returns an autopilot reading positions from src.
func NewAutopilot(src Tracker, lag int) *Autopilot {
	return &Autopilot{src: src, Lag: lag}
}

// Sample returns the intent toward the current target.
func (a *Autopilot) Sample(uint64) engine.Input {
	snap := a.src.Snapshot()
	if snap.Score.Attempts() != a.lastHits {
		a.lastHits = snap.Score.Attempts()
		a.waiting = a.Lag
	}
	if a.waiting > 0 {
		a.waiting--
		return engine.Input{}
	}
	delta := snap.Target.Pos.Sub(snap.Actor.Pos)
	dead := snap.Actor.Speed / 2
	return engine.Input{Intent: engine.Intent{DX: axis(delta.X, dead), DY: axis(delta.Y, dead)}}
}

func axis(d, dead float64) int {
	if math.Abs(d) <= dead {
		return 0
	}
	if d < 0 {
		return -1
	}
	return 1
}
