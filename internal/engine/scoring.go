package engine

import (
	"math"
	"time"
)

// ScoreState is the running score of a session.
type ScoreState struct {
	Score    int
	Hits     int
	Misses   int
	Combo    int
	MaxCombo int
}

// Attempts returns hits plus misses.
func (s ScoreState) Attempts() int {
	return s.Hits + s.Misses
}

// Precision returns hits as a percentage of attempts.
func (s ScoreState) Precision() float64 {
	return Precision(s.Hits, s.Misses)
}

// Precision returns hits/(hits+misses) as a percentage, 0 with no attempts.
func Precision(hits, misses int) float64 {
	total := hits + misses
	if total <= 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Points returns the points for a hit made with the given combo.
func Points(base, combo int, bonusRate float64) int {
	// Epsilon keeps values like 10*1.3 from flooring to 12.
	return int(math.Floor(float64(base)*(1+float64(combo)*bonusRate) + 1e-9))
}

// ScoringEngine applies contact events and combo breaks to a ScoreState.
type ScoringEngine struct {
	state     ScoreState
	base      int
	bonusRate float64
	grace     time.Duration

	overlapping bool
	released    bool
	releasedAt  time.Duration
}

// NewScoringEngine returns an engine awarding base points per hit.
// A positive grace delays combo breaks after the actor leaves the target.
func NewScoringEngine(base int, bonusRate float64, grace time.Duration) *ScoringEngine {
	return &ScoringEngine{base: base, bonusRate: bonusRate, grace: grace}
}

// Contact registers a hit and returns the points awarded.
func (e *ScoringEngine) Contact(ContactEvent) int {
	e.state.Hits++
	e.state.Combo++
	if e.state.Combo > e.state.MaxCombo {
		e.state.MaxCombo = e.state.Combo
	}
	pts := Points(e.base, e.state.Combo, e.bonusRate)
	e.state.Score += pts
	e.released = false
	return pts
}

// Miss registers a missed attempt and breaks the combo.
func (e *ScoringEngine) Miss() {
	e.state.Misses++
	e.state.Combo = 0
	e.released = false
}

// Frame applies the end-of-frame overlap state. The combo breaks on the
// first frame without overlap, or once the grace period has passed.
func (e *ScoringEngine) Frame(overlapping bool, now time.Duration) {
	was := e.overlapping
	e.overlapping = overlapping
	if overlapping {
		e.released = false
		return
	}
	if was {
		if e.grace <= 0 {
			e.state.Combo = 0
			return
		}
		e.released = true
		e.releasedAt = now
		return
	}
	if e.released && now-e.releasedAt > e.grace {
		e.state.Combo = 0
		e.released = false
	}
}

// State returns a copy of the score.
func (e *ScoringEngine) State() ScoreState {
	return e.state
}
