package engine

import (
	"context"
	"time"

	"github.com/verte-zerg/rehab/internal/model"
)

// Snapshot is a read-only copy of a session for rendering.
type Snapshot struct {
	Frame     uint64
	State     State
	Level     int
	LevelName string
	Arena     Bounds
	Actor     Actor
	Target    Target
	Score     ScoreState
	Metrics   MetricsSummary
	Particles []Particle
	Elapsed   time.Duration
	Remaining time.Duration
}

// Snapshot copies the current session state.
func (s *Session) Snapshot() Snapshot {
	remaining := s.level.Duration - s.elapsed
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		Frame:     s.frame,
		State:     s.state,
		Level:     s.level.ID,
		LevelName: s.level.Name,
		Arena:     s.arena,
		Actor:     s.actor,
		Target:    s.target,
		Score:     s.scoring.State(),
		Metrics:   s.metrics.Summary(),
		Particles: s.particles.Particles(),
		Elapsed:   s.elapsed,
		Remaining: remaining,
	}
}

// InputSource supplies the controls for each frame.
type InputSource interface {
	Sample(frame uint64) Input
}

// RenderSink receives a snapshot once per frame. It must not retain
// references across calls.
type RenderSink interface {
	Render(Snapshot)
}

// Recorder persists a finished result. It is called once per session.
type Recorder interface {
	Record(ctx context.Context, patientID string, level int, res model.ExerciseResult) error
}

// InputFunc adapts a function to InputSource.
type InputFunc func(frame uint64) Input

// Sample calls f.
func (f InputFunc) Sample(frame uint64) Input {
	return f(frame)
}
