// Package engine implements the real-time exercise simulation: actor and
// target motion, contact detection, scoring, metrics and hit particles,
// driven one frame at a time by a Session.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/rehab/internal/generator"
	"github.com/verte-zerg/rehab/internal/level"
	"github.com/verte-zerg/rehab/internal/model"
)

// ReferenceRate is the frame rate speeds are expressed against.
const ReferenceRate = 60

// MaxStep caps the time a single tick can cover.
const MaxStep = 100 * time.Millisecond

// subStep bounds the motion integrated between two contact checks, so a
// long tick cannot carry the actor through the target.
const subStep = time.Second / ReferenceRate

var (
	// ErrNotEnded is returned by Finalize before the session has ended.
	ErrNotEnded = errors.New("session has not ended")
	// ErrEnded is returned when ending a session that already ended.
	ErrEnded = errors.New("session already ended")
)

// State is the lifecycle state of a Session.
type State int

const (
	StateRunning State = iota
	StatePaused
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// FrameOutcome reports what happened during one tick.
type FrameOutcome struct {
	Frame   uint64
	State   State
	Hit     bool
	Contact ContactEvent
	Points  int
	Missed  bool
	Ended   bool
}

// Option configures a Session.
type Option func(*Session)

// WithRandom sets the random source. Seeded sources replay identical sessions.
func WithRandom(rnd Random) Option {
	return func(s *Session) { s.rnd = rnd }
}

// WithLogger sets the session logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock sets the wall clock used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithWindowSize sets the number of actor samples kept for velocity.
func WithWindowSize(n int) Option {
	return func(s *Session) { s.windowSize = n }
}

// Session is one exercise attempt. It is not safe for concurrent use.
type Session struct {
	id      string
	level   level.Level
	patient model.PatientContext

	rnd        Random
	log        *zap.Logger
	now        func() time.Time
	windowSize int

	state     State
	cancelled bool
	frame     uint64
	elapsed   time.Duration
	spawnedAt time.Duration
	startedAt time.Time
	endedAt   time.Time

	arena     Bounds
	actor     Actor
	target    Target
	motion    MotionPolicy
	detector  CollisionDetector
	scoring   *ScoringEngine
	metrics   *MetricsRecorder
	particles *ParticleSystem

	result *model.ExerciseResult
}

// Start validates the level and returns a running session. Invalid levels
// return an error and no session.
func Start(lvl level.Level, patient model.PatientContext, opts ...Option) (*Session, error) {
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		id:         uuid.NewString(),
		level:      lvl,
		patient:    patient,
		log:        zap.NewNop(),
		now:        time.Now,
		windowSize: DefaultWindowSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = generator.New()
	}
	s.log = s.log.With(zap.String("session", s.id), zap.Int("exercise_level", lvl.ID))

	s.arena = Bounds{W: lvl.ArenaWidth, H: lvl.ArenaHeight}
	s.actor = Actor{Pos: s.arena.Center(), Size: lvl.ActorSize, Speed: lvl.ActorSpeed}
	s.motion = NewMotionPolicy(lvl)
	s.target = Target{Size: lvl.TargetSize}
	s.target.Relocate(s.arena, s.motion, s.rnd)
	s.scoring = NewScoringEngine(lvl.BasePoints, lvl.ComboBonusRate, lvl.ComboGrace)
	s.metrics = NewMetricsRecorder(s.windowSize)
	s.particles = NewParticleSystem(lvl.ParticleCount)
	s.state = StateRunning
	s.startedAt = s.now()

	s.log.Debug("session started",
		zap.String("patient", patient.ID),
		zap.String("policy", string(lvl.Policy)),
		zap.Duration("duration", lvl.Duration))
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Level returns the level the session was started with.
func (s *Session) Level() level.Level {
	return s.level
}

// Patient returns the patient context.
func (s *Session) Patient() model.PatientContext {
	return s.patient
}

// State returns the lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Elapsed returns the active (unpaused) exercise time.
func (s *Session) Elapsed() time.Duration {
	return s.elapsed
}

// Tick advances the session by one frame of duration dt.
// Paused sessions only react to pause and quit; ended sessions ignore input.
func (s *Session) Tick(dt time.Duration, in Input) FrameOutcome {
	if s.state == StateEnded {
		return FrameOutcome{Frame: s.frame, State: StateEnded, Ended: true}
	}
	s.frame++
	out := FrameOutcome{Frame: s.frame}

	if in.Quit {
		s.finish(true)
		out.State, out.Ended = s.state, true
		return out
	}
	if in.TogglePause {
		s.togglePause()
	}
	if s.state == StatePaused {
		out.State = s.state
		return out
	}

	dt = s.step(dt)
	for dt > 0 {
		h := min(dt, subStep)
		dt -= h
		s.advance(h, in.Intent, &out)
	}
	s.metrics.Sample(s.actor.Pos, s.elapsed)

	if s.elapsed >= s.level.Duration {
		s.finish(false)
	}
	out.State = s.state
	out.Ended = s.state == StateEnded
	return out
}

// End stops the session early. The result is marked incomplete.
func (s *Session) End() error {
	if s.state == StateEnded {
		return ErrEnded
	}
	s.finish(true)
	return nil
}

// Finalize builds the immutable result. It is only valid once ended and
// returns the same result on every call.
func (s *Session) Finalize() (model.ExerciseResult, error) {
	if s.state != StateEnded {
		return model.ExerciseResult{}, ErrNotEnded
	}
	if s.result != nil {
		return *s.result, nil
	}
	score := s.scoring.State()
	m := s.metrics.Summary()
	precision := score.Precision()
	res := model.ExerciseResult{
		SessionID:     s.id,
		PatientID:     s.patient.ID,
		Level:         s.level.ID,
		LevelName:     s.level.Name,
		Completed:     !s.cancelled,
		Success:       !s.cancelled && precision >= s.level.PrecisionThreshold && score.Hits >= s.level.MinHits,
		Score:         score.Score,
		Hits:          score.Hits,
		Misses:        score.Misses,
		Precision:     precision,
		MaxCombo:      score.MaxCombo,
		AvgVelocity:   m.Velocity,
		MovementRange: m.Range,
		AvgReactionMs: float64(m.AvgReaction) / float64(time.Millisecond),
		Consistency:   m.Consistency,
		PathLength:    m.PathLength,
		Elapsed:       s.elapsed,
		StartedAt:     s.startedAt,
		EndedAt:       s.endedAt,
	}
	s.result = &res
	return res, nil
}

// advance moves the actor and target by h, checks contact and applies the
// hit or miss that follows.
func (s *Session) advance(h time.Duration, intent Intent, out *FrameOutcome) {
	s.elapsed += h
	now := s.elapsed
	scale := h.Seconds() * ReferenceRate

	s.actor.Move(intent, scale, s.arena)
	s.motion.Step(&s.target, scale, s.arena, s.rnd)
	s.target.Phase += phaseStep * scale

	ev, hit := s.detector.Detect(s.actor, s.target, now)
	overlapping := s.detector.Overlapping()
	switch {
	case hit:
		pts := s.scoring.Contact(ev)
		out.Hit, out.Contact = true, ev
		out.Points += pts
		s.metrics.Contact(now)
		s.particles.Burst(ev.TargetPos, s.rnd)
		s.relocate(now)
		s.log.Debug("hit",
			zap.Int("points", pts),
			zap.Int("combo", s.scoring.State().Combo),
			zap.Duration("at", now))
	case s.missDue(now):
		out.Missed = true
		s.scoring.Miss()
		s.relocate(now)
		s.log.Debug("miss", zap.Duration("at", now))
	}
	s.scoring.Frame(overlapping, now)
	s.particles.Update(scale)
}

func (s *Session) step(dt time.Duration) time.Duration {
	if dt < 0 {
		dt = 0
	}
	if dt > MaxStep {
		dt = MaxStep
	}
	if remaining := s.level.Duration - s.elapsed; dt > remaining {
		dt = remaining
	}
	return dt
}

func (s *Session) togglePause() {
	switch s.state {
	case StateRunning:
		s.state = StatePaused
	case StatePaused:
		s.state = StateRunning
	}
	s.log.Debug("pause toggled", zap.Stringer("state", s.state))
}

func (s *Session) missDue(now time.Duration) bool {
	return s.level.MissTimeout > 0 && now-s.spawnedAt >= s.level.MissTimeout
}

// relocate respawns the target. A target placed under the actor counts as
// a fresh contact on the next check.
func (s *Session) relocate(now time.Duration) {
	s.target.Relocate(s.arena, s.motion, s.rnd)
	s.detector.Reset()
	s.spawnedAt = now
}

func (s *Session) finish(cancelled bool) {
	s.state = StateEnded
	s.cancelled = cancelled
	s.endedAt = s.now()
	score := s.scoring.State()
	s.log.Debug("session ended",
		zap.Bool("cancelled", cancelled),
		zap.Int("score", score.Score),
		zap.Int("hits", score.Hits),
		zap.Int("misses", score.Misses),
		zap.Duration("elapsed", s.elapsed))
}
