package engine

import (
	"math"

	"github.com/verte-zerg/rehab/internal/level"
)

// phaseStep advances the target's visual pulse per reference frame.
const phaseStep = 0.1

// Random is the source of randomness a session draws from.
type Random interface {
	Uniform(lo, hi float64) float64
	Sign() float64
	Chance(p float64) bool
}

// Target is the goal the actor must reach.
type Target struct {
	Pos   Vector2
	Vel   Vector2
	Size  float64
	Phase float64
}

// Radius returns half the target size.
func (t Target) Radius() float64 {
	return t.Size / 2
}

// Margin is the distance from each arena edge the target centre keeps.
func (t Target) Margin() float64 {
	return t.Size
}

// Pulse returns a value in [0, 1] used to animate the target.
func (t Target) Pulse() float64 {
	return (math.Sin(t.Phase) + 1) / 2
}

// MotionPolicy moves a target each frame.
type MotionPolicy interface {
	// Spawn returns the velocity of a freshly placed target.
	Spawn(rnd Random) Vector2
	// Step advances the target by scale reference frames.
	Step(t *Target, scale float64, arena Bounds, rnd Random)
}

// NewMotionPolicy returns the policy for a level.
func NewMotionPolicy(lvl level.Level) MotionPolicy {
	switch lvl.Policy {
	case level.PolicySlowBounce, level.PolicyFastErratic:
		return bounceMotion{
			baseSpeed: lvl.BaseSpeed,
			maxSpeed:  lvl.MaxSpeed,
			damping:   lvl.BounceDamping,
			kick:      lvl.BounceKick,
			chance:    lvl.PerturbChance,
			perturb:   lvl.PerturbMagnitude,
			erratic:   lvl.Policy == level.PolicyFastErratic,
		}
	default:
		return staticMotion{}
	}
}

type staticMotion struct{}

func (staticMotion) Spawn(Random) Vector2 { return Vector2{} }

func (staticMotion) Step(t *Target, _ float64, _ Bounds, _ Random) {
	t.Vel = Vector2{}
}

type bounceMotion struct {
	baseSpeed float64
	maxSpeed  float64
	damping   float64
	kick      float64
	chance    float64
	perturb   float64
	erratic   bool
}

func (m bounceMotion) Spawn(rnd Random) Vector2 {
	v := Vector2{X: rnd.Sign() * m.baseSpeed, Y: rnd.Sign() * m.baseSpeed}
	return v.Limit(m.maxSpeed)
}

func (m bounceMotion) Step(t *Target, scale float64, arena Bounds, rnd Random) {
	t.Pos = t.Pos.Add(t.Vel.Scale(scale))
	margin := t.Margin()

	// Velocity after a bounce always points back into the arena so a
	// clamped target cannot stick to the wall.
	if t.Pos.X <= margin || t.Pos.X >= arena.W-margin {
		speed := math.Abs(t.Vel.X) * m.damping
		if t.Pos.X <= margin {
			t.Vel.X = speed
		} else {
			t.Vel.X = -speed
		}
		if m.erratic {
			t.Vel.Y += rnd.Sign() * m.kick
		}
	}
	if t.Pos.Y <= margin || t.Pos.Y >= arena.H-margin {
		speed := math.Abs(t.Vel.Y) * m.damping
		if t.Pos.Y <= margin {
			t.Vel.Y = speed
		} else {
			t.Vel.Y = -speed
		}
		if m.erratic {
			t.Vel.X += rnd.Sign() * m.kick
		}
	}
	t.Pos = arena.Clamp(t.Pos, margin)

	if m.erratic && rnd.Chance(math.Min(1, m.chance*scale)) {
		t.Vel.X += rnd.Uniform(-m.perturb, m.perturb)
		t.Vel.Y += rnd.Uniform(-m.perturb, m.perturb)
	}
	t.Vel = t.Vel.Limit(m.maxSpeed)
}

// Relocate places the target uniformly inside the arena margin and draws a
// fresh velocity from the policy.
func (t *Target) Relocate(arena Bounds, motion MotionPolicy, rnd Random) {
	m := t.Margin()
	t.Pos = Vector2{
		X: rnd.Uniform(m, arena.W-m),
		Y: rnd.Uniform(m, arena.H-m),
	}
	t.Vel = motion.Spawn(rnd)
}
