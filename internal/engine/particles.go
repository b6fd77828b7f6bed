package engine

import "math"

const (
	particleSpread  = 5.0
	particleDecay   = 0.02
	particleDamping = 0.98
	particleMinSize = 3.0
	particleMaxSize = 8.0
)

// Particle is a short-lived hit marker.
type Particle struct {
	Pos  Vector2
	Vel  Vector2
	Life float64
	Size float64
}

// ParticleSystem owns the active particles.
type ParticleSystem struct {
	active []Particle
	count  int
}

// NewParticleSystem returns a system emitting count particles per burst.
func NewParticleSystem(count int) *ParticleSystem {
	return &ParticleSystem{count: count}
}

// Burst spawns a full-life ring of particles at p.
func (ps *ParticleSystem) Burst(p Vector2, rnd Random) {
	for i := 0; i < ps.count; i++ {
		ps.active = append(ps.active, Particle{
			Pos: p,
			Vel: Vector2{
				X: rnd.Uniform(-particleSpread, particleSpread),
				Y: rnd.Uniform(-particleSpread, particleSpread),
			},
			Life: 1,
			Size: rnd.Uniform(particleMinSize, particleMaxSize),
		})
	}
}

// Update advances particles by scale reference frames and drops the dead
// ones in the same call.
func (ps *ParticleSystem) Update(scale float64) {
	damp := math.Pow(particleDamping, scale)
	alive := ps.active[:0]
	for _, p := range ps.active {
		p.Pos = p.Pos.Add(p.Vel.Scale(scale))
		p.Vel = p.Vel.Scale(damp)
		p.Life -= particleDecay * scale
		if p.Life <= 0 {
			continue
		}
		alive = append(alive, p)
	}
	for i := len(alive); i < len(ps.active); i++ {
		ps.active[i] = Particle{}
	}
	ps.active = alive
}

// Len returns the number of live particles.
func (ps *ParticleSystem) Len() int {
	return len(ps.active)
}

// Particles returns a copy of the live particles.
func (ps *ParticleSystem) Particles() []Particle {
	out := make([]Particle, len(ps.active))
	copy(out, ps.active)
	return out
}
