// Package generator provides the seeded random source used by exercise sessions.
package generator

import (
	"math/rand"
	"time"
)

// Generator produces random values for target spawning, motion and particles.
type Generator struct {
	rnd  *rand.Rand
	seed int64
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator that replays the same sequence for a seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed)), seed: seed}
}

// Seed returns the seed the generator was created with.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Uniform returns a value in [lo, hi). Swapped bounds are reordered.
func (g *Generator) Uniform(lo, hi float64) float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + g.rnd.Float64()*(hi-lo)
}

// Sign returns -1 or 1 with equal probability.
func (g *Generator) Sign() float64 {
	if g.rnd.Intn(2) == 0 {
		return -1
	}
	return 1
}

// Chance reports true with probability p.
func (g *Generator) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return g.rnd.Float64() < p
}
