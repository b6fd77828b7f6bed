package engine

import "math"

// Vector2 is a point or displacement in arena pixels.
type Vector2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Scale returns v * s.
func (v Vector2) Scale(s float64) Vector2 {
	return Vector2{X: v.X * s, Y: v.Y * s}
}

// Len returns the magnitude of v.
func (v Vector2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the distance between v and o.
func (v Vector2) Dist(o Vector2) float64 {
	return v.Sub(o).Len()
}

// Limit caps the magnitude of v at max, keeping its direction.
func (v Vector2) Limit(max float64) Vector2 {
	l := v.Len()
	if max <= 0 || l <= max {
		return v
	}
	return v.Scale(max / l)
}

// Bounds is the arena size in pixels. The origin is the top-left corner.
type Bounds struct {
	W, H float64
}

// Clamp keeps p inside the bounds shrunk by margin on every side.
func (b Bounds) Clamp(p Vector2, margin float64) Vector2 {
	return Vector2{
		X: clamp(p.X, margin, b.W-margin),
		Y: clamp(p.Y, margin, b.H-margin),
	}
}

// Center returns the middle of the arena.
func (b Bounds) Center() Vector2 {
	return Vector2{X: b.W / 2, Y: b.H / 2}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
