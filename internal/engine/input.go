package engine

import "math"

// Intent is an 8-way movement direction. Each component is -1, 0 or 1.
type Intent struct {
	DX, DY int
}

// Input is one frame of sampled controls.
type Input struct {
	Intent      Intent
	TogglePause bool
	Quit        bool
}

// IntentFrom builds an Intent from four held directions.
// Opposite directions cancel out.
func IntentFrom(left, right, up, down bool) Intent {
	var in Intent
	if left {
		in.DX--
	}
	if right {
		in.DX++
	}
	if up {
		in.DY--
	}
	if down {
		in.DY++
	}
	return in
}

// Idle reports whether no direction is held.
func (in Intent) Idle() bool {
	return in.DX == 0 && in.DY == 0
}

// Vector returns the unit-speed displacement for the intent.
// Diagonals are scaled so their magnitude matches straight movement.
func (in Intent) Vector() Vector2 {
	v := Vector2{X: float64(sign(in.DX)), Y: float64(sign(in.DY))}
	if v.X != 0 && v.Y != 0 {
		v = v.Scale(1 / math.Sqrt2)
	}
	return v
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
