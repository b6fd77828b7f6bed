package engine

// Actor is the patient-controlled body.
type Actor struct {
	Pos   Vector2
	Size  float64
	Speed float64
}

// Radius returns half the actor size.
func (a Actor) Radius() float64 {
	return a.Size / 2
}

// Move advances the actor by intent for scale reference frames and clamps it
// so the whole body stays inside the arena.
func (a *Actor) Move(in Intent, scale float64, arena Bounds) {
	step := in.Vector().Scale(a.Speed * scale)
	a.Pos = arena.Clamp(a.Pos.Add(step), a.Radius())
}
