package engine

import "time"

// ContactEvent is emitted once when the actor starts touching the target.
type ContactEvent struct {
	At        time.Duration
	ActorPos  Vector2
	TargetPos Vector2
}

// Overlaps reports whether the actor and target circles touch.
func Overlaps(a Actor, t Target) bool {
	return a.Pos.Dist(t.Pos) <= a.Radius()+t.Radius()
}

// CollisionDetector turns per-frame overlap into edge-triggered contacts.
type CollisionDetector struct {
	overlapping bool
}

// Detect returns a ContactEvent only on the frame overlap begins.
func (d *CollisionDetector) Detect(a Actor, t Target, at time.Duration) (ContactEvent, bool) {
	now := Overlaps(a, t)
	was := d.overlapping
	d.overlapping = now
	if !now || was {
		return ContactEvent{}, false
	}
	return ContactEvent{At: at, ActorPos: a.Pos, TargetPos: t.Pos}, true
}

// Overlapping reports the overlap state of the last frame.
func (d *CollisionDetector) Overlapping() bool {
	return d.overlapping
}

// Reset forgets the previous overlap, so an actor already touching a freshly
// placed target registers a contact.
func (d *CollisionDetector) Reset() {
	d.overlapping = false
}
