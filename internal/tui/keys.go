package tui

import (
	"time"

	"github.com/verte-zerg/rehab/internal/engine"
)

// DefaultHold is how long a direction stays held after its last key event.
const DefaultHold = 120 * time.Millisecond

type direction int

const (
	dirLeft direction = iota
	dirRight
	dirUp
	dirDown
	dirCount
)

var directionKeys = map[string]direction{
	"left": dirLeft, "h": dirLeft, "a": dirLeft,
	"right": dirRight, "l": dirRight, "d": dirRight,
	"up": dirUp, "k": dirUp, "w": dirUp,
	"down": dirDown, "j": dirDown, "s": dirDown,
}

// keyState turns terminal key events into held directions. Terminals only
// report presses and auto-repeats, so a direction counts as held for a
// short window after each event.
type keyState struct {
	hold time.Duration
	last [dirCount]time.Time
}

func newKeyState(hold time.Duration) *keyState {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &keyState{hold: hold}
}

func (k *keyState) press(d direction, at time.Time) {
	k.last[d] = at
}

func (k *keyState) held(d direction, now time.Time) bool {
	t := k.last[d]
	return !t.IsZero() && now.Sub(t) <= k.hold
}

func (k *keyState) intent(now time.Time) engine.Intent {
	return engine.IntentFrom(
		k.held(dirLeft, now),
		k.held(dirRight, now),
		k.held(dirUp, now),
		k.held(dirDown, now),
	)
}

func (k *keyState) reset() {
	k.last = [dirCount]time.Time{}
}
