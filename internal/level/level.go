// Package level defines exercise difficulty levels and their validation.
package level

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
)

// Policy names a target motion policy.
type Policy string

const (
	PolicyStatic      Policy = "static"
	PolicySlowBounce  Policy = "slow-bounce"
	PolicyFastErratic Policy = "fast-erratic"
)

var (
	// ErrInvalidLevel reports level parameters that cannot start a session.
	ErrInvalidLevel = errors.New("invalid level")
	// ErrUnknownLevel reports a level id with no definition.
	ErrUnknownLevel = errors.New("unknown level")
)

var validate = validator.New()

// Level holds the immutable parameters of one exercise level.
// Sizes are diameters in pixels; speeds are pixels per 1/60 s frame.
type Level struct {
	ID          int     `validate:"min=1"`
	Name        string  `validate:"required"`
	ArenaWidth  float64 `validate:"gt=0"`
	ArenaHeight float64 `validate:"gt=0"`

	ActorSize  float64 `validate:"gt=0"`
	ActorSpeed float64 `validate:"gt=0"`

	TargetSize       float64 `validate:"gt=0"`
	Policy           Policy  `validate:"oneof=static slow-bounce fast-erratic"`
	BaseSpeed        float64 `validate:"gte=0"`
	MaxSpeed         float64 `validate:"gte=0"`
	BounceDamping    float64 `validate:"gte=0,lt=1"`
	BounceKick       float64 `validate:"gte=0"`
	PerturbChance    float64 `validate:"gte=0,lte=1"`
	PerturbMagnitude float64 `validate:"gte=0"`

	BasePoints     int     `validate:"gt=0"`
	ComboBonusRate float64 `validate:"gte=0"`
	ComboGrace     time.Duration
	MissTimeout    time.Duration

	Duration           time.Duration
	PrecisionThreshold float64 `validate:"gte=0,lte=100"`
	MinHits            int     `validate:"gte=0"`

	ParticleCount int `validate:"gte=0"`
}

// Validate checks field ranges and the geometry of the arena.
func (l Level) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("%w: level %d: %v", ErrInvalidLevel, l.ID, err)
	}
	switch {
	case l.Duration <= 0:
		return fmt.Errorf("%w: level %d: duration must be > 0", ErrInvalidLevel, l.ID)
	case l.ComboGrace < 0:
		return fmt.Errorf("%w: level %d: combo grace must be >= 0", ErrInvalidLevel, l.ID)
	case l.MissTimeout < 0:
		return fmt.Errorf("%w: level %d: miss timeout must be >= 0", ErrInvalidLevel, l.ID)
	case l.ArenaWidth <= 2*l.TargetSize || l.ArenaHeight <= 2*l.TargetSize:
		return fmt.Errorf("%w: level %d: arena %.0fx%.0f too small for target size %.0f", ErrInvalidLevel, l.ID, l.ArenaWidth, l.ArenaHeight, l.TargetSize)
	case l.ArenaWidth < l.ActorSize || l.ArenaHeight < l.ActorSize:
		return fmt.Errorf("%w: level %d: arena %.0fx%.0f too small for actor size %.0f", ErrInvalidLevel, l.ID, l.ArenaWidth, l.ArenaHeight, l.ActorSize)
	}
	if l.Policy != PolicyStatic {
		if l.BaseSpeed <= 0 {
			return fmt.Errorf("%w: level %d: %s target needs base speed > 0", ErrInvalidLevel, l.ID, l.Policy)
		}
		if l.MaxSpeed < l.BaseSpeed {
			return fmt.Errorf("%w: level %d: max speed %.1f below base speed %.1f", ErrInvalidLevel, l.ID, l.MaxSpeed, l.BaseSpeed)
		}
	}
	return nil
}

// Moving reports whether the target moves under this level's policy.
func (l Level) Moving() bool {
	return l.Policy != PolicyStatic
}

// Defaults returns the built-in levels ordered by id.
func Defaults() []Level {
	base := Level{
		ArenaWidth:     1000,
		ArenaHeight:    700,
		ActorSize:      45,
		ActorSpeed:     8,
		ComboBonusRate: 0.1,
		Duration:       60 * time.Second,
		ParticleCount:  20,
	}

	l1 := base
	l1.ID = 1
	l1.Name = "static target"
	l1.TargetSize = 50
	l1.Policy = PolicyStatic
	l1.BasePoints = 10
	l1.PrecisionThreshold = 60
	l1.MinHits = 3

	l2 := base
	l2.ID = 2
	l2.Name = "slow moving target"
	l2.TargetSize = 45
	l2.Policy = PolicySlowBounce
	l2.BaseSpeed = 2
	l2.MaxSpeed = 8
	l2.BounceDamping = 0.9
	l2.BasePoints = 20
	l2.PrecisionThreshold = 50
	l2.MinHits = 6

	l3 := base
	l3.ID = 3
	l3.Name = "fast moving target"
	l3.TargetSize = 40
	l3.Policy = PolicyFastErratic
	l3.BaseSpeed = 5
	l3.MaxSpeed = 12
	l3.BounceDamping = 0.95
	l3.BounceKick = 2
	l3.PerturbChance = 0.02
	l3.PerturbMagnitude = 3
	l3.BasePoints = 30
	l3.PrecisionThreshold = 40
	l3.MinHits = 9

	return []Level{l1, l2, l3}
}

// Lookup returns the level with the given id.
func Lookup(levels []Level, id int) (Level, error) {
	for _, l := range levels {
		if l.ID == id {
			return l, nil
		}
	}
	return Level{}, fmt.Errorf("%w: %d", ErrUnknownLevel, id)
}

// IDs returns the sorted level ids.
func IDs(levels []Level) []int {
	ids := make([]int, 0, len(levels))
	for _, l := range levels {
		ids = append(ids, l.ID)
	}
	sort.Ints(ids)
	return ids
}
