package level

import (
	"errors"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	levels := Defaults()
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(levels))
	}
	want := map[int]struct {
		threshold float64
		minHits   int
	}{1: {60, 3}, 2: {50, 6}, 3: {40, 9}}
	for _, l := range levels {
		if err := l.Validate(); err != nil {
			t.Fatalf("level %d invalid: %v", l.ID, err)
		}
		w := want[l.ID]
		if l.PrecisionThreshold != w.threshold || l.MinHits != w.minHits {
			t.Fatalf("level %d thresholds: got %v/%d", l.ID, l.PrecisionThreshold, l.MinHits)
		}
	}
}

func TestLookup(t *testing.T) {
	l, err := Lookup(Defaults(), 3)
	if err != nil || l.Policy != PolicyFastErratic {
		t.Fatalf("lookup 3: %+v, %v", l, err)
	}
	if _, err := Lookup(Defaults(), 4); !errors.Is(err, ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}
	if ids := IDs(Defaults()); len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestValidateRejects(t *testing.T) {
	base, _ := Lookup(Defaults(), 2)
	cases := map[string]func(*Level){
		"zero target":       func(l *Level) { l.TargetSize = 0 },
		"unknown policy":    func(l *Level) { l.Policy = "zigzag" },
		"damping too high":  func(l *Level) { l.BounceDamping = 1 },
		"threshold > 100":   func(l *Level) { l.PrecisionThreshold = 120 },
		"no duration":       func(l *Level) { l.Duration = 0 },
		"arena too small":   func(l *Level) { l.ArenaWidth = 60 },
		"max below base":    func(l *Level) { l.MaxSpeed = 1 },
		"negative timeout":  func(l *Level) { l.MissTimeout = -1 },
		"missing name":      func(l *Level) { l.Name = "" },
		"moving zero speed": func(l *Level) { l.BaseSpeed = 0 },
	}
	for name, mutate := range cases {
		l := base
		mutate(&l)
		if err := l.Validate(); !errors.Is(err, ErrInvalidLevel) {
			t.Fatalf("%s: expected ErrInvalidLevel, got %v", name, err)
		}
	}
}
