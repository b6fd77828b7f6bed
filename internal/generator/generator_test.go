package generator

import "testing"

func TestSeededSequenceRepeats(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 50; i++ {
		if x, y := a.Uniform(-5, 5), b.Uniform(-5, 5); x != y {
			t.Fatalf("draw %d: got %v and %v for the same seed", i, x, y)
		}
	}
	if a.Seed() != 42 {
		t.Fatalf("expected seed 42, got %d", a.Seed())
	}
}

func TestUniformBounds(t *testing.T) {
	g := NewSeeded(1)
	for i := 0; i < 1000; i++ {
		v := g.Uniform(3, -3)
		if v < -3 || v >= 3 {
			t.Fatalf("value %v out of [-3, 3)", v)
		}
	}
}

func TestSignAndChance(t *testing.T) {
	g := NewSeeded(7)
	seen := map[float64]bool{}
	for i := 0; i < 100; i++ {
		seen[g.Sign()] = true
	}
	if !seen[-1] || !seen[1] || len(seen) != 2 {
		t.Fatalf("expected both signs, got %v", seen)
	}
	if g.Chance(0) {
		t.Fatalf("chance 0 should never fire")
	}
	if !g.Chance(1) {
		t.Fatalf("chance 1 should always fire")
	}
}
