package script

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/rehab/internal/engine"
	"github.com/verte-zerg/rehab/internal/generator"
	"github.com/verte-zerg/rehab/internal/level"
	"github.com/verte-zerg/rehab/internal/model"
	"github.com/verte-zerg/rehab/internal/runner"
)

func TestParseScript(t *testing.T) {
	s, err := Parse(strings.NewReader(`
# warm up
right 3
UL 2
wait
pause
quit
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Frames() != 8 {
		t.Fatalf("expected 8 frames, got %d", s.Frames())
	}
	cases := []struct {
		frame uint64
		want  engine.Input
	}{
		{1, engine.Input{Intent: engine.Intent{DX: 1}}},
		{3, engine.Input{Intent: engine.Intent{DX: 1}}},
		{4, engine.Input{Intent: engine.Intent{DX: -1, DY: -1}}},
		{6, engine.Input{}},
		{7, engine.Input{TogglePause: true}},
		{8, engine.Input{Quit: true}},
		{9, engine.Input{}},
	}
	for _, tc := range cases {
		if got := s.Sample(tc.frame); got != tc.want {
			t.Fatalf("frame %d: got %+v, want %+v", tc.frame, got, tc.want)
		}
	}
}

func TestScriptLoop(t *testing.T) {
	s := New([]Step{{Input: engine.Input{Intent: engine.Intent{DX: 1}}, Frames: 2}, {Frames: 1}})
	s.Loop = true
	if got := s.Sample(4); got.Intent.DX != 1 {
		t.Fatalf("expected looped right, got %+v", got)
	}
	if got := s.Sample(6); !got.Intent.Idle() {
		t.Fatalf("expected looped wait, got %+v", got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, body := range []string{"", "# only comments\n", "sideways 3", "left -1", "left 2 3", "quit 4"} {
		if _, err := Parse(strings.NewReader(body)); err == nil {
			t.Fatalf("expected error for %q", body)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for word, want := range map[string]engine.Intent{
		"upleft":     {DX: -1, DY: -1},
		"down_right": {DX: 1, DY: 1},
		"D":          {DY: 1},
		"idle":       {},
	} {
		got, ok := ParseDirection(word)
		if !ok || got != want {
			t.Fatalf("%q: got %+v (%v), want %+v", word, got, ok, want)
		}
	}
	if _, ok := ParseDirection("north"); ok {
		t.Fatalf("expected north to be rejected")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "path.txt")
	if err := os.WriteFile(path, []byte("left 10\nright 10\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Frames() != 20 {
		t.Fatalf("expected 20 frames, got %d", s.Frames())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestAutopilotHitsStaticTargets(t *testing.T) {
	lvl, err := level.Lookup(level.Defaults(), 1)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	s, err := engine.Start(lvl, model.PatientContext{}, engine.WithRandom(generator.NewSeeded(21)))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := runner.New(60, runner.Unpaced()).Run(context.Background(), s, NewAutopilot(s, 10))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Hits < lvl.MinHits || !res.Success {
		t.Fatalf("expected autopilot to pass level 1, got %+v", res)
	}
	if res.AvgReactionMs <= 0 || res.MovementRange <= 0 {
		t.Fatalf("expected reaction and range metrics, got %+v", res)
	}
}
