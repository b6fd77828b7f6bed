package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/rehab/internal/engine"
	"github.com/verte-zerg/rehab/internal/level"
	"github.com/verte-zerg/rehab/internal/model"
)

type fakeRecorder struct {
	calls int
	err   error
}

func (f *fakeRecorder) Record(context.Context, string, int, model.ExerciseResult) error {
	f.calls++
	return f.err
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestModel(t *testing.T, rec engine.Recorder) (*Model, *clock) {
	t.Helper()
	lvl, err := level.Lookup(level.Defaults(), 2)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	lvl.Duration = time.Second
	m, err := NewModel(Options{
		Level:   lvl,
		Patient: model.PatientContext{ID: "p1", Name: "Ana"},
		FPS:     60,
		Seed:    7,
	}, rec, nil)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	c := &clock{t: time.Unix(1000, 0)}
	m.now = c.now
	return m, c
}

func (c *clock) frame(m *Model) tea.Cmd {
	c.t = c.t.Add(time.Second / 60)
	_, cmd := m.Update(frameMsg(c.t))
	return cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestHeldKeyMovesActor(t *testing.T) {
	m, c := newTestModel(t, nil)
	c.frame(m)
	start := m.session.Snapshot().Actor.Pos
	m.Update(key("left"))
	c.frame(m)
	moved := m.session.Snapshot().Actor.Pos
	if moved.X >= start.X {
		t.Fatalf("expected actor to move left: %v -> %v", start, moved)
	}
	for i := 0; i < 12; i++ {
		c.frame(m)
	}
	stopped := m.session.Snapshot().Actor.Pos
	c.frame(m)
	if m.session.Snapshot().Actor.Pos != stopped {
		t.Fatalf("actor should stop once the hold window passes")
	}
}

func TestPauseShowsBanner(t *testing.T) {
	m, c := newTestModel(t, nil)
	m.Update(key("space"))
	c.frame(m)
	if m.session.State() != engine.StatePaused {
		t.Fatalf("expected paused, got %v", m.session.State())
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Fatalf("expected pause banner")
	}
	elapsed := m.session.Elapsed()
	c.frame(m)
	if m.session.Elapsed() != elapsed {
		t.Fatalf("time should not advance while paused")
	}
	m.Update(key("p"))
	c.frame(m)
	if m.session.State() != engine.StateRunning {
		t.Fatalf("expected running after second toggle")
	}
}

func TestSessionEndRecordsOnceAndRestarts(t *testing.T) {
	rec := &fakeRecorder{}
	m, c := newTestModel(t, rec)
	var cmd tea.Cmd
	for i := 0; i < 200 && m.result == nil; i++ {
		cmd = c.frame(m)
	}
	res, ok := m.Result()
	if !ok || !res.Completed {
		t.Fatalf("expected completed result, got %+v (%v)", res, ok)
	}
	if cmd != nil {
		t.Fatalf("frame loop should stop at the results screen")
	}
	if rec.calls != 1 {
		t.Fatalf("expected 1 record call, got %d", rec.calls)
	}
	c.frame(m)
	if rec.calls != 1 {
		t.Fatalf("extra frames must not record again")
	}
	if view := m.View(); !strings.Contains(view, "Result saved for Ana") {
		t.Fatalf("expected saved status in view:\n%s", view)
	}

	first := m.session.ID()
	_, cmd = m.Update(key("r"))
	if cmd == nil || m.result != nil {
		t.Fatalf("restart should resume the frame loop")
	}
	if m.session.ID() == first {
		t.Fatalf("restart must create a new session")
	}
}

func TestQuitRecordsIncompleteResult(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("database is locked")}
	m, c := newTestModel(t, rec)
	c.frame(m)
	m.Update(key("esc"))
	c.frame(m)
	res, ok := m.Result()
	if !ok || res.Completed || res.Success {
		t.Fatalf("expected incomplete result, got %+v", res)
	}
	if rec.calls != 1 {
		t.Fatalf("expected 1 record call, got %d", rec.calls)
	}
	if !strings.Contains(m.View(), "Could not save result") {
		t.Fatalf("expected save error in view")
	}
}

func TestCtrlCQuitsProgram(t *testing.T) {
	m, c := newTestModel(t, nil)
	m.Update(key("ctrl+c"))
	cmd := c.frame(m)
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestKeyStateHoldWindow(t *testing.T) {
	k := newKeyState(100 * time.Millisecond)
	t0 := time.Unix(0, 0)
	k.press(dirLeft, t0)
	k.press(dirUp, t0.Add(50*time.Millisecond))
	if got := k.intent(t0.Add(80 * time.Millisecond)); got != (engine.Intent{DX: -1, DY: -1}) {
		t.Fatalf("expected up-left, got %+v", got)
	}
	if got := k.intent(t0.Add(120 * time.Millisecond)); got != (engine.Intent{DY: -1}) {
		t.Fatalf("expected up only, got %+v", got)
	}
	k.press(dirRight, t0.Add(130*time.Millisecond))
	k.press(dirLeft, t0.Add(130*time.Millisecond))
	if got := k.intent(t0.Add(140 * time.Millisecond)); got.DX != 0 {
		t.Fatalf("opposite directions should cancel, got %+v", got)
	}
}

func TestRenderArenaDrawsBodies(t *testing.T) {
	snap := engine.Snapshot{
		Arena:  engine.Bounds{W: 100, H: 50},
		Actor:  engine.Actor{Pos: engine.Vector2{X: 10, Y: 10}, Size: 10},
		Target: engine.Target{Pos: engine.Vector2{X: 80, Y: 40}, Size: 10},
	}
	cols, rows := arenaSize(snap.Arena, 40, 40)
	if cols != 40 || rows != 10 {
		t.Fatalf("unexpected arena size %dx%d", cols, rows)
	}
	out := renderArena(snap, cols, rows)
	lines := strings.Split(out, "\n")
	if len(lines) != rows {
		t.Fatalf("expected %d lines, got %d", rows, len(lines))
	}
	if !strings.ContainsRune(lines[2], cellGlyphs.actor) {
		t.Fatalf("expected actor on row 2:\n%s", out)
	}
	if !strings.ContainsRune(lines[8], cellGlyphs.target) && !strings.ContainsRune(lines[8], cellGlyphs.targetHi) {
		t.Fatalf("expected target on row 8:\n%s", out)
	}
}
