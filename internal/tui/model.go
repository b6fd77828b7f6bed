// Package tui provides the Bubble Tea exercise interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/rehab/internal/engine"
	"github.com/verte-zerg/rehab/internal/generator"
	"github.com/verte-zerg/rehab/internal/level"
	"github.com/verte-zerg/rehab/internal/model"
	statsPkg "github.com/verte-zerg/rehab/internal/stats"
)

const (
	defaultFPS    = 60
	defaultWidth  = 80
	defaultHeight = 24
	recordTimeout = 5 * time.Second
)

// Options configures the exercise screen.
type Options struct {
	Level   level.Level
	Patient model.PatientContext
	FPS     int
	Hold    time.Duration
	// Seed replays target placement when non-zero. Restarts use Seed+attempt.
	Seed int64
}

type frameMsg time.Time

// Model implements the Bubble Tea exercise UI.
type Model struct {
	opts     Options
	recorder engine.Recorder
	log      *zap.Logger
	now      func() time.Time

	session   *engine.Session
	keys      *keyState
	lastFrame time.Time
	attempt   int

	pendingPause bool
	pendingQuit  bool
	exitAfter    bool

	result  *model.ExerciseResult
	saveErr error
	saved   bool

	width  int
	height int
}

// NewModel starts the first session. An invalid level returns an error
// before any frame runs.
func NewModel(opts Options, recorder engine.Recorder, log *zap.Logger) (*Model, error) {
	if opts.FPS <= 0 {
		opts.FPS = defaultFPS
	}
	if log == nil {
		log = zap.NewNop()
	}
	m := &Model{
		opts:     opts,
		recorder: recorder,
		log:      log,
		now:      time.Now,
		keys:     newKeyState(opts.Hold),
	}
	if err := m.start(); err != nil {
		return nil, err
	}
	return m, nil
}

// Result returns the last finished result, if any.
func (m *Model) Result() (model.ExerciseResult, bool) {
	if m.result == nil {
		return model.ExerciseResult{}, false
	}
	return *m.result, true
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.nextFrame()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.result != nil {
			return m, m.handleResultKey(msg)
		}
		m.handleExerciseKey(msg)
		return m, nil
	case frameMsg:
		return m, m.handleFrame(time.Time(msg))
	default:
		return m, nil
	}
}

func (m *Model) handleExerciseKey(msg tea.KeyMsg) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		m.pendingQuit = true
		m.exitAfter = true
		return
	case "esc", "q":
		m.pendingQuit = true
		return
	case " ", "p":
		m.pendingPause = !m.pendingPause
		return
	}
	if d, ok := directionKeys[key]; ok {
		m.keys.press(d, m.now())
	}
}

func (m *Model) handleResultKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "r", "enter":
		m.attempt++
		if err := m.start(); err != nil {
			m.log.Error("restart session", zap.Error(err))
			return tea.Quit
		}
		return m.nextFrame()
	case "q", "esc", "ctrl+c":
		return tea.Quit
	}
	return nil
}

func (m *Model) handleFrame(t time.Time) tea.Cmd {
	if m.result != nil || m.session == nil {
		return nil
	}
	dt := time.Second / time.Duration(m.opts.FPS)
	if !m.lastFrame.IsZero() {
		dt = t.Sub(m.lastFrame)
	}
	m.lastFrame = t

	in := engine.Input{
		Intent:      m.keys.intent(m.now()),
		TogglePause: m.pendingPause,
		Quit:        m.pendingQuit,
	}
	m.pendingPause, m.pendingQuit = false, false

	out := m.session.Tick(dt, in)
	if !out.Ended {
		return m.nextFrame()
	}
	m.finish()
	if m.exitAfter {
		return tea.Quit
	}
	return nil
}

func (m *Model) nextFrame() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// start begins a fresh session. Restarts never reuse the previous one.
func (m *Model) start() error {
	var rnd engine.Random = generator.New()
	if m.opts.Seed != 0 {
		rnd = generator.NewSeeded(m.opts.Seed + int64(m.attempt))
	}
	s, err := engine.Start(m.opts.Level, m.opts.Patient,
		engine.WithRandom(rnd),
		engine.WithLogger(m.log),
		engine.WithClock(m.now))
	if err != nil {
		return err
	}
	m.session = s
	m.keys.reset()
	m.lastFrame = time.Time{}
	m.pendingPause, m.pendingQuit, m.exitAfter = false, false, false
	m.result, m.saveErr, m.saved = nil, nil, false
	m.log.Info("exercise started",
		zap.String("session", s.ID()),
		zap.Int("exercise_level", m.opts.Level.ID),
		zap.Int("attempt", m.attempt))
	return nil
}

func (m *Model) finish() {
	res, err := m.session.Finalize()
	if err != nil {
		m.log.Error("finalize session", zap.Error(err))
		return
	}
	m.result = &res
	m.log.Info("exercise finished",
		zap.String("session", res.SessionID),
		zap.Int("score", res.Score),
		zap.Bool("success", res.Success),
		zap.Bool("completed", res.Completed))
	if m.recorder == nil || m.opts.Patient.Anonymous() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := m.recorder.Record(ctx, m.opts.Patient.ID, res.Level, res); err != nil {
		m.saveErr = err
		m.log.Error("record result", zap.String("session", res.SessionID), zap.Error(err))
		return
	}
	m.saved = true
}

// View implements tea.Model.
func (m *Model) View() string {
	width, height := m.width, m.height
	if width <= 0 || height <= 0 {
		width, height = defaultWidth, defaultHeight
	}
	if m.result != nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.renderResult(width))
	}
	if m.session == nil {
		return ""
	}
	snap := m.session.Snapshot()
	cols, rows := arenaSize(snap.Arena, width-2, height-5)

	var body string
	if snap.State == engine.StatePaused {
		banner := bannerStyle.Render("PAUSED\n\nspace to resume · esc to stop")
		body = arenaStyle.Render(lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, banner))
	} else {
		body = arenaStyle.Render(renderArena(snap, cols, rows))
	}
	view := lipgloss.JoinVertical(lipgloss.Center,
		hudStyle.Render(fit(m.renderHUD(snap), width)),
		body,
		fit(m.renderMetrics(snap), width),
		footerStyle.Render(fit("arrows/wasd/hjkl move · space pause · esc stop", width)),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, view)
}

func (m *Model) renderHUD(snap engine.Snapshot) string {
	segments := []string{
		fmt.Sprintf("Level %d · %s", snap.Level, snap.LevelName),
		fmt.Sprintf("Time %s", statsPkg.FormatDuration(snap.Remaining)),
		fmt.Sprintf("Score %d", snap.Score.Score),
		fmt.Sprintf("Hits %d", snap.Score.Hits),
		fmt.Sprintf("Precision %.0f%%", snap.Score.Precision()),
	}
	if snap.Score.Misses > 0 {
		segments = append(segments, fmt.Sprintf("Misses %d", snap.Score.Misses))
	}
	if snap.Score.Combo > 1 {
		segments = append(segments, fmt.Sprintf("Combo x%d", snap.Score.Combo))
	}
	return strings.Join(segments, "   ")
}

func (m *Model) renderMetrics(snap engine.Snapshot) string {
	mt := snap.Metrics
	segments := []string{
		fmt.Sprintf("Velocity %.0f px/s", mt.Velocity),
		fmt.Sprintf("Range %.0f px", mt.Range),
		fmt.Sprintf("Reaction %s", statsPkg.FormatMs(float64(mt.AvgReaction)/float64(time.Millisecond))),
		fmt.Sprintf("Max combo %d", snap.Score.MaxCombo),
	}
	if name := m.opts.Patient.Name; name != "" {
		segments = append(segments, "Patient "+name)
	}
	return strings.Join(segments, "  ")
}
