package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/rehab/internal/model"
)

type fakeSource struct {
	results []model.ResultRecord
	err     error
	last    model.HistoryConfig
}

func (f *fakeSource) ListResults(_ context.Context, cfg model.HistoryConfig) ([]model.ResultRecord, error) {
	f.last = cfg
	if f.err != nil {
		return nil, f.err
	}
	var out []model.ResultRecord
	for _, r := range f.results {
		if cfg.Level > 0 && r.Level != cfg.Level {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeSource) LevelAggregates(context.Context, string) ([]model.LevelAggregate, error) {
	return []model.LevelAggregate{
		{Level: 1, LevelName: "Static", Sessions: 2, Successful: 1, BestScore: 44, AvgPrecision: 70},
	}, nil
}

func sampleResults() []model.ResultRecord {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	out := make([]model.ResultRecord, 0, 3)
	for i, level := range []int{1, 1, 2} {
		out = append(out, model.ResultRecord{
			ID: int64(i + 1),
			ExerciseResult: model.ExerciseResult{
				Level:     level,
				Completed: true,
				Success:   i%2 == 0,
				Score:     10 * (i + 1),
				Hits:      4,
				Precision: 60,
				Elapsed:   30 * time.Second,
				EndedAt:   base.Add(time.Duration(i) * time.Hour),
			},
		})
	}
	return out
}

func sized(t *testing.T, m *Model) *Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(*Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelLoadsReportForPatient(t *testing.T) {
	src := &fakeSource{results: sampleResults()}
	m := sized(t, NewModel(src, model.Patient{ID: "p1", Name: "Ana"}, model.HistoryConfig{PatientID: "other", CurveWindow: 2}))

	assert.Equal(t, "p1", src.last.PatientID)
	assert.Len(t, m.Report().Results, 3)

	view := m.View()
	assert.Contains(t, view, "Ana")
	assert.Contains(t, view, "Sessions")
	assert.Contains(t, view, "window=2")
}

func TestModelTabsShowResultsAndLevels(t *testing.T) {
	m := sized(t, NewModel(&fakeSource{results: sampleResults()}, model.Patient{ID: "p1", Name: "Ana"}, model.HistoryConfig{}))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(*Model)
	assert.Contains(t, m.View(), "Outcome")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(*Model)
	assert.Contains(t, m.View(), "Per-Level")
	assert.Contains(t, m.View(), "Top Scores")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(*Model)
	assert.Equal(t, tabOverview, m.activeTab)
}

func TestModelFilterAppliesLevel(t *testing.T) {
	src := &fakeSource{results: sampleResults()}
	m := sized(t, NewModel(src, model.Patient{ID: "p1", Name: "Ana"}, model.HistoryConfig{}))

	next, _ := m.Update(runes("/"))
	m = next.(*Model)
	require.True(t, m.filterMode)

	next, _ = m.Update(runes("2"))
	m = next.(*Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(*Model)

	assert.False(t, m.filterMode)
	assert.Equal(t, 2, src.last.Level)
	assert.Len(t, m.Report().Results, 1)
}

func TestModelFilterRejectsBadDate(t *testing.T) {
	m := sized(t, NewModel(&fakeSource{}, model.Patient{ID: "p1", Name: "Ana"}, model.HistoryConfig{}))

	next, _ := m.Update(runes("/"))
	m = next.(*Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(*Model)
	next, _ = m.Update(runes("yesterday"))
	m = next.(*Model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(*Model)

	assert.True(t, m.filterMode)
	assert.Contains(t, m.View(), "invalid since date")
}

func TestModelShowsLoadError(t *testing.T) {
	m := sized(t, NewModel(&fakeSource{err: errors.New("disk gone")}, model.Patient{ID: "p1", Name: "Ana"}, model.HistoryConfig{}))
	view := m.View()
	assert.Contains(t, view, "Failed to load history.")
	assert.Contains(t, view, "disk gone")
}

func TestCurveWindowSteps(t *testing.T) {
	assert.Equal(t, 5, nextCurveWindow(1))
	assert.Equal(t, 10, nextCurveWindow(5))
	assert.Equal(t, 10, nextCurveWindow(7))
	assert.Equal(t, 1, prevCurveWindow(5))
	assert.Equal(t, 5, prevCurveWindow(7))
	assert.Equal(t, 10, prevCurveWindow(15))
}

func TestQuitKey(t *testing.T) {
	m := NewModel(&fakeSource{}, model.Patient{ID: "p1"}, model.HistoryConfig{})
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.False(t, strings.Contains(m.View(), "Failed"))
}
