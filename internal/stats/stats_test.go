package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/rehab/internal/model"
)

func result(level, score int, success bool, ended time.Time) model.ResultRecord {
	return model.ResultRecord{ExerciseResult: model.ExerciseResult{
		Level:         level,
		Completed:     true,
		Success:       success,
		Score:         score,
		Hits:          5,
		Precision:     80,
		AvgReactionMs: 1000,
		Elapsed:       time.Minute,
		EndedAt:       ended,
	}}
}

func TestSummarize(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	results := []model.ResultRecord{
		result(1, 40, true, base),
		result(1, 60, false, base.Add(time.Hour)),
		result(2, 80, true, base.Add(2*time.Hour)),
		result(2, 20, false, base.Add(3*time.Hour)),
	}
	results[3].AvgReactionMs = 0
	results[3].Completed = false

	s := Summarize(results)
	if s.Sessions != 4 || s.Successful != 2 || s.Completed != 3 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.SuccessPct != 50 || s.AvgScore != 50 || s.BestScore != 80 {
		t.Fatalf("unexpected aggregates: %+v", s)
	}
	if s.AvgReactionMs != 1000 {
		t.Fatalf("reaction average should skip unmeasured results, got %v", s.AvgReactionMs)
	}
	if !s.LastActivity.Equal(base.Add(3*time.Hour)) || s.AvgDuration != time.Minute {
		t.Fatalf("unexpected time aggregates: %+v", s)
	}
	if got := Summarize(nil); got.Sessions != 0 || got.SuccessPct != 0 {
		t.Fatalf("empty summary should be zero, got %+v", got)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if got := MovingAverage([]float64{1, 5}, 1); got[1] != 5 {
		t.Fatalf("window 1 should copy values, got %v", got)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("flat sparkline %q", got)
	}
}

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Level", "Outcome", "Score"}
	rows := [][]string{
		{"1", "passed", "120"},
		{"3", "not passed", "7"},
	}
	lines := FormatTable(headers, rows, map[int]bool{0: true, 2: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Level Outcome    Score" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "    1 passed       120" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "    3 not passed     7" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{1, 2, 3, 2, 1}},
		{Name: "B", Values: []float64{1, 1, 2, 3, 4}},
		{Name: "Empty"},
	}, 12, 4)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Test Plot", scaleNote, "Legend:", "A (min 1.0, max 3.0)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Empty") {
		t.Fatalf("empty series should be skipped")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2+4+1 {
		t.Fatalf("expected 7 lines, got %d", len(lines))
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80); got != 80-6 {
		t.Fatalf("expected 74, got %d", got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestResample(t *testing.T) {
	got := resample([]float64{0, 10}, 3)
	if got[0] != 0 || got[1] != 5 || got[2] != 10 {
		t.Fatalf("unexpected resample %v", got)
	}
	if got := resample([]float64{7}, 4); got[3] != 7 {
		t.Fatalf("single value should repeat, got %v", got)
	}
}

func TestRenderResultAndOutcome(t *testing.T) {
	var buf bytes.Buffer
	r := model.ExerciseResult{Level: 2, LevelName: "slow moving target", Completed: true, Success: true, Score: 90, Hits: 7, Precision: 100, Elapsed: 61 * time.Second}
	if err := RenderResult(&buf, r); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Level 2 (slow moving target): passed") || !strings.Contains(out, "Time: 1:01") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	r.Completed = false
	if Outcome(r) != "stopped" {
		t.Fatalf("incomplete results should read as stopped")
	}
	if FormatMs(0) != "-" || FormatMs(850) != "850ms" || FormatMs(1500) != "1.50s" {
		t.Fatalf("unexpected FormatMs output")
	}
}

func TestTopScores(t *testing.T) {
	base := time.Unix(0, 0)
	results := []model.ResultRecord{
		result(1, 30, true, base),
		result(1, 50, true, base.Add(time.Minute)),
		result(2, 50, true, base.Add(2*time.Minute)),
		result(2, 10, false, base.Add(3*time.Minute)),
	}
	top := TopScores(results, 2)
	if len(top) != 2 || top[0].Level != 1 || top[0].Score != 50 || top[1].Level != 2 {
		t.Fatalf("unexpected order: %+v", top)
	}
	if TopScores(results, 0) != nil {
		t.Fatalf("n=0 should return nil")
	}
}

func TestSuggestLevel(t *testing.T) {
	levels := []int{3, 1, 2}
	if got := SuggestLevel(nil, levels); got != 1 {
		t.Fatalf("new patients start at 1, got %d", got)
	}
	history := func(level int, passes ...bool) []model.ResultRecord {
		out := make([]model.ResultRecord, 0, len(passes))
		for _, p := range passes {
			out = append(out, result(level, 10, p, time.Time{}))
		}
		return out
	}
	if got := SuggestLevel(history(1, true, true, true, true), levels); got != 1 {
		t.Fatalf("needs a full window before moving, got %d", got)
	}
	if got := SuggestLevel(history(1, false, true, true, true, true), levels); got != 2 {
		t.Fatalf("expected promotion to 2, got %d", got)
	}
	if got := SuggestLevel(history(2, false, false, true, false, false), levels); got != 1 {
		t.Fatalf("expected demotion to 1, got %d", got)
	}
	if got := SuggestLevel(history(3, true, true, true, true, true), levels); got != 3 {
		t.Fatalf("top level stays, got %d", got)
	}
	if got := SuggestLevel(history(2, true, false, true, false, true), levels); got != 2 {
		t.Fatalf("mixed results stay, got %d", got)
	}
}
