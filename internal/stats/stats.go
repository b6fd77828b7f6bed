// Package stats contains history calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/rehab/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a patient's exercise history.
type Summary struct {
	Sessions      int
	Successful    int
	Completed     int
	SuccessPct    float64
	AvgScore      float64
	BestScore     int
	AvgPrecision  float64
	AvgReactionMs float64
	AvgDuration   time.Duration
	TotalDuration time.Duration
	LastActivity  time.Time
}

// Summarize computes a Summary. The reaction average only counts results
// that measured one.
func Summarize(results []model.ResultRecord) Summary {
	var s Summary
	if len(results) == 0 {
		return s
	}
	var scoreSum, precisionSum, reactionSum float64
	reactions := 0
	for _, r := range results {
		s.Sessions++
		if r.Success {
			s.Successful++
		}
		if r.Completed {
			s.Completed++
		}
		if r.Score > s.BestScore {
			s.BestScore = r.Score
		}
		scoreSum += float64(r.Score)
		precisionSum += r.Precision
		if r.AvgReactionMs > 0 {
			reactionSum += r.AvgReactionMs
			reactions++
		}
		s.TotalDuration += r.Elapsed
		if r.EndedAt.After(s.LastActivity) {
			s.LastActivity = r.EndedAt
		}
	}
	n := float64(s.Sessions)
	s.SuccessPct = float64(s.Successful) / n * 100
	s.AvgScore = scoreSum / n
	s.AvgPrecision = precisionSum / n
	if reactions > 0 {
		s.AvgReactionMs = reactionSum / float64(reactions)
	}
	s.AvgDuration = s.TotalDuration / time.Duration(s.Sessions)
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minMax(values)
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[max(0, min(idx, last))])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// RenderSummary prints the history summary.
func RenderSummary(w io.Writer, s Summary) error {
	if s.Sessions == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d (%d completed)", s.Sessions, s.Completed),
		fmt.Sprintf("Successful: %d (%.1f%%)", s.Successful, s.SuccessPct),
		fmt.Sprintf("Avg score: %.1f", s.AvgScore),
		fmt.Sprintf("Best score: %d", s.BestScore),
		fmt.Sprintf("Avg precision: %.1f%%", s.AvgPrecision),
		fmt.Sprintf("Avg reaction: %s", FormatMs(s.AvgReactionMs)),
		fmt.Sprintf("Avg duration: %s", FormatDuration(s.AvgDuration)),
		fmt.Sprintf("Last activity: %s", s.LastActivity.Local().Format("2006-01-02 15:04")),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints learning curves for score and precision.
func RenderCurves(w io.Writer, results []model.ResultRecord, window int) error {
	return RenderCurvesWithSize(w, results, window, 0, 10, false)
}

// RenderCurvesWithSize prints learning curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, results []model.ResultRecord, window, totalWidth, height int, useColor bool) error {
	if len(results) == 0 {
		return nil
	}
	scores := make([]float64, len(results))
	precision := make([]float64, len(results))
	reaction := make([]float64, len(results))
	for i, r := range results {
		scores[i] = float64(r.Score)
		precision[i] = r.Precision
		reaction[i] = r.AvgReactionMs
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Learning Curves", []Series{
		{Name: "Score", Values: MovingAverage(scores, window)},
		{Name: "Precision", Values: MovingAverage(precision, window)},
		{Name: "Reaction", Values: MovingAverage(reaction, window)},
	}, width, height, useColor)
}

// RenderLevelTable prints per-level aggregates.
func RenderLevelTable(w io.Writer, aggs []model.LevelAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No level stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Level"); err != nil {
		return err
	}
	headers := []string{"Level", "Name", "Sessions", "Success", "Best", "Precision", "Reaction"}
	rows := make([][]string, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", a.Level),
			a.LevelName,
			fmt.Sprintf("%d", a.Sessions),
			fmt.Sprintf("%.0f%%", pct(a.Successful, a.Sessions)),
			fmt.Sprintf("%d", a.BestScore),
			fmt.Sprintf("%.1f%%", a.AvgPrecision),
			FormatMs(a.AvgReaction),
		})
	}
	return writeTable(w, headers, rows, map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true})
}

// RenderResultTable prints one row per result, newest last.
func RenderResultTable(w io.Writer, results []model.ResultRecord) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Results"); err != nil {
		return err
	}
	return writeTable(w, ResultHeaders(), ResultRows(results), map[int]bool{1: true, 3: true, 4: true, 5: true, 6: true, 7: true})
}

// ResultHeaders returns the column titles used for result tables.
func ResultHeaders() []string {
	return []string{"Date", "Level", "Outcome", "Score", "Hits", "Precision", "Max Combo", "Reaction"}
}

// ResultRows formats results as table rows.
func ResultRows(results []model.ResultRecord) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", r.Level),
			Outcome(r.ExerciseResult),
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%d/%d", r.Hits, r.Hits+r.Misses),
			fmt.Sprintf("%.1f%%", r.Precision),
			fmt.Sprintf("%d", r.MaxCombo),
			FormatMs(r.AvgReactionMs),
		})
	}
	return rows
}

// RenderResult prints a single exercise result.
func RenderResult(w io.Writer, r model.ExerciseResult) error {
	lines := []string{
		fmt.Sprintf("Level %d (%s): %s", r.Level, r.LevelName, Outcome(r)),
		fmt.Sprintf("Score: %d", r.Score),
		fmt.Sprintf("Hits: %d  Misses: %d  Precision: %.1f%%", r.Hits, r.Misses, r.Precision),
		fmt.Sprintf("Max combo: %d", r.MaxCombo),
		fmt.Sprintf("Avg velocity: %.1f px/s", r.AvgVelocity),
		fmt.Sprintf("Movement range: %.0f px", r.MovementRange),
		fmt.Sprintf("Avg reaction: %s  Consistency: %.0f%%", FormatMs(r.AvgReactionMs), r.Consistency),
		fmt.Sprintf("Path length: %.0f px", r.PathLength),
		fmt.Sprintf("Time: %s", FormatDuration(r.Elapsed)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Outcome labels a result.
func Outcome(r model.ExerciseResult) string {
	switch {
	case !r.Completed:
		return "stopped"
	case r.Success:
		return "passed"
	}
	return "not passed"
}

// FormatMs formats milliseconds, or "-" for no measurement.
func FormatMs(ms float64) string {
	if ms <= 0 {
		return "-"
	}
	if ms >= 1000 {
		return fmt.Sprintf("%.2fs", ms/1000)
	}
	return fmt.Sprintf("%.0fms", ms)
}

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func pct(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	for _, line := range FormatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
