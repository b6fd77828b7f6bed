package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/rehab/internal/model"
)

// HistorySource provides stored results.
type HistorySource interface {
	ListResults(ctx context.Context, cfg model.HistoryConfig) ([]model.ResultRecord, error)
	LevelAggregates(ctx context.Context, patientID string) ([]model.LevelAggregate, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Results []model.ResultRecord
	Window  []model.ResultRecord
	Summary Summary
	Levels  []model.LevelAggregate
	Top     []model.ResultRecord
}

// BuildReport loads and prepares a patient's history.
func BuildReport(ctx context.Context, src HistorySource, cfg model.HistoryConfig) (Report, error) {
	results, err := src.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	levels, err := src.LevelAggregates(ctx, cfg.PatientID)
	if err != nil {
		return Report{}, err
	}
	if cfg.Level > 0 {
		filtered := levels[:0]
		for _, l := range levels {
			if l.Level == cfg.Level {
				filtered = append(filtered, l)
			}
		}
		levels = filtered
	}
	return Report{
		Results: results,
		Window:  lastResults(results, cfg.CurveWindow),
		Summary: Summarize(results),
		Levels:  levels,
		Top:     TopScores(results, 5),
	}, nil
}

// RenderReport prints the whole report as plain text.
func RenderReport(w io.Writer, r Report, window, totalWidth int, useColor bool) error {
	if err := RenderSummary(w, r.Summary); err != nil {
		return err
	}
	if len(r.Results) == 0 {
		return nil
	}
	if err := RenderLevelTable(w, r.Levels); err != nil {
		return err
	}
	if err := RenderCurvesWithSize(w, r.Results, window, totalWidth, defaultPlotHeight, useColor); err != nil {
		return err
	}
	if err := RenderResultTable(w, r.Window); err != nil {
		return err
	}
	return RenderTopScores(w, r.Top)
}

func lastResults(results []model.ResultRecord, n int) []model.ResultRecord {
	if n <= 0 || len(results) <= n {
		return results
	}
	return results[len(results)-n:]
}
