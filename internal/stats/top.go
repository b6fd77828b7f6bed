package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/rehab/internal/model"
)

// TopScores returns the n highest-scoring results, earliest first on ties.
func TopScores(results []model.ResultRecord, n int) []model.ResultRecord {
	if n <= 0 || len(results) == 0 {
		return nil
	}
	sorted := make([]model.ResultRecord, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score == sorted[j].Score {
			return sorted[i].EndedAt.Before(sorted[j].EndedAt)
		}
		return sorted[i].Score > sorted[j].Score
	})
	return sorted[:min(n, len(sorted))]
}

// RenderTopScores prints the best results.
func RenderTopScores(w io.Writer, top []model.ResultRecord) error {
	if len(top) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Top Scores"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(top))
	for i, r := range top {
		rows = append(rows, []string{
			fmt.Sprintf("%d.", i+1),
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("L%d", r.Level),
			fmt.Sprintf("%.1f%%", r.Precision),
			r.EndedAt.Local().Format("2006-01-02"),
		})
	}
	return writeTable(w, nil, rows, map[int]bool{0: true, 1: true, 3: true})
}
