package stats

import (
	"sort"

	"github.com/verte-zerg/rehab/internal/model"
)

const (
	// SuggestWindow is the number of recent results at a level considered.
	SuggestWindow = 5
	promoteRate   = 0.8
	demoteRate    = 0.2
)

// SuggestLevel picks the level for the next session from recent history.
// It starts from the level of the most recent result, moves up when at
// least 80% of the last SuggestWindow results there passed and down when at
// most 20% did. Patients without history start at the lowest level.
func SuggestLevel(results []model.ResultRecord, levels []int) int {
	if len(levels) == 0 {
		return 0
	}
	ids := append([]int(nil), levels...)
	sort.Ints(ids)
	if len(results) == 0 {
		return ids[0]
	}
	current := results[len(results)-1].Level
	idx := sort.SearchInts(ids, current)
	if idx >= len(ids) || ids[idx] != current {
		return ids[0]
	}

	var recent []model.ResultRecord
	for i := len(results) - 1; i >= 0 && len(recent) < SuggestWindow; i-- {
		if results[i].Level == current {
			recent = append(recent, results[i])
		}
	}
	if len(recent) < SuggestWindow {
		return current
	}
	passed := 0
	for _, r := range recent {
		if r.Success {
			passed++
		}
	}
	rate := float64(passed) / float64(len(recent))
	switch {
	case rate >= promoteRate && idx+1 < len(ids):
		return ids[idx+1]
	case rate <= demoteRate && idx > 0:
		return ids[idx-1]
	}
	return current
}
