package services

import (
	"math"
	"sort"

	"github.com/chartcrime/chartcrime-go/internal/models"
)

// RankAndSelect orders the run's correlation results descending by absolute
// correlation and returns the highest-ranked entry not in the recently-used
// set. When every candidate is recently used, it falls back to the top
// entry: freshness is a soft preference, never allowed to block producing a
// result. The sort is stable so repeated runs on identical input are
// reproducible, and Rank/TotalSeries are computed against the full ranked
// list, recently-used entries included.
func RankAndSelect(results []models.CorrelationResult, recentlyUsed map[string]bool) *models.SelectionRecord {
	if len(results) == 0 {
		return nil
	}

	ranked := make([]models.CorrelationResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Correlation) > math.Abs(ranked[j].Correlation)
	})

	pick := ranked[0]
	rank := 1
	for i, r := range ranked {
		if !recentlyUsed[r.ID] {
			pick = r
			rank = i + 1
			break
		}
	}

	return &models.SelectionRecord{
		ID:          pick.ID,
		Title:       pick.Title,
		Correlation: pick.Correlation,
		Rank:        rank,
		TotalSeries: len(ranked),
	}
}
