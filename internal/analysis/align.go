package analysis

import (
	"sort"

	"github.com/chartcrime/chartcrime-go/internal/models"
)

// MinOverlapRatio is the fraction of reference dates a candidate series must
// cover before forward-filling is allowed to paper over the rest.
const MinOverlapRatio = 0.95

// MaxMissing returns how many reference dates a candidate may lack and still
// participate in the run.
func MaxMissing(refDates int) int {
	return int((1.0 - MinOverlapRatio) * float64(refDates))
}

// MissingDates returns the reference dates absent from obs, sorted ascending.
func MissingDates(refDates []string, obs []models.Observation) []string {
	have := make(map[string]struct{}, len(obs))
	for _, o := range obs {
		have[o.Date] = struct{}{}
	}
	var missing []string
	for _, d := range refDates {
		if _, ok := have[d]; !ok {
			missing = append(missing, d)
		}
	}
	sort.Strings(missing)
	return missing
}

// ForwardFill fills each missing date with the most recent prior observed
// value (last observation carried forward) and returns the augmented
// observations sorted by date. It reports false when any missing date
// precedes all available observations, in which case the series cannot
// honestly participate.
func ForwardFill(obs []models.Observation, missing []string) ([]models.Observation, bool) {
	sorted := make([]models.Observation, len(obs))
	copy(sorted, obs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	filled := sorted
	for _, d := range missing {
		// index of the first observation strictly after d
		i := sort.Search(len(sorted), func(i int) bool { return sorted[i].Date > d })
		if i == 0 {
			return nil, false
		}
		filled = append(filled, models.Observation{Date: d, Value: sorted[i-1].Value})
	}
	if len(filled) > len(sorted) {
		sort.Slice(filled, func(i, j int) bool { return filled[i].Date < filled[j].Date })
	}
	return filled, true
}

// Align inner-joins two observation sequences on exact date equality. The
// output parallel slices preserve the order of the reference sequence; dates
// the candidate lacks are dropped.
func Align(ref, candidate []models.Observation) (dates []string, refValues, candValues []float64) {
	candByDate := make(map[string]float64, len(candidate))
	for _, o := range candidate {
		candByDate[o.Date] = o.Value
	}
	for _, o := range ref {
		v, ok := candByDate[o.Date]
		if !ok {
			continue
		}
		dates = append(dates, o.Date)
		refValues = append(refValues, o.Value)
		candValues = append(candValues, v)
	}
	return dates, refValues, candValues
}
