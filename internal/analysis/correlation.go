package analysis

import "math"

// MinSamples is the smallest number of aligned points Pearson accepts.
const MinSamples = 3

// Pearson computes the Pearson correlation coefficient over aligned value
// pairs. The second return value is false when the input is degenerate:
// fewer than MinSamples pairs, mismatched lengths, or zero variance on
// either side. Degenerate results must be excluded from ranking, never
// treated as zero correlation.
func Pearson(xs, ys []float64) (float64, bool) {
	if len(xs) != len(ys) || len(xs) < MinSamples {
		return 0, false
	}

	n := float64(len(xs))
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
		sumY2 += ys[i] * ys[i]
	}

	denominator := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denominator == 0 || math.IsNaN(denominator) {
		return 0, false
	}

	r := (n*sumXY - sumX*sumY) / denominator
	if math.IsNaN(r) {
		return 0, false
	}
	// Guard against floating drift pushing identical series past ±1.
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}
