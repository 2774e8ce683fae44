package models

import "time"

// CorrelationResult is the per-run correlation of one candidate series
// against the reference. Only results with a defined correlation exist;
// degenerate computations never produce one.
type CorrelationResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Units       string  `json:"units,omitempty"`
	Popularity  int     `json:"popularity,omitempty"`
	Correlation float64 `json:"correlation"`
}

// SelectionRecord is the outcome of ranking and rotation for one run.
// Rank is the 1-based position in the full ranked-by-|correlation| list and
// TotalSeries counts every series with a defined correlation this run, so
// "rank 3 of 40" reflects true statistical standing.
type SelectionRecord struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Correlation float64 `json:"correlation"`
	Rank        int     `json:"rank"`
	TotalSeries int     `json:"total_series"`
}

// SelectionPayload is the artifact handed to the renderer.
type SelectionPayload struct {
	RunID       string    `json:"run_id"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Units       string    `json:"units,omitempty"`
	Source      string    `json:"source"`
	Correlation float64   `json:"correlation"`
	Inverted    bool      `json:"inverted"`
	WindowStart string    `json:"window_start"`
	WindowEnd   string    `json:"window_end"`
	Rank        int       `json:"rank"`
	TotalSeries int       `json:"total_series"`
	Dates       []string  `json:"dates"`
	Reference   []float64 `json:"reference"`
	Candidate   []float64 `json:"candidate"`
	GeneratedAt time.Time `json:"generated_at"`
}
