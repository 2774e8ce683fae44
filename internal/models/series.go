package models

// DateLayout is the calendar-day format used everywhere in the system.
// ISO dates compare correctly as strings, which the cache and alignment
// code rely on.
const DateLayout = "2006-01-02"

// Observation is a single daily data point of a series.
type Observation struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// SeriesCache is the durable per-series store record. Data is kept strictly
// ascending by date with no duplicate dates.
type SeriesCache struct {
	LastFetched string        `json:"lastFetched"`
	Data        []Observation `json:"data"`
}

// SeriesInfo describes a candidate series from the curated pool.
type SeriesInfo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Units      string `json:"units,omitempty"`
	Popularity int    `json:"popularity,omitempty"`
}

// ExclusionSet caches the series ids that must never be selected, refreshed
// at most once per calendar day.
type ExclusionSet struct {
	LastFetched string   `json:"lastFetched"`
	IDs         []string `json:"ids"`
}

// UsageHistoryEntry links a selection date to a series id.
type UsageHistoryEntry struct {
	Date string `json:"date"`
	ID   string `json:"id"`
}
