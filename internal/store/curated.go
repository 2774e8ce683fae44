package store

import (
	"fmt"

	"github.com/chartcrime/chartcrime-go/internal/models"
)

// LoadSeriesList reads the curated candidate pool, a JSON array of
// {id, title, units, popularity} records produced by the discovery tooling.
func LoadSeriesList(path string) ([]models.SeriesInfo, error) {
	var series []models.SeriesInfo
	if err := readJSON(path, &series); err != nil {
		return nil, fmt.Errorf("failed to load series list %s: %w", path, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("series list %s is empty", path)
	}
	return series, nil
}
