package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartcrime/chartcrime-go/internal/models"
)

func TestRankAndSelectPrefersStrongestCorrelation(t *testing.T) {
	results := []models.CorrelationResult{
		{ID: "A", Title: "Series A", Correlation: 0.9},
		{ID: "B", Title: "Series B", Correlation: 0.8},
		{ID: "C", Title: "Series C", Correlation: 0.7},
	}

	record := RankAndSelect(results, nil)

	require.NotNil(t, record)
	assert.Equal(t, "A", record.ID)
	assert.Equal(t, 1, record.Rank)
	assert.Equal(t, 3, record.TotalSeries)
}

func TestRankAndSelectRanksByAbsoluteValue(t *testing.T) {
	results := []models.CorrelationResult{
		{ID: "WEAK", Correlation: 0.5},
		{ID: "STRONG_NEG", Correlation: -0.95},
	}

	record := RankAndSelect(results, nil)

	require.NotNil(t, record)
	assert.Equal(t, "STRONG_NEG", record.ID)
	assert.Equal(t, -0.95, record.Correlation)
	assert.Equal(t, 1, record.Rank)
}

func TestRankAndSelectSkipsRecentlyUsed(t *testing.T) {
	results := []models.CorrelationResult{
		{ID: "A", Correlation: 0.9},
		{ID: "B", Correlation: 0.8},
		{ID: "C", Correlation: 0.7},
	}

	record := RankAndSelect(results, map[string]bool{"A": true})

	require.NotNil(t, record)
	assert.Equal(t, "B", record.ID)
	assert.Equal(t, 2, record.Rank, "rank reflects the full ranked list, used entries included")
	assert.Equal(t, 3, record.TotalSeries)
}

func TestRankAndSelectFallsBackWhenAllUsed(t *testing.T) {
	results := []models.CorrelationResult{
		{ID: "A", Correlation: 0.9},
		{ID: "B", Correlation: 0.8},
	}
	used := map[string]bool{"A": true, "B": true}

	record := RankAndSelect(results, used)

	require.NotNil(t, record)
	assert.Equal(t, "A", record.ID, "rotation never blocks publishing")
	assert.Equal(t, 1, record.Rank)
}

func TestRankAndSelectEmptyResults(t *testing.T) {
	assert.Nil(t, RankAndSelect(nil, nil))
	assert.Nil(t, RankAndSelect([]models.CorrelationResult{}, map[string]bool{"A": true}))
}

func TestRankAndSelectDoesNotMutateInput(t *testing.T) {
	results := []models.CorrelationResult{
		{ID: "LOW", Correlation: 0.1},
		{ID: "HIGH", Correlation: 0.9},
	}

	_ = RankAndSelect(results, nil)

	assert.Equal(t, "LOW", results[0].ID)
	assert.Equal(t, "HIGH", results[1].ID)
}
