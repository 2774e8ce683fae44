package store

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chartcrime/chartcrime-go/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestRepo(t *testing.T) *FileSeriesRepository {
	t.Helper()
	repo, err := NewFileSeriesRepository(t.TempDir(), testLogger())
	require.NoError(t, err)
	return repo
}

func TestMergeObservations(t *testing.T) {
	existing := []models.Observation{
		{Date: "2024-07-01", Value: 1},
		{Date: "2024-07-02", Value: 2},
	}
	incoming := []models.Observation{
		{Date: "2024-07-02", Value: 20}, // overlap, incoming wins
		{Date: "2024-07-03", Value: 3},
	}

	merged := MergeObservations(existing, incoming)

	require.Len(t, merged, 3)
	assert.Equal(t, 20.0, merged[1].Value, "incoming value wins on overlapping dates")
	for i := 1; i < len(merged); i++ {
		assert.Less(t, merged[i-1].Date, merged[i].Date, "result must be strictly ascending")
	}

	// Merging the same incoming twice yields the same result as once.
	again := MergeObservations(merged, incoming)
	assert.Equal(t, merged, again)
}

func TestFilterFrom(t *testing.T) {
	data := []models.Observation{
		{Date: "2024-06-20", Value: 1},
		{Date: "2024-06-21", Value: 2},
		{Date: "2024-07-01", Value: 3},
	}

	assert.Len(t, FilterFrom(data, "2024-06-21"), 2)
	assert.Len(t, FilterFrom(data, "2024-01-01"), 3)
	assert.Empty(t, FilterFrom(data, "2024-08-01"))

	// Filtered output is a copy; mutating it must not touch the cache's data.
	filtered := FilterFrom(data, "2024-06-21")
	filtered[0].Value = 99
	assert.Equal(t, 2.0, data[1].Value)
}

func TestFileSeriesRepository(t *testing.T) {
	t.Run("read missing series is absent", func(t *testing.T) {
		repo := newTestRepo(t)
		_, ok := repo.Read("SP500")
		assert.False(t, ok)
	})

	t.Run("merge write then read round trip", func(t *testing.T) {
		repo := newTestRepo(t)
		incoming := []models.Observation{
			{Date: "2024-07-01", Value: 100},
			{Date: "2024-07-02", Value: 101},
		}

		cache, err := repo.MergeWrite("SP500", incoming, "2024-07-02")
		require.NoError(t, err)
		assert.Equal(t, "2024-07-02", cache.LastFetched)

		got, ok := repo.Read("SP500")
		require.True(t, ok)
		assert.Equal(t, cache, got)
	})

	t.Run("empty incoming still refreshes the staleness stamp", func(t *testing.T) {
		repo := newTestRepo(t)
		_, err := repo.MergeWrite("SP500", []models.Observation{{Date: "2024-07-01", Value: 100}}, "2024-07-01")
		require.NoError(t, err)

		cache, err := repo.MergeWrite("SP500", nil, "2024-07-02")
		require.NoError(t, err)
		assert.Equal(t, "2024-07-02", cache.LastFetched)
		assert.Len(t, cache.Data, 1, "existing observations survive an empty delta")
	})

	t.Run("corrupt cache file is treated as absent and overwritten", func(t *testing.T) {
		repo := newTestRepo(t)
		require.NoError(t, os.WriteFile(filepath.Join(repo.dir, "SP500.json"), []byte("{not json"), 0o644))

		_, ok := repo.Read("SP500")
		assert.False(t, ok)

		cache, err := repo.MergeWrite("SP500", []models.Observation{{Date: "2024-07-01", Value: 100}}, "2024-07-01")
		require.NoError(t, err)
		assert.Len(t, cache.Data, 1, "corruption heals on the next successful fetch")
	})

	t.Run("list returns cached series ids", func(t *testing.T) {
		repo := newTestRepo(t)
		_, err := repo.MergeWrite("DGS10", nil, "2024-07-01")
		require.NoError(t, err)
		_, err = repo.MergeWrite("SP500", nil, "2024-07-01")
		require.NoError(t, err)

		ids, err := repo.List()
		require.NoError(t, err)
		assert.Equal(t, []string{"DGS10", "SP500"}, ids)
	})
}
