package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/chartcrime/chartcrime-go/internal/models"
)

// SeriesRepository is the durable per-series observation store. The flat-file
// implementation below is the only one today; the interface is the seam for
// swapping in an embedded key-value store without touching the analysis core.
type SeriesRepository interface {
	// Read returns the cached record for a series, or false when absent.
	Read(seriesID string) (*models.SeriesCache, bool)
	// MergeWrite merges incoming observations into the stored series and
	// persists the result stamped with fetchedOn, even when incoming is
	// empty (the stamp is the staleness marker).
	MergeWrite(seriesID string, incoming []models.Observation, fetchedOn string) (*models.SeriesCache, error)
	// List returns the ids of every cached series.
	List() ([]string, error)
}

// FileSeriesRepository keeps one JSON file per series under a directory.
type FileSeriesRepository struct {
	dir    string
	logger *logrus.Logger
}

func NewFileSeriesRepository(dir string, logger *logrus.Logger) (*FileSeriesRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create series cache directory: %w", err)
	}
	return &FileSeriesRepository{dir: dir, logger: logger}, nil
}

// Read never fails: a missing file is an absent record and an unreadable or
// corrupt file is logged and treated as absent, so the cache self-heals on
// the next successful fetch.
func (r *FileSeriesRepository) Read(seriesID string) (*models.SeriesCache, bool) {
	var cache models.SeriesCache
	if err := readJSON(r.path(seriesID), &cache); err != nil {
		if !os.IsNotExist(err) {
			r.logger.WithFields(logrus.Fields{
				"series": seriesID,
				"error":  err.Error(),
			}).Warn("Series cache unreadable, treating as absent")
		}
		return nil, false
	}
	return &cache, true
}

func (r *FileSeriesRepository) MergeWrite(seriesID string, incoming []models.Observation, fetchedOn string) (*models.SeriesCache, error) {
	var existing []models.Observation
	if cached, ok := r.Read(seriesID); ok {
		existing = cached.Data
	}

	cache := &models.SeriesCache{
		LastFetched: fetchedOn,
		Data:        MergeObservations(existing, incoming),
	}
	if err := WriteJSONAtomic(r.path(seriesID), cache); err != nil {
		return nil, fmt.Errorf("failed to persist series %s: %w", seriesID, err)
	}
	return cache, nil
}

func (r *FileSeriesRepository) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list series cache directory: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *FileSeriesRepository) path(seriesID string) string {
	return filepath.Join(r.dir, seriesID+".json")
}

// MergeObservations merges by date key with incoming values winning on
// overlap (newer data wins). The result is strictly ascending by date with
// no duplicates. Merging the same incoming twice is a no-op.
func MergeObservations(existing, incoming []models.Observation) []models.Observation {
	byDate := make(map[string]float64, len(existing)+len(incoming))
	for _, o := range existing {
		byDate[o.Date] = o.Value
	}
	for _, o := range incoming {
		byDate[o.Date] = o.Value
	}

	merged := make([]models.Observation, 0, len(byDate))
	for date, value := range byDate {
		merged = append(merged, models.Observation{Date: date, Value: value})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date < merged[j].Date })
	return merged
}

// FilterFrom returns the observations dated windowStart or later. data must
// be sorted ascending, which the repository guarantees.
func FilterFrom(data []models.Observation, windowStart string) []models.Observation {
	i := sort.Search(len(data), func(i int) bool { return data[i].Date >= windowStart })
	out := make([]models.Observation, len(data)-i)
	copy(out, data[i:])
	return out
}
