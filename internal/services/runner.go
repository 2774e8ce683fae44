package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chartcrime/chartcrime-go/internal/analysis"
	"github.com/chartcrime/chartcrime-go/internal/config"
	"github.com/chartcrime/chartcrime-go/internal/models"
	"github.com/chartcrime/chartcrime-go/internal/store"
)

// ObservationFetcher is the slice of the FRED client the runner needs,
// narrowed for testability.
type ObservationFetcher interface {
	Observations(ctx context.Context, seriesID, startDate string) ([]models.Observation, error)
	CategorySeriesIDs(ctx context.Context, categoryID int) ([]string, error)
}

// ErrRunDegraded aborts publication when too many candidate series failed
// outright; publishing on a degraded dataset is worse than skipping a day.
var ErrRunDegraded = errors.New("too many series failed, aborting run")

// Runner sequences one selection run: refresh exclusions, fetch the
// reference window, fetch-or-reuse each candidate through the incremental
// cache, correlate, rank with rotation, record usage, and write the
// selection artifact.
type Runner struct {
	cfg     *config.Config
	fetcher ObservationFetcher
	repo    store.SeriesRepository
	usage   *store.UsageTracker
	excl    *store.ExclusionStore
	logger  *logrus.Logger

	now func() time.Time
}

func NewRunner(cfg *config.Config, fetcher ObservationFetcher, repo store.SeriesRepository, usage *store.UsageTracker, excl *store.ExclusionStore, logger *logrus.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		repo:    repo,
		usage:   usage,
		excl:    excl,
		logger:  logger,
		now:     time.Now,
	}
}

// alignedSeries holds the parallel arrays for one candidate, kept so the
// selected series' chart data ships in the artifact without a refetch.
type alignedSeries struct {
	dates     []string
	reference []float64
	candidate []float64
}

// Run executes one selection run and returns the published payload. A nil
// payload with an error means nothing was published.
func (r *Runner) Run(ctx context.Context) (*models.SelectionPayload, error) {
	start := r.now()
	today := start.Format(models.DateLayout)
	windowStart := analysis.WindowStart(start).Format(models.DateLayout)

	r.logger.WithFields(logrus.Fields{
		"window_start": windowStart,
		"window_end":   today,
	}).Info("Starting selection run")

	excluded, err := r.excl.IDs(ctx, func(ctx context.Context) ([]string, error) {
		return r.fetcher.CategorySeriesIDs(ctx, r.cfg.Analysis.ExclusionCategoryID)
	})
	if err != nil {
		return nil, err
	}

	pool, err := store.LoadSeriesList(r.cfg.Storage.SeriesListPath)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.SeriesInfo, 0, len(pool))
	for _, s := range pool {
		if s.ID == r.cfg.Analysis.ReferenceSeries || excluded[s.ID] || isMarketSeries(s.ID, s.Title) {
			continue
		}
		candidates = append(candidates, s)
	}
	r.logger.WithFields(logrus.Fields{
		"pool":       len(pool),
		"candidates": len(candidates),
		"excluded":   len(pool) - len(candidates),
	}).Info("Filtered candidate pool")

	reference, err := r.fetchSeries(ctx, r.cfg.Analysis.ReferenceSeries, windowStart, today)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reference series %s: %w", r.cfg.Analysis.ReferenceSeries, err)
	}
	if len(reference) == 0 {
		return nil, fmt.Errorf("reference series %s has no observations in window", r.cfg.Analysis.ReferenceSeries)
	}

	refDates := make([]string, len(reference))
	for i, o := range reference {
		refDates[i] = o.Date
	}
	maxMissing := analysis.MaxMissing(len(refDates))

	var (
		results      []models.CorrelationResult
		aligned      = make(map[string]alignedSeries)
		hardFailures int
		tooSparse    int
		degenerate   int
	)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		obs, err := r.fetchSeries(ctx, candidate.ID, windowStart, today)
		if err != nil {
			hardFailures++
			r.logger.WithFields(logrus.Fields{
				"series": candidate.ID,
				"error":  err.Error(),
			}).Warn("Skipping series after fetch failure")
			continue
		}

		missing := analysis.MissingDates(refDates, obs)
		if len(missing) > maxMissing {
			tooSparse++
			continue
		}
		if len(missing) > 0 {
			filled, ok := analysis.ForwardFill(obs, missing)
			if !ok {
				tooSparse++
				continue
			}
			obs = filled
		}

		dates, refValues, candValues := analysis.Align(reference, obs)
		correlation, ok := analysis.Pearson(refValues, candValues)
		if !ok {
			degenerate++
			continue
		}

		results = append(results, models.CorrelationResult{
			ID:          candidate.ID,
			Title:       candidate.Title,
			Units:       candidate.Units,
			Popularity:  candidate.Popularity,
			Correlation: correlation,
		})
		aligned[candidate.ID] = alignedSeries{dates: dates, reference: refValues, candidate: candValues}
	}

	r.logger.WithFields(logrus.Fields{
		"correlated": len(results),
		"failed":     hardFailures,
		"too_sparse": tooSparse,
		"degenerate": degenerate,
	}).Info("Candidate processing complete")

	if len(candidates) > 0 {
		ratio := float64(hardFailures) / float64(len(candidates))
		if ratio > r.cfg.Analysis.MaxFailureRatio {
			return nil, fmt.Errorf("%w: %d of %d candidates failed (%.0f%%)",
				ErrRunDegraded, hardFailures, len(candidates), ratio*100)
		}
	}

	if len(results) == 0 {
		return nil, errors.New("no candidate series produced a defined correlation")
	}

	recentlyUsed := r.usage.RecentlyUsed(r.cfg.Rotation.LookbackDays)
	record := RankAndSelect(results, recentlyUsed)

	if err := r.usage.Record(today, record.ID); err != nil {
		return nil, err
	}

	selectedUnits := ""
	for _, res := range results {
		if res.ID == record.ID {
			selectedUnits = res.Units
			break
		}
	}
	chart := aligned[record.ID]

	payload := &models.SelectionPayload{
		RunID:       uuid.New().String(),
		ID:          record.ID,
		Title:       record.Title,
		Units:       selectedUnits,
		Source:      "FRED",
		Correlation: record.Correlation,
		Inverted:    record.Correlation < 0,
		WindowStart: windowStart,
		WindowEnd:   today,
		Rank:        record.Rank,
		TotalSeries: record.TotalSeries,
		Dates:       chart.dates,
		Reference:   chart.reference,
		Candidate:   chart.candidate,
		GeneratedAt: r.now().UTC(),
	}

	if err := store.WriteJSONAtomic(r.cfg.Storage.OutputPath, payload); err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"series":      record.ID,
		"correlation": record.Correlation,
		"rank":        record.Rank,
		"total":       record.TotalSeries,
		"duration":    time.Since(start).String(),
	}).Info("Selection published")

	return payload, nil
}

// fetchSeries returns the cached-or-refreshed observations for a series,
// filtered to the window. The fetch decision bounds network volume to the
// new days only: skip entirely when already refreshed today and the window
// has not moved earlier than the cached data; refetch from the window start
// when it has (backfill); otherwise fetch the delta since the last refresh.
func (r *Runner) fetchSeries(ctx context.Context, seriesID, windowStart, today string) ([]models.Observation, error) {
	cached, ok := r.repo.Read(seriesID)

	if ok && cached.LastFetched == today && !windowMovedEarlier(cached, windowStart) {
		return store.FilterFrom(cached.Data, windowStart), nil
	}

	fetchFrom := windowStart
	if ok && !windowMovedEarlier(cached, windowStart) {
		if last, err := time.Parse(models.DateLayout, cached.LastFetched); err == nil {
			fetchFrom = last.AddDate(0, 0, 1).Format(models.DateLayout)
		}
	}

	incoming, err := r.fetcher.Observations(ctx, seriesID, fetchFrom)
	if err != nil {
		return nil, err
	}

	merged, err := r.repo.MergeWrite(seriesID, incoming, today)
	if err != nil {
		return nil, err
	}
	return store.FilterFrom(merged.Data, windowStart), nil
}

// windowMovedEarlier reports whether the analysis window now starts before
// the earliest cached observation, which forces a backfill.
func windowMovedEarlier(cached *models.SeriesCache, windowStart string) bool {
	if len(cached.Data) == 0 {
		return true
	}
	return windowStart < cached.Data[0].Date
}
