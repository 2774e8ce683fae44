package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chartcrime/chartcrime-go/internal/models"
)

// ExclusionStore caches the set of series ids structurally related to the
// reference series. The set is valid for exactly one calendar day, then the
// supplier is consulted again.
type ExclusionStore struct {
	path   string
	logger *logrus.Logger

	now func() time.Time
}

func NewExclusionStore(path string, logger *logrus.Logger) *ExclusionStore {
	return &ExclusionStore{path: path, logger: logger, now: time.Now}
}

// IDs returns the exclusion set, refreshing it through the supplier when the
// cached copy was not fetched today. A corrupt cache file is just a miss.
func (s *ExclusionStore) IDs(ctx context.Context, refresh func(context.Context) ([]string, error)) (map[string]bool, error) {
	today := s.now().Format(models.DateLayout)

	var cached models.ExclusionSet
	if err := readJSON(s.path, &cached); err == nil {
		if cached.LastFetched == today {
			return toSet(cached.IDs), nil
		}
	} else if !os.IsNotExist(err) {
		s.logger.WithError(err).Warn("Exclusion cache unreadable, refreshing")
	}

	ids, err := refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh exclusion set: %w", err)
	}

	if err := WriteJSONAtomic(s.path, models.ExclusionSet{LastFetched: today, IDs: ids}); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"count": len(ids)}).Info("Refreshed exclusion set")
	return toSet(ids), nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
