package store

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chartcrime/chartcrime-go/internal/models"
)

// UsageTracker records which series were selected on which dates and answers
// recently-used queries for the rotation policy. The history file is a flat
// list ordered by date; pruning happens on every write so it never grows
// unbounded.
type UsageTracker struct {
	path      string
	retention int // days of history to keep
	logger    *logrus.Logger

	now func() time.Time
}

func NewUsageTracker(path string, retentionDays int, logger *logrus.Logger) *UsageTracker {
	return &UsageTracker{
		path:      path,
		retention: retentionDays,
		logger:    logger,
		now:       time.Now,
	}
}

// Record stores the (date, id) selection. Recording the same pair twice
// keeps exactly one entry. Entries older than the retention horizon are
// pruned as part of the same write.
func (t *UsageTracker) Record(date, id string) error {
	entries := t.load()

	exists := false
	for _, e := range entries {
		if e.Date == date && e.ID == id {
			exists = true
			break
		}
	}
	if !exists {
		entries = append(entries, models.UsageHistoryEntry{Date: date, ID: id})
	}

	cutoff := t.now().AddDate(0, 0, -t.retention).Format(models.DateLayout)
	kept := entries[:0]
	for _, e := range entries {
		if e.Date >= cutoff {
			kept = append(kept, e)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Date < kept[j].Date })

	if err := WriteJSONAtomic(t.path, kept); err != nil {
		return fmt.Errorf("failed to persist usage history: %w", err)
	}
	return nil
}

// RecentlyUsed returns the deduplicated set of ids selected on any date
// within the trailing days-day window, inclusive.
func (t *UsageTracker) RecentlyUsed(days int) map[string]bool {
	cutoff := t.now().AddDate(0, 0, -days).Format(models.DateLayout)
	used := make(map[string]bool)
	for _, e := range t.load() {
		if e.Date >= cutoff {
			used[e.ID] = true
		}
	}
	return used
}

// load treats a missing or corrupt history file as empty history; the next
// Record rewrites it whole.
func (t *UsageTracker) load() []models.UsageHistoryEntry {
	var entries []models.UsageHistoryEntry
	if err := readJSON(t.path, &entries); err != nil {
		if !os.IsNotExist(err) {
			t.logger.WithError(err).Warn("Usage history unreadable, starting fresh")
		}
		return nil
	}
	return entries
}
