package analysis

import "time"

// WindowStart returns the analysis window boundary for a run happening at
// now: the third Friday of the calendar month preceding now's month, the
// standard monthly derivative-expiration convention.
func WindowStart(now time.Time) time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	daysToFriday := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, daysToFriday+14)
}
