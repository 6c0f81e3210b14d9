package feecache

import (
	"time"

	"github.com/swapstats/revenue-api/internal/fees"
)

// Split is the result of partitioning a query range against the cacheable
// threshold.
type Split struct {
	// CacheableDates are UTC days whose end lies strictly before the
	// threshold. Historical data for a closed day never changes, so these
	// are eligible for long-lived caching.
	CacheableDates []string
	// RecentStart is the earliest timestamp at or after the threshold that
	// is still inside the query range. That portion is never cached.
	RecentStart int64
	// HasRecent reports whether the range has a recent tail at all.
	HasRecent bool
}

// DateRange returns the inclusive sequence of UTC calendar days covering
// [startTimestamp, endTimestamp].
func DateRange(startTimestamp, endTimestamp int64) []string {
	start := time.Unix(startTimestamp, 0).UTC().Truncate(24 * time.Hour)
	end := time.Unix(endTimestamp, 0).UTC().Truncate(24 * time.Hour)

	var dates []string
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		dates = append(dates, current.Format(fees.DateFormat))
	}
	return dates
}

// DateStartTimestamp returns 00:00:00 UTC of the given day in unix seconds.
func DateStartTimestamp(date string) int64 {
	t, err := time.Parse(fees.DateFormat, date)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// DateEndTimestamp returns 23:59:59 UTC of the given day in unix seconds.
func DateEndTimestamp(date string) int64 {
	return DateStartTimestamp(date) + 24*60*60 - 1
}

// CacheableThreshold returns today 00:00 UTC relative to now. Days ending
// before this point are closed and safe to cache.
func CacheableThreshold(now time.Time) int64 {
	return now.UTC().Truncate(24 * time.Hour).Unix()
}

// SplitDateRange partitions [startTimestamp, endTimestamp] into cacheable
// days and an optional live recent tail. Splitting is stable: the same
// inputs always produce the same result.
func SplitDateRange(startTimestamp, endTimestamp, cacheableThreshold int64) Split {
	var split Split
	for _, date := range DateRange(startTimestamp, endTimestamp) {
		if DateEndTimestamp(date) < cacheableThreshold {
			split.CacheableDates = append(split.CacheableDates, date)
		} else if !split.HasRecent {
			split.HasRecent = true
			split.RecentStart = max(startTimestamp, cacheableThreshold)
		}
	}
	return split
}
