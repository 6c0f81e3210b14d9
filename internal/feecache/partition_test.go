package feecache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapstats/revenue-api/internal/feecache"
)

func ts(value string) int64 {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t.Unix()
}

func TestDateRange(t *testing.T) {
	tests := []struct {
		name  string
		start int64
		end   int64
		want  []string
	}{
		{
			name:  "single day",
			start: ts("2024-01-01T10:00:00Z"),
			end:   ts("2024-01-01T12:00:00Z"),
			want:  []string{"2024-01-01"},
		},
		{
			name:  "multiple days normalized to boundaries",
			start: ts("2024-01-01T23:59:00Z"),
			end:   ts("2024-01-03T00:01:00Z"),
			want:  []string{"2024-01-01", "2024-01-02", "2024-01-03"},
		},
		{
			name:  "month boundary",
			start: ts("2024-01-30T00:00:00Z"),
			end:   ts("2024-02-02T00:00:00Z"),
			want:  []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, feecache.DateRange(tt.start, tt.end))
		})
	}
}

func TestDateRange_ContiguousAndDuplicateFree(t *testing.T) {
	dates := feecache.DateRange(ts("2023-12-25T07:00:00Z"), ts("2024-01-10T21:00:00Z"))

	require.NotEmpty(t, dates)
	seen := map[string]bool{}
	for i, date := range dates {
		require.False(t, seen[date], "duplicate date %s", date)
		seen[date] = true
		if i > 0 {
			prev := feecache.DateStartTimestamp(dates[i-1])
			cur := feecache.DateStartTimestamp(date)
			assert.Equal(t, int64(86400), cur-prev, "gap between %s and %s", dates[i-1], date)
		}
	}
}

func TestDayBoundaryTimestamps(t *testing.T) {
	assert.Equal(t, ts("2024-01-02T00:00:00Z"), feecache.DateStartTimestamp("2024-01-02"))
	assert.Equal(t, ts("2024-01-02T23:59:59Z"), feecache.DateEndTimestamp("2024-01-02"))
}

func TestCacheableThreshold(t *testing.T) {
	now := time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, ts("2024-01-05T00:00:00Z"), feecache.CacheableThreshold(now))
}

func TestSplitDateRange_AllHistorical(t *testing.T) {
	threshold := ts("2024-01-05T00:00:00Z")
	split := feecache.SplitDateRange(ts("2024-01-01T00:00:00Z"), ts("2024-01-03T23:59:59Z"), threshold)

	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, split.CacheableDates)
	assert.False(t, split.HasRecent)
}

func TestSplitDateRange_RangeReachesToday(t *testing.T) {
	threshold := ts("2024-01-05T00:00:00Z")
	start := ts("2024-01-01T00:00:00Z")
	split := feecache.SplitDateRange(start, ts("2024-01-05T18:00:00Z"), threshold)

	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"}, split.CacheableDates)
	require.True(t, split.HasRecent)
	assert.Equal(t, threshold, split.RecentStart)
}

func TestSplitDateRange_EntirelyRecent(t *testing.T) {
	threshold := ts("2024-01-05T00:00:00Z")
	start := ts("2024-01-05T06:00:00Z")
	split := feecache.SplitDateRange(start, ts("2024-01-05T18:00:00Z"), threshold)

	assert.Empty(t, split.CacheableDates)
	require.True(t, split.HasRecent)
	// recentStart clamps to the query start when it is after the threshold
	assert.Equal(t, start, split.RecentStart)
}

func TestSplitDateRange_Stable(t *testing.T) {
	threshold := ts("2024-01-05T00:00:00Z")
	first := feecache.SplitDateRange(ts("2024-01-01T03:00:00Z"), ts("2024-01-06T09:00:00Z"), threshold)
	second := feecache.SplitDateRange(ts("2024-01-01T03:00:00Z"), ts("2024-01-06T09:00:00Z"), threshold)

	assert.Equal(t, first, second)
}
