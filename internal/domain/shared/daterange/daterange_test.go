package daterange

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(raw string) time.Time {
	t, err := time.Parse(Layout, raw)
	if err != nil {
		panic(err)
	}
	return t
}

func mustRange(t *testing.T, start, end string) DateRange {
	t.Helper()
	dr, err := Parse(start, end)
	require.NoError(t, err)
	return dr
}

func TestNewNormalizesToCalendarDates(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	dr, err := New(time.Date(2025, 6, 1, 23, 30, 0, 0, loc), time.Date(2025, 6, 3, 1, 0, 0, 0, loc))
	require.NoError(t, err)
	require.Equal(t, day("2025-06-01"), dr.Start)
	require.Equal(t, day("2025-06-03"), dr.End)
	require.Equal(t, 3, dr.Nights())
}

func TestNewRejectsInvertedAndMissingDates(t *testing.T) {
	_, err := New(day("2025-06-05"), day("2025-06-01"))
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(time.Time{}, day("2025-06-01"))
	require.ErrorIs(t, err, ErrMissingDate)

	_, err = Parse("2025-06-01", "")
	require.ErrorIs(t, err, ErrMissingDate)

	_, err = Parse("2025/06/01", "2025-06-02")
	require.ErrorIs(t, err, ErrDateFormat)
}

func TestSingleDayRangeHasOneNight(t *testing.T) {
	dr := Single(day("2025-06-03"))
	require.Equal(t, 1, dr.Nights())
	require.True(t, dr.ContainsDate(day("2025-06-03").Add(15*time.Hour)))
	require.False(t, dr.ContainsDate(day("2025-06-04")))
}

func TestOverlapsIsInclusive(t *testing.T) {
	a := mustRange(t, "2025-06-01", "2025-06-05")
	require.True(t, a.Overlaps(mustRange(t, "2025-06-05", "2025-06-09")))
	require.False(t, a.Overlaps(mustRange(t, "2025-06-06", "2025-06-09")))
	require.True(t, a.Adjacent(mustRange(t, "2025-06-06", "2025-06-09")))
	require.True(t, a.Contains(mustRange(t, "2025-06-02", "2025-06-05")))
	require.False(t, a.Contains(mustRange(t, "2025-05-31", "2025-06-02")))
}

func TestMergeAndIntersect(t *testing.T) {
	a := mustRange(t, "2025-06-01", "2025-06-05")
	b := mustRange(t, "2025-06-04", "2025-06-10")

	merged, ok := a.Merge(b)
	require.True(t, ok)
	require.Equal(t, mustRange(t, "2025-06-01", "2025-06-10"), merged)

	common, ok := a.Intersect(b)
	require.True(t, ok)
	require.Equal(t, mustRange(t, "2025-06-04", "2025-06-05"), common)

	_, ok = a.Merge(mustRange(t, "2025-06-07", "2025-06-08"))
	require.False(t, ok)
}

func TestSubtractSplitsAroundTheHole(t *testing.T) {
	block := mustRange(t, "2025-06-01", "2025-06-10")

	parts := block.Subtract(mustRange(t, "2025-06-04", "2025-06-06"))
	require.Equal(t, []DateRange{
		mustRange(t, "2025-06-01", "2025-06-03"),
		mustRange(t, "2025-06-07", "2025-06-10"),
	}, parts)

	require.Empty(t, block.Subtract(mustRange(t, "2025-05-01", "2025-07-01")))
	require.Equal(t, []DateRange{mustRange(t, "2025-06-06", "2025-06-10")},
		block.Subtract(mustRange(t, "2025-05-20", "2025-06-05")))
	require.Equal(t, []DateRange{block}, block.Subtract(mustRange(t, "2025-07-01", "2025-07-02")))
}

func TestDaysIsAscendingAndLazy(t *testing.T) {
	dr := mustRange(t, "2025-02-27", "2025-03-02")
	days := slices.Collect(dr.Days())
	require.Equal(t, []time.Time{day("2025-02-27"), day("2025-02-28"), day("2025-03-01"), day("2025-03-02")}, days)

	count := 0
	for range dr.Days() {
		count++
		if count == 2 {
			break
		}
	}
	require.Equal(t, 2, count)
}

func TestJSONUsesCalendarDates(t *testing.T) {
	dr := mustRange(t, "2025-06-01", "2025-06-05")
	raw, err := json.Marshal(dr)
	require.NoError(t, err)
	require.JSONEq(t, `{"start":"2025-06-01","end":"2025-06-05"}`, string(raw))

	var decoded DateRange
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, dr, decoded)

	require.ErrorIs(t, json.Unmarshal([]byte(`{"start":"2025-06-05","end":"2025-06-01"}`), &decoded), ErrInvalidRange)
}
