package value_test

import (
	"testing"

	"github.com/mna/smile/lang/value"
	"github.com/stretchr/testify/require"
)

func TestTimestampParseToStringRoundTrip(t *testing.T) {
	// ToString only has millisecond resolution, so the round trip only
	// holds for timestamps already quantized to milliseconds.
	ts := value.FromUnix(1700000000, 123_000_000)

	s := ts.ToString()
	require.Equal(t, "2023-11-14T22:13:20.123Z", s)

	got, err := value.ParseTimestamp(s)
	require.NoError(t, err)
	require.True(t, ts.CompareEqual(got))
	require.Equal(t, s, got.ToString())
}

func TestTimestampParsePartialPrefix(t *testing.T) {
	// ParseTimestamp accepts any non-empty prefix of the full format
	// (spec.md §4.5): a bare "YYYY-MM" defaults the missing month/day to 1
	// and every missing time field to 0.
	got, err := value.ParseTimestamp("2020-06")
	require.NoError(t, err)
	require.Equal(t, 2020, got.Year())
	require.Equal(t, 6, got.Month())
	require.Equal(t, 1, got.Day())
	require.Equal(t, 0, got.Hour())
}

func TestTimestampParseNegativeYear(t *testing.T) {
	got, err := value.ParseTimestamp("-0044-03-15")
	require.NoError(t, err)
	require.Equal(t, -44, got.Year())
	require.Equal(t, 3, got.Month())
	require.Equal(t, 15, got.Day())
}

func TestTimestampDayOfYearAndLeapYear(t *testing.T) {
	leap := value.FromUnix(0, 0) // 1970-01-01, not a leap year
	require.False(t, leap.IsLeapYear())
	require.Equal(t, 1, leap.DayOfYear())

	ts, err := value.ParseTimestamp("2024-03-01")
	require.NoError(t, err)
	require.True(t, ts.IsLeapYear())
	// day 31 (Jan) + 29 (Feb, leap) + 1 = 61
	require.Equal(t, 61, ts.DayOfYear())
}

func TestTimestampCmp(t *testing.T) {
	earlier := value.FromUnix(100, 0)
	later := value.FromUnix(200, 0)

	cmp, ok := earlier.Cmp(later)
	require.True(t, ok)
	require.Equal(t, -1, cmp)

	cmp, ok = later.Cmp(earlier)
	require.True(t, ok)
	require.Equal(t, 1, cmp)

	cmp, ok = earlier.Cmp(earlier)
	require.True(t, ok)
	require.Equal(t, 0, cmp)
}

func TestTimestampWindowsTicksRoundTrip(t *testing.T) {
	ts := value.FromUnix(1700000000, 0)
	ticks := ts.WindowsTicks()
	require.True(t, value.FromWindowsTicks(ticks).CompareEqual(ts))
}
