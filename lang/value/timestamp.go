package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// windowsEpoch is 1601-01-01 UTC, the epoch .NET/Win32 FILETIME ticks count
// from in 100-nanosecond units (spec.md §4.5 "Windows 100-ns ticks" interop).
var windowsEpoch = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)

// Timestamp is a UTC instant decomposed using the proleptic Gregorian
// calendar's 400/100/4 leap rule (spec.md §4.5). It is implemented on top of
// time.Time, whose own calendar math already follows that rule and whose
// representable range happens to bottom out at year -292277022399 -- the
// same internal epoch the spec calls out -- rather than reimplementing
// Gregorian arithmetic by hand.
type Timestamp struct {
	T time.Time
}

func NewTimestamp(t time.Time) Timestamp { return Timestamp{T: t.UTC()} }

// FromUnix builds a Timestamp from a Unix epoch offset.
func FromUnix(sec, nsec int64) Timestamp { return Timestamp{T: time.Unix(sec, nsec).UTC()} }

// FromWindowsTicks builds a Timestamp from a count of 100-nanosecond ticks
// since the Windows epoch (1601-01-01 UTC).
func FromWindowsTicks(ticks int64) Timestamp {
	return Timestamp{T: time.Unix(windowsEpoch.Unix()+ticks/1e7, (ticks%1e7)*100).UTC()}
}

func (t Timestamp) Kind() Kind       { return KindTimestamp }
func (t Timestamp) ToBool() bool     { return true }
func (t Timestamp) Hash() uint64     { return uint64(t.T.UnixNano()) }
func (t Timestamp) GetSourceLocation() SourceLocation { return SourceLocation{} }

// ToString renders ISO 8601 UTC with millisecond precision and a trailing
// Z, per spec.md §4.5 ("Timestamp.parse ... .string yields exactly ...").
func (t Timestamp) ToString() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.%03dZ",
		t.T.Year(), int(t.T.Month()), t.T.Day(),
		t.T.Hour(), t.T.Minute(), t.T.Second(), t.T.Nanosecond()/1e6)
}

func (t Timestamp) CompareEqual(other Object) bool {
	ot, ok := other.(Timestamp)
	return ok && t.T.Equal(ot.T)
}

func (t Timestamp) Cmp(other Object) (int, bool) {
	ot, ok := other.(Timestamp)
	if !ok {
		return 0, false
	}
	switch {
	case t.T.Before(ot.T):
		return -1, true
	case t.T.After(ot.T):
		return 1, true
	default:
		return 0, true
	}
}

func (t Timestamp) Year() int       { return t.T.Year() }
func (t Timestamp) Month() int      { return int(t.T.Month()) }
func (t Timestamp) Day() int        { return t.T.Day() }
func (t Timestamp) Hour() int       { return t.T.Hour() }
func (t Timestamp) Minute() int     { return t.T.Minute() }
func (t Timestamp) Second() int     { return t.T.Second() }
func (t Timestamp) Nanosecond() int { return t.T.Nanosecond() }
func (t Timestamp) DayOfYear() int  { return t.T.YearDay() }

// IsLeapYear reports whether the receiver's year is a Gregorian leap year
// (divisible by 4, except centuries not divisible by 400).
func (t Timestamp) IsLeapYear() bool { return isLeapYear(t.T.Year()) }

func isLeapYear(y int) bool { return y%4 == 0 && (y%100 != 0 || y%400 == 0) }

// Unix returns the (seconds, nanoseconds) Unix epoch offset.
func (t Timestamp) Unix() (int64, int64) { return t.T.Unix(), int64(t.T.Nanosecond()) }

// WindowsTicks returns the count of 100-nanosecond ticks since the Windows
// epoch (1601-01-01 UTC).
func (t Timestamp) WindowsTicks() int64 {
	return (t.T.Unix()-windowsEpoch.Unix())*1e7 + int64(t.T.Nanosecond()/100)
}

// ParseTimestamp accepts optional sign on the year and any non-empty prefix
// of "YYYY-MM-DDTHH:MM:SS.ffffZ" (spec.md §4.5).
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSuffix(s, "Z")
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	var year, month, day, hour, min, sec, nsec int
	fields := []struct {
		width int
		sep   byte
		dst   *int
	}{
		{4, '-', &year}, {2, '-', &month}, {2, 'T', &day},
		{2, ':', &hour}, {2, ':', &min}, {2, '.', &sec},
	}
	pos := 0
	for _, f := range fields {
		if pos >= len(s) {
			break
		}
		end := pos + f.width
		if end > len(s) {
			end = len(s)
		}
		digits := s[pos:end]
		n, err := strconv.Atoi(digits)
		if err != nil {
			return Timestamp{}, fmt.Errorf("value: invalid timestamp %q", s)
		}
		*f.dst = n
		pos = end
		if pos < len(s) && (s[pos] == f.sep) {
			pos++
		}
	}
	if pos < len(s) {
		frac := s[pos:]
		for len(frac) < 9 {
			frac += "0"
		}
		n, err := strconv.Atoi(frac[:9])
		if err == nil {
			nsec = n
		}
	}
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	if neg {
		year = -year
	}
	t := time.Date(year, time.Month(month), day, hour, min, sec, nsec, time.UTC)
	return Timestamp{T: t}, nil
}

var (
	_ Equaler = Timestamp{}
	_ Ordered = Timestamp{}
)
