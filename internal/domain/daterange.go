package domain

import "time"

// Day truncates t to UTC midnight. All date comparisons in this package
// operate on day granularity; callers must normalize consistently.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}

// Overlaps reports whether the inclusive day ranges [aStart, aEnd] and
// [bStart, bEnd] share at least one day. Touching at a boundary counts.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !Day(aStart).After(Day(bEnd)) && !Day(bStart).After(Day(aEnd))
}
