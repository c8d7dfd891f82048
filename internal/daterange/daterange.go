// Package daterange computes the calendar days a backfill has to cover and
// removes the days a downstream store already holds.
package daterange

import (
	"strings"
	"time"
)

// Layout is the wire and storage format of a calendar day.
const Layout = "2006-01-02"

// Range is an ascending, duplicate-free sequence of days formatted with Layout.
type Range []string

// Set is a set of days formatted with Layout.
type Set map[string]struct{}

// NewSet builds a set from the given days. Entries are taken verbatim.
func NewSet(days ...string) Set {
	s := make(Set, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// Has reports whether day is in the set.
func (s Set) Has(day string) bool {
	_, ok := s[day]
	return ok
}

// Union returns a new set holding the days of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for d := range s {
		out[d] = struct{}{}
	}
	for d := range other {
		out[d] = struct{}{}
	}
	return out
}

// ComputeRange returns every day from start through the day before now.
// Days are counted on the calendar of now's location; only the year, month and
// day of start are used. If start is after yesterday the range is empty.
func ComputeRange(start, now time.Time) Range {
	y, m, d := start.Date()
	first := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	last := midnight(now).AddDate(0, 0, -1)

	if first.After(last) {
		return Range{}
	}

	var days Range
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(Layout))
	}
	return days
}

// FindGaps returns the days of full that are not in known, in full's order.
func FindGaps(full Range, known Set) Range {
	gaps := Range{}
	for _, d := range full {
		if !known.Has(d) {
			gaps = append(gaps, d)
		}
	}
	return gaps
}

// ParseDay parses a Layout day at midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(Layout, strings.TrimSpace(s), loc)
}

var normalizeLayouts = []string{
	Layout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006/01/02",
}

// Normalize reduces a date or timestamp string to its Layout day.
// The date part is taken as written, without timezone conversion.
func Normalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range normalizeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(Layout), true
		}
	}
	return "", false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
