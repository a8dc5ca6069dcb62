// Package dates handles the calendar-day values this application stores.
//
// Progress and session dates are persisted as zone-less YYYY-MM-DD text, never
// as timestamps. Keeping them as plain calendar days means day-bucketed stats
// cannot drift when the reader travels or the server timezone changes. The
// trade-off is that nothing stops legacy rows from holding garbage (epoch
// numbers were observed in imported data), so date-scoped queries must filter
// on the strict pattern below instead of trusting the column.
package dates

import (
	"time"
)

// Layout is the storage format for calendar days.
const Layout = "2006-01-02"

// DisplayLayout is the short human-readable form used in validation messages.
const DisplayLayout = "Jan 2, 2006"

// GlobPattern matches well-formed stored dates in SQLite GLOB expressions.
// Rows failing this pattern are legacy corruption and are excluded from
// date-scoped aggregates (but still counted in unscoped totals).
const GlobPattern = "[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]"

// Valid reports whether s is a well-formed YYYY-MM-DD calendar day.
// It rejects both malformed shapes ("841276800") and impossible dates
// ("2025-13-40").
func Valid(s string) bool {
	if len(s) != len(Layout) {
		return false
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return false
	}
	// time.Parse normalises some inputs; round-trip to be strict.
	return t.Format(Layout) == s
}

// Format renders a stored calendar day as "Nov 5, 2025". Malformed values
// are returned unchanged so error messages still show what is stored.
func Format(s string) string {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return s
	}
	return t.Format(DisplayLayout)
}

// Today returns the current calendar day in the given location.
func Today(loc *time.Location) string {
	return time.Now().In(loc).Format(Layout)
}

// Location resolves an IANA timezone name, falling back to UTC for an empty
// or unknown name. Aggregates never fail on a bad timezone; they degrade to
// UTC bucketing.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Before reports whether day a falls strictly before day b. Well-formed
// YYYY-MM-DD strings order lexicographically, so plain string comparison is
// correct for valid values.
func Before(a, b string) bool {
	return a < b
}

// Prev returns the calendar day immediately before s. Malformed input is
// returned unchanged.
func Prev(s string) string {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return s
	}
	return t.AddDate(0, 0, -1).Format(Layout)
}
