package generic

import (
	"time"
)

// =============================================================================
// DATES - Calendar days for voucher dates and report bounds
// =============================================================================

// Ledger dates must fall within these years, inclusive.
const (
	MinLedgerYear = 2000
	MaxLedgerYear = 2100
)

// DateLayout is the input and display format for calendar days.
const DateLayout = "2006-01-02"

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CalendarDay returns t's calendar date, read in t's own location, as
// midnight UTC. Days stamped in different locations compare by date this way.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate returns midnight UTC of the given calendar day.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD day.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// InLedgerRange reports whether t's year is within [MinLedgerYear, MaxLedgerYear].
func InLedgerRange(t time.Time) bool {
	y := t.Year()
	return y >= MinLedgerYear && y <= MaxLedgerYear
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return CalendarDay(a).Equal(CalendarDay(b))
}
