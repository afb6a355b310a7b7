package generic

import "time"

// =============================================================================
// DATE RANGE - Inclusive day bounds for reports and filters
// =============================================================================

// DateRange is an inclusive range of calendar days. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange validates and returns [from, to]. Both bounds are truncated to
// whole days; InvalidRange if to precedes from.
func NewDateRange(from, to time.Time) (DateRange, error) {
	r := DateRange{From: from, To: to}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate fails with ErrInvalidRange when both bounds are set and To < From.
func (r DateRange) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return nil
	}
	if CalendarDay(r.To).Before(CalendarDay(r.From)) {
		return Fail(ErrInvalidRange, "Invalid range. 'To' must be >= 'From'.",
			"From: "+FormatDate(r.From), "To: "+FormatDate(r.To))
	}
	return nil
}

// Contains returns true if t's calendar day is within the range. Each side
// is read in its own location.
func (r DateRange) Contains(t time.Time) bool {
	d := CalendarDay(t)
	if !r.From.IsZero() && d.Before(CalendarDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && d.After(CalendarDay(r.To)) {
		return false
	}
	return true
}

// Days returns every calendar day in the range. Both bounds must be set.
func (r DateRange) Days() []time.Time {
	if r.From.IsZero() || r.To.IsZero() {
		return nil
	}
	var days []time.Time
	for d := Day(r.From); !d.After(Day(r.To)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// IsOpen is true when neither bound is set.
func (r DateRange) IsOpen() bool { return r.From.IsZero() && r.To.IsZero() }

func (r DateRange) String() string {
	from, to := "…", "…"
	if !r.From.IsZero() {
		from = FormatDate(r.From)
	}
	if !r.To.IsZero() {
		to = FormatDate(r.To)
	}
	return "[" + from + ", " + to + "]"
}
