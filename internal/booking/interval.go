package booking

import "time"

// Interval is an inclusive calendar date range. Both bounds are normalized
// to midnight UTC so day arithmetic never drifts across time zones.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval validates and normalizes a date range.
func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: truncateToDay(start), End: truncateToDay(end)}
	if iv.Start.After(iv.End) {
		return Interval{}, ErrInvalidInterval
	}
	return iv, nil
}

// Overlaps reports whether the two inclusive ranges share at least one day:
// [s1,e1] and [s2,e2] overlap iff s1 <= e2 AND s2 <= e1. The single predicate
// covers containment in either direction and both partial overlaps.
func (iv Interval) Overlaps(other Interval) bool {
	return !iv.Start.After(other.End) && !other.Start.After(iv.End)
}

// Days returns the inclusive day count of the range; a one-day rental is 1.
func (iv Interval) Days() int {
	return int(iv.End.Sub(iv.Start).Hours()/24) + 1
}

// Months returns the number of 30-day billing months the range spans,
// rounded up. Used for the rental's total price.
func (iv Interval) Months() int64 {
	days := iv.Days()
	return int64((days + 29) / 30)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
