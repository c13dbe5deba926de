package booking

import "time"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.  Back-to-back intervals, where one ends at
// the exact instant the other starts, do not overlap.  The check is
// symmetric in its two arguments.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ValidateInterval checks a requested reservation interval against the
// submission time now.  It returns ErrInvalidInterval when start is not
// strictly before end and ErrPastStart when the interval begins before
// now.  Timestamps are compared at full precision; callers are expected
// to pass UTC instants.
func ValidateInterval(start, end, now time.Time) error {
	if !start.Before(end) {
		return ErrInvalidInterval
	}
	if start.Before(now) {
		return ErrPastStart
	}
	return nil
}
