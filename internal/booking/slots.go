package booking

import "fmt"

// GenerateSlots returns evenly spaced HH:MM strings for populating time
// selection widgets.  The ladder starts at startHour:00 and advances by
// intervalMinutes up to and including endHour:00 when the spacing lands
// on it exactly.  Invalid arguments (inverted hours, out-of-range hours,
// non-positive interval) yield an empty slice.  The slot list is purely
// presentational; conflict checks operate on raw instants.
func GenerateSlots(startHour, endHour, intervalMinutes int) []string {
	if intervalMinutes <= 0 || startHour < 0 || endHour > 23 || startHour > endHour {
		return []string{}
	}
	slots := []string{}
	end := endHour * 60
	for cur := startHour * 60; cur <= end; cur += intervalMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", cur/60, cur%60))
	}
	return slots
}
