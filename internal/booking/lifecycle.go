package booking

// Reservation status values as stored in the reservations.status column.
// PENDING reservations await staff review; only CONFIRMED reservations
// block the equipment for their interval.  REJECTED, CANCELLED and
// COMPLETED are terminal.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// Equipment status values as stored in the equipment.status column.
const (
	EquipmentAvailable   = "AVAILABLE"
	EquipmentBooked      = "BOOKED"
	EquipmentMaintenance = "MAINTENANCE"
	EquipmentUnavailable = "UNAVAILABLE"
)

// Lab session status values.
const (
	SessionOpen      = "OPEN"
	SessionClosed    = "CLOSED"
	SessionCompleted = "COMPLETED"
	SessionCancelled = "CANCELLED"
)

// transitions encodes the reservation state machine.  A reservation is
// created PENDING (or directly CONFIRMED under the auto-approve policy)
// and moves forward only along these edges.
var transitions = map[string]map[string]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusRejected:  true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusCancelled: true,
		StatusCompleted: true,
	},
}

// CanTransition reports whether a reservation may move from one status
// to another.  Unknown statuses and self-transitions are rejected, which
// makes repeated approve/reject/cancel calls fail deterministically
// without altering state.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// Transition validates a status change and returns ErrInvalidTransition
// when the edge is not part of the state machine.
func Transition(from, to string) error {
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}

// IsTerminal reports whether a reservation status permits no further
// transitions.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

// Bookable reports whether equipment in the given status may take a new
// confirmed reservation.  MAINTENANCE and UNAVAILABLE are staff
// overrides that stop both direct bookings and approvals of requests
// that were pending when the override was set.
func Bookable(status string) bool {
	return status == EquipmentAvailable || status == EquipmentBooked
}

// ShouldRevert reports whether cancelling a confirmed reservation frees
// its equipment back to AVAILABLE.  Only the automatic BOOKED marker
// reverts, and only when no other confirmed reservation for the same
// equipment still lies ahead; a MAINTENANCE or UNAVAILABLE override set
// by staff survives the cancellation.
func ShouldRevert(equipmentStatus string, hasConfirmedAhead bool) bool {
	return equipmentStatus == EquipmentBooked && !hasConfirmedAhead
}

// ValidEquipmentStatus reports whether s is one of the recognised
// equipment status values.
func ValidEquipmentStatus(s string) bool {
	switch s {
	case EquipmentAvailable, EquipmentBooked, EquipmentMaintenance, EquipmentUnavailable:
		return true
	}
	return false
}
