// Package booking holds the pure scheduling rules of the lab: interval
// overlap detection, the reservation state machine, the session roster
// guards and the slot ladder helper.  Nothing in this package performs
// I/O; handlers and repositories feed it data and translate its sentinel
// errors into HTTP responses.
package booking

import "errors"

// ErrInvalidInterval is returned when a requested interval does not
// satisfy start < end.
var ErrInvalidInterval = errors.New("interval start must precede end")

// ErrPastStart is returned when a booking request starts before the
// moment of submission.  Backdated reservations are rejected by policy.
var ErrPastStart = errors.New("interval starts in the past")

// ErrInvalidTransition is returned when a reservation status change is
// not permitted by the state machine, e.g. rejecting an already
// rejected reservation.
var ErrInvalidTransition = errors.New("invalid reservation status transition")

// ErrSessionFull is returned when a registration would exceed a lab
// session's capacity.
var ErrSessionFull = errors.New("session is at full capacity")

// ErrAlreadyRegistered is returned when a user attempts to register for
// a session they already joined.
var ErrAlreadyRegistered = errors.New("user already registered for session")

// ErrNotRegistered is returned when a user cancels a registration that
// does not exist.
var ErrNotRegistered = errors.New("user not registered for session")

// ErrSessionClosed is returned when registering for a session whose
// status is not OPEN.
var ErrSessionClosed = errors.New("session is not open for registration")
