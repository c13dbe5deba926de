package booking

// CanRegister checks whether a user may join a lab session.  The
// participant slice is the session's current roster in registration
// order.  It returns ErrSessionClosed when the session is not OPEN,
// ErrAlreadyRegistered when the user already holds a seat and
// ErrSessionFull when the roster has reached capacity.  A nil return
// means the user may be appended to the roster.
func CanRegister(status string, capacity int, participants []uint64, userID uint64) error {
	if status != SessionOpen {
		return ErrSessionClosed
	}
	for _, p := range participants {
		if p == userID {
			return ErrAlreadyRegistered
		}
	}
	if len(participants) >= capacity {
		return ErrSessionFull
	}
	return nil
}

// CanCancelRegistration checks whether a user currently holds a seat in
// the roster.  It returns ErrNotRegistered when the user is absent.
func CanCancelRegistration(participants []uint64, userID uint64) error {
	for _, p := range participants {
		if p == userID {
			return nil
		}
	}
	return ErrNotRegistered
}
